package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
)

// mockStep is a Step whose behaviour is supplied by the test.
type mockStep struct {
	name   string
	doFunc func(ctx context.Context, analysis *model.Analysis) error
	calls  atomic.Int32
}

func (m *mockStep) Do(ctx context.Context, analysis *model.Analysis) error {
	m.calls.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx, analysis)
	}
	return nil
}

func (m *mockStep) Name() string { return m.name }

// fakeRenderer returns a fixed snapshot, or err, for every URL.
type fakeRenderer struct {
	snapshot *model.PageSnapshot
	err      error
	delay    time.Duration
	rendered atomic.Int32
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (*model.PageSnapshot, error) {
	f.rendered.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snapshot
	s.URL = url
	return &s, nil
}

func (f *fakeRenderer) Close() error { return nil }

type staticResolver map[string]string

func (r staticResolver) LookupNetIP(_ context.Context, network, host string) ([]netip.Addr, error) {
	if network != "ip4" {
		return nil, errors.New("no ipv6")
	}
	ip, ok := r[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return []netip.Addr{netip.MustParseAddr(ip)}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *guard.Validator {
	return guard.NewValidator(
		guard.WithLogger(quietLogger()),
		guard.WithResolver(staticResolver{
			"example.com":   "93.184.216.34",
			"intranet.corp": "10.0.0.8",
		}),
	)
}

func compliantSnapshot() *model.PageSnapshot {
	return &model.PageSnapshot{
		Headings: []model.Heading{{Level: 1, Text: "Welcome"}},
		Images:   []model.Image{{Src: "/a.png", HasAlt: true}},
		Links:    []model.Link{{Href: "#main", Text: "Skip to content", IsSkipLink: true}},
	}
}
