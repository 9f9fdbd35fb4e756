package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
)

const (
	// DefaultNavigationTimeout bounds fetching one page.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultMaxBodySize caps the bytes read from a response.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies the checker to the sites it fetches.
	DefaultUserAgent = "Mozilla/5.0 (compatible; a11yscan/2.0; +https://github.com/nao1215/a11yscan)"

	maxRedirects = 10
)

var (
	// ErrNavigationTimeout is returned when a page does not load in time.
	ErrNavigationTimeout = errors.New("page load timeout")

	// ErrNavigation is returned when a page cannot be fetched or parsed.
	ErrNavigation = errors.New("navigation failed")
)

// Renderer turns a validated URL into a page snapshot.
type Renderer interface {
	// Render fetches url and extracts its snapshot.
	Render(ctx context.Context, url string) (*model.PageSnapshot, error)

	// Close releases held resources. Render may be called again afterwards.
	Close() error
}

// HTTPRenderer renders pages with a plain HTTP client.
type HTTPRenderer struct {
	mu     sync.Mutex
	client *http.Client

	timeout     time.Duration
	strictDial  bool
	userAgent   string
	maxBodySize int64
	transport   http.RoundTripper
	logger      *slog.Logger
}

// Option configures an HTTPRenderer.
type Option func(*HTTPRenderer)

// WithTimeout sets the navigation timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithStrictDial refuses connections to blocked addresses at dial time.
func WithStrictDial(strict bool) Option {
	return func(r *HTTPRenderer) {
		r.strictDial = strict
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *HTTPRenderer) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the response bytes read.
func WithMaxBodySize(n int64) Option {
	return func(r *HTTPRenderer) {
		if n > 0 {
			r.maxBodySize = n
		}
	}
}

// WithTransport replaces the transport. Strict dialing only applies to the
// default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *HTTPRenderer) {
		r.transport = rt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *HTTPRenderer) {
		r.logger = logger
	}
}

// NewHTTPRenderer creates an HTTPRenderer.
func NewHTTPRenderer(opts ...Option) *HTTPRenderer {
	r := &HTTPRenderer{
		timeout:     DefaultNavigationTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// httpClient returns the current client, creating it when needed.
func (r *HTTPRenderer) httpClient() *http.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client
	}

	transport := r.transport
	if transport == nil {
		dialer := guard.NewDialer(r.timeout, r.strictDial)
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: r.timeout,
		}
	}

	r.client = &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
	return r.client
}

// checkRedirect limits redirect chains and refuses redirects to other
// schemes or to blocked IP literals.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect to scheme %q refused", req.URL.Scheme)
	}
	if isIPLiteral(req.URL.Hostname()) && guard.IsBlocked(req.URL.Hostname()) {
		return fmt.Errorf("%w: redirect to %s", guard.ErrBlockedDestination, req.URL.Hostname())
	}
	return nil
}

func isIPLiteral(host string) bool {
	_, err := netip.ParseAddr(host)
	return err == nil
}

// Render fetches pageURL and extracts its snapshot.
func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (*model.PageSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, r.navigationError(ctx, err)
	}
	defer resp.Body.Close()

	r.logger.Debug("page fetched",
		"host", req.URL.Hostname(),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	body, err := charset.NewReader(io.LimitReader(resp.Body, r.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrNavigation, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, r.navigationError(ctx, err)
		}
		return nil, fmt.Errorf("%w: parse HTML: %w", ErrNavigation, err)
	}

	final := resp.Request.URL
	if final == nil {
		final, _ = url.Parse(pageURL)
	}
	snapshot := Extract(doc, final)
	snapshot.URL = pageURL
	return snapshot, nil
}

// navigationError maps a fetch error to the package sentinels.
func (r *HTTPRenderer) navigationError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrNavigationTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNavigation, err)
}

// Close drops idle connections and the client.
func (r *HTTPRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		r.client.CloseIdleConnections()
		r.client = nil
	}
	return nil
}
