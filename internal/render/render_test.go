package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
  <title> Fixture Page </title>
  <script>setTimeout(function () { rotate(); }, 5000);</script>
  <script>var slider = new Carousel({ autoplay: true });</script>
</head>
<body>
  <a href="#main">Skip to main content</a>
  <nav><a href="/about">About</a></nav>
  <h2>Intro</h2>
  <h1>Welcome</h1>
  <h3>Details</h3>
  <img src="/logo.png" alt="Company logo">
  <img src="/spacer.gif">
  <img src="/chart.png" title="Sales chart">
  <form>
    <label for="email">Email address</label>
    <input id="email" type="email" name="email">
    <label>Name <input type="text" name="name"></label>
    <input type="search" aria-label="Search site">
    <input type="text" placeholder="Phone">
    <input type="hidden" name="csrf" value="x">
    <select name="country"><option>NZ</option></select>
    <textarea name="bio"></textarea>
    <button disabled tabindex="-1">Send</button>
  </form>
  <div role="button" tabindex="-1">Fake button</div>
  <span onclick="go()">Clickable</span>
  <div tabindex="0">Focusable div</div>
  <div style="animation: spin 1s infinite">Spinner</div>
  <marquee>News</marquee>
  <a aria-label="Skip navigation to content">→</a>
</body>
</html>`

func parseFixture(t *testing.T, page string) *model.PageSnapshot {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse("https://example.com/start")
	return Extract(doc, base)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract(t *testing.T) {
	t.Parallel()

	s := parseFixture(t, fixturePage)

	t.Run("title is trimmed", func(t *testing.T) {
		t.Parallel()
		if s.Title != "Fixture Page" {
			t.Errorf("expected title %q, got %q", "Fixture Page", s.Title)
		}
	})

	t.Run("headings are grouped by level", func(t *testing.T) {
		t.Parallel()
		want := []model.Heading{{Level: 1, Text: "Welcome"}, {Level: 2, Text: "Intro"}, {Level: 3, Text: "Details"}}
		if len(s.Headings) != len(want) {
			t.Fatalf("expected %d headings, got %d", len(want), len(s.Headings))
		}
		for i := range want {
			if s.Headings[i] != want[i] {
				t.Errorf("heading %d: expected %+v, got %+v", i, want[i], s.Headings[i])
			}
		}
	})

	t.Run("images record alt and title", func(t *testing.T) {
		t.Parallel()
		if len(s.Images) != 3 {
			t.Fatalf("expected 3 images, got %d", len(s.Images))
		}
		if !s.Images[0].HasAlt || s.Images[1].HasAlt || s.Images[2].Title != "Sales chart" {
			t.Errorf("unexpected images %+v", s.Images)
		}
		if s.Images[0].Src != "https://example.com/logo.png" {
			t.Errorf("expected resolved src, got %q", s.Images[0].Src)
		}
	})

	t.Run("form inputs resolve their labels", func(t *testing.T) {
		t.Parallel()
		want := []struct {
			typ, label string
		}{
			{"email", "Email address"},
			{"text", "Name"},
			{"search", "Search site"},
			{"text", "Phone"},
			{"select-one", ""},
			{"textarea", ""},
		}
		if len(s.FormInputs) != len(want) {
			t.Fatalf("expected %d inputs (hidden skipped), got %d: %+v", len(want), len(s.FormInputs), s.FormInputs)
		}
		for i, w := range want {
			if s.FormInputs[i].Type != w.typ || s.FormInputs[i].Label != w.label {
				t.Errorf("input %d: expected %s %q, got %s %q", i, w.typ, w.label, s.FormInputs[i].Type, s.FormInputs[i].Label)
			}
		}
	})

	t.Run("skip links are detected by text and by aria-label", func(t *testing.T) {
		t.Parallel()
		var skips []string
		for _, l := range s.Links {
			if l.IsSkipLink {
				skips = append(skips, l.Href)
			}
		}
		if len(skips) != 2 {
			t.Fatalf("expected 2 skip links, got %v", skips)
		}
		if skips[0] != "https://example.com/start#main" {
			t.Errorf("expected resolved fragment link, got %q", skips[0])
		}
		if skips[1] != "#" {
			t.Errorf("expected placeholder href for link without href, got %q", skips[1])
		}
	})

	t.Run("page signals", func(t *testing.T) {
		t.Parallel()
		if !s.HasLandmarks {
			t.Error("expected landmarks from nav element")
		}
		if !s.HasTimers {
			t.Error("expected timers from setTimeout")
		}
		if !s.HasAutoAdvance {
			t.Error("expected auto-advance from carousel script")
		}
		if s.Animations != 2 {
			t.Errorf("expected 2 animations, got %d", s.Animations)
		}
	})

	t.Run("interactive elements", func(t *testing.T) {
		t.Parallel()
		byText := map[string]model.InteractiveElement{}
		for _, el := range s.InteractiveElements {
			byText[el.Text] = el
		}

		if el := byText["Send"]; !el.Disabled || el.TabIndex != -1 {
			t.Errorf("expected disabled button with tabindex -1, got %+v", el)
		}
		if el := byText["Fake button"]; el.Role != "button" || el.TabIndex != -1 {
			t.Errorf("unexpected role element %+v", el)
		}
		if el := byText["Clickable"]; !el.HasOnclick || el.TabIndex != -1 {
			t.Errorf("unexpected onclick element %+v", el)
		}
		if el, ok := byText["Focusable div"]; !ok || el.TabIndex != 0 {
			t.Errorf("expected focusable div with tabindex 0, got %+v", el)
		}
		if _, ok := byText["Spinner"]; ok {
			t.Error("plain div must not be interactive")
		}
	})
}

func TestExtractWithoutLandmarks(t *testing.T) {
	t.Parallel()

	s := parseFixture(t, `<html><body><div role="main">x</div></body></html>`)
	if !s.HasLandmarks {
		t.Error("expected role=main to count as a landmark")
	}

	s = parseFixture(t, `<html><body><a href="/next">Main menu</a></body></html>`)
	if s.HasLandmarks {
		t.Error("expected no landmarks")
	}
	if s.Links[0].IsSkipLink {
		t.Error("link without fragment must not be a skip link")
	}
}

func TestHTTPRendererRender(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixturePage)
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" with é encoded as 0xE9.
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9</title></head><body></body></html>"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/redirect-private", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://10.0.0.1/admin", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewHTTPRenderer(
		WithUserAgent("test-agent"),
		WithTimeout(200*time.Millisecond),
		WithLogger(quietLogger()),
	)
	defer r.Close()

	t.Run("renders and extracts", func(t *testing.T) {
		s, err := r.Render(context.Background(), srv.URL+"/page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.URL != srv.URL+"/page" {
			t.Errorf("expected snapshot URL %q, got %q", srv.URL+"/page", s.URL)
		}
		if len(s.Headings) != 3 {
			t.Errorf("expected 3 headings, got %d", len(s.Headings))
		}
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		s, err := r.Render(context.Background(), srv.URL+"/latin1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Title != "Café" {
			t.Errorf("expected title Café, got %q", s.Title)
		}
	})

	t.Run("slow page times out", func(t *testing.T) {
		_, err := r.Render(context.Background(), srv.URL+"/slow")
		if !errors.Is(err, ErrNavigationTimeout) {
			t.Errorf("expected ErrNavigationTimeout, got %v", err)
		}
	})

	t.Run("redirect to private literal is refused", func(t *testing.T) {
		_, err := r.Render(context.Background(), srv.URL+"/redirect-private")
		if !errors.Is(err, ErrNavigation) || !errors.Is(err, guard.ErrBlockedDestination) {
			t.Errorf("expected blocked navigation error, got %v", err)
		}
	})

	t.Run("render works again after close", func(t *testing.T) {
		if err := r.Close(); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Render(context.Background(), srv.URL+"/page"); err != nil {
			t.Errorf("expected render after close to succeed, got %v", err)
		}
	})
}

func TestHTTPRendererStrictDial(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	r := NewHTTPRenderer(WithStrictDial(true), WithLogger(quietLogger()))
	defer r.Close()

	_, err := r.Render(context.Background(), srv.URL)
	if !errors.Is(err, guard.ErrBlockedDestination) {
		t.Errorf("expected loopback dial to be refused, got %v", err)
	}
}
