package guard

import "net/url"

// ParsedURL is a URL that passed parsing. It holds its own copy of the
// parsed value and only exposes accessors, so it cannot change after the
// validator produced it.
type ParsedURL struct {
	u url.URL
}

func newParsedURL(u *url.URL) ParsedURL {
	return ParsedURL{u: *u}
}

// Scheme returns the lower-case scheme, http or https.
func (p ParsedURL) Scheme() string { return p.u.Scheme }

// Hostname returns the host without port or brackets.
func (p ParsedURL) Hostname() string { return p.u.Hostname() }

// Port returns the explicit port, or an empty string.
func (p ParsedURL) Port() string { return p.u.Port() }

// Path returns the escaped path.
func (p ParsedURL) Path() string { return p.u.EscapedPath() }

// Query returns the raw query string without the leading '?'.
func (p ParsedURL) Query() string { return p.u.RawQuery }

// URL returns a copy of the parsed URL. Changes to the copy do not affect p.
func (p ParsedURL) URL() *url.URL {
	u := p.u
	return &u
}

// String returns the absolute URL.
func (p ParsedURL) String() string {
	return p.u.String()
}

// Verdict is the outcome of validating one URL: accepted with a ParsedURL,
// or rejected with a Reason. It is never both.
type Verdict struct {
	parsed ParsedURL
	reason Reason
}

func accept(p ParsedURL) Verdict {
	return Verdict{parsed: p, reason: ReasonNone}
}

func reject(r Reason) Verdict {
	return Verdict{reason: r}
}

// Accepted reports whether the URL may be fetched.
func (v Verdict) Accepted() bool {
	return v.reason == ReasonNone
}

// URL returns the parsed URL and true for an accepted verdict.
func (v Verdict) URL() (ParsedURL, bool) {
	if !v.Accepted() {
		return ParsedURL{}, false
	}
	return v.parsed, true
}

// Reason returns the rejection reason, or ReasonNone when accepted.
func (v Verdict) Reason() Reason {
	return v.reason
}

// Err returns the rejection reason as an error, or nil when accepted.
func (v Verdict) Err() error {
	if v.Accepted() {
		return nil
	}
	return v.reason
}
