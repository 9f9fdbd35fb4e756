package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxURLLength is the longest input the validator will parse.
	MaxURLLength = 2048

	// DefaultResolveTimeout bounds the DNS step of one validation.
	DefaultResolveTimeout = 10 * time.Second
)

// localhostNames are rejected before any IP or DNS handling.
var localhostNames = map[string]bool{
	"localhost":       true,
	"127.0.0.1":       true,
	"0.0.0.0":         true,
	"::1":             true,
	"[::1]":           true,
	"0:0:0:0:0:0:0:1": true,
}

// fqdnPattern accepts dot-separated labels of 1-63 alphanumeric or hyphen
// characters that neither start nor end with a hyphen.
var fqdnPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)

// dottedQuadPattern matches hostnames shaped like an IPv4 address. Those that
// did not parse as one (octal or out-of-range octets) are ambiguous to
// resolvers and are rejected.
var dottedQuadPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+$`)

// Validator decides whether an untrusted URL string is safe to fetch from
// the server process. It holds no per-request state and computes every
// verdict fresh; resolved addresses are never cached.
type Validator struct {
	resolver       *HostResolver
	logger         *slog.Logger
	resolveTimeout time.Duration
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithResolver sets the resolver used for the DNS step.
func WithResolver(r Resolver) ValidatorOption {
	return func(v *Validator) {
		v.resolver = NewHostResolver(r)
	}
}

// WithLogger sets the logger used for resolution warnings.
func WithLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithResolveTimeout bounds the DNS step. Non-positive values are ignored.
func WithResolveTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.resolveTimeout = d
		}
	}
}

// NewValidator creates a Validator. Without options it resolves through
// net.DefaultResolver and logs through slog.Default().
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		resolveTimeout: DefaultResolveTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.resolver == nil {
		v.resolver = NewHostResolver(nil)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Validate runs the admission checks in order and returns the first
// rejection, or an accepted verdict carrying the parsed URL.
//
// A DNS failure does not reject the URL. It is logged at warn level and the
// URL is accepted. Only IPv4 answers are classified.
func (v *Validator) Validate(ctx context.Context, raw string) Verdict {
	if raw == "" {
		return reject(ReasonEmpty)
	}
	if utf8.RuneCountInString(raw) > MaxURLLength {
		return reject(ReasonTooLong)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return reject(ReasonMalformedURL)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return reject(ReasonSchemeNotAllowed)
	}
	u.Scheme = scheme

	hostname := u.Hostname()
	if hostname == "" {
		return reject(ReasonNoHostname)
	}

	lower := strings.ToLower(hostname)
	if localhostNames[lower] {
		return reject(ReasonLocalhostBlocked)
	}

	if addr, err := netip.ParseAddr(lower); err == nil {
		if IsBlockedAddr(addr) {
			return reject(ReasonPrivateIPBlocked)
		}
		return accept(newParsedURL(u))
	}

	if dottedQuadPattern.MatchString(hostname) {
		v.logger.Warn("suspicious hostname pattern detected", "hostname", hostname)
		return reject(ReasonInvalidHostnameFormat)
	}

	if !fqdnPattern.MatchString(hostname) {
		return reject(ReasonInvalidHostnameFormat)
	}

	if reason := v.checkResolved(ctx, lower); reason != ReasonNone {
		return reject(reason)
	}

	return accept(newParsedURL(u))
}

// checkResolved classifies every IPv4 address of hostname.
func (v *Validator) checkResolved(ctx context.Context, hostname string) Reason {
	ctx, cancel := context.WithTimeout(ctx, v.resolveTimeout)
	defer cancel()

	addrs, err := v.resolver.ResolveIPv4(ctx, hostname)
	switch {
	case errors.Is(err, ErrIPv6Only):
		v.logger.Info("hostname has no IPv4 addresses; IPv6 addresses are not checked",
			"hostname", hostname,
		)
		return ReasonNone
	case err != nil:
		v.logger.Warn("DNS resolution failed, allowing request",
			"hostname", hostname,
			"error", err,
		)
		return ReasonNone
	}

	for _, addr := range addrs {
		if IsBlockedAddr(addr) {
			v.logger.Warn("hostname resolved to blocked address",
				"hostname", hostname,
				"address", addr.String(),
			)
			return ReasonResolvedToPrivateIP
		}
	}
	return ReasonNone
}
