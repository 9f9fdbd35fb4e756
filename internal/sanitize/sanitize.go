// Package sanitize strips unsafe characters from and caps the length of
// strings that cross a trust boundary: client input, prompts sent to a text
// generator, and text returned to clients.
//
// Lengths are counted in characters (runes), not bytes, so truncation never
// splits a multi-byte character.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLength caps the output of Text.
	MaxTextLength = 10000

	// MaxURLLength caps the output of URL.
	MaxURLLength = 2048

	// InvalidURL is returned by URL for anything that is not http(s).
	InvalidURL = "#"
)

var (
	angleReplacer = strings.NewReplacer("<", "", ">", "")
	httpScheme    = regexp.MustCompile(`(?i)^https?://`)
)

// Text removes every '<' and '>', trims surrounding whitespace and truncates
// the result to MaxTextLength characters.
func Text(s string) string {
	return Clip(strings.TrimSpace(StripAngles(s)), MaxTextLength)
}

// URL returns "#" for empty input or input without an http/https scheme.
// Otherwise it returns the input truncated to MaxURLLength characters.
// The URL is not escaped; callers must still HTML-encode it when rendering.
func URL(s string) string {
	if s == "" || !httpScheme.MatchString(s) {
		return InvalidURL
	}
	return Clip(s, MaxURLLength)
}

// StripAngles removes every '<' and '>' from s.
func StripAngles(s string) string {
	return angleReplacer.Replace(s)
}

// Clip truncates s to at most n characters.
func Clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Bounded strips angle brackets and truncates to n characters. It is the
// transform applied to every field placed into a generator prompt.
func Bounded(s string, n int) string {
	return StripAngles(Clip(s, n))
}
