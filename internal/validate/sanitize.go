// Package validate normalizes and checks booking-funnel submissions
// before they reach persistence. Sanitization never fails: malformed
// values are stripped or emptied so the caller's required-field
// validation reports them uniformly. Validation collects every
// violation instead of short-circuiting so the client can display a
// complete error list.
package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default maximum lengths per field class. Sanitization truncates,
// it never expands.
const (
	MaxName    = 100
	MaxEmail   = 254
	MaxPhone   = 20
	MaxGeneric = 200
	MaxMessage = 500
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phoneRe = regexp.MustCompile(`^[0-9+\-() .]{8,20}$`)
)

// CleanString trims whitespace, removes angle brackets and NUL bytes
// and truncates to max bytes. The cut lands on a rune boundary so a
// multi-byte character at the cap is dropped whole, never split into
// invalid UTF-8. Applying it to already-clean input is a no-op.
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', 0:
			return -1
		}
		return r
	}, s)
	if max > 0 && len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// CleanEmail lower-cases and shape-checks an email address. Invalid
// addresses become the empty string so required-field validation
// fails for them downstream.
func CleanEmail(s string) string {
	s = strings.ToLower(CleanString(s, MaxEmail))
	if !emailRe.MatchString(s) {
		return ""
	}
	return s
}

// CleanPhone accepts digits and common separators with a total length
// of 8 to 20 characters; anything else becomes the empty string.
func CleanPhone(s string) string {
	s = CleanString(s, MaxPhone)
	if !phoneRe.MatchString(s) {
		return ""
	}
	return s
}

// CleanURL keeps only absolute http/https URLs; everything else is
// discarded. Used for referrer and blob-store references.
func CleanURL(s string) string {
	s = CleanString(s, MaxGeneric)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return s
}
