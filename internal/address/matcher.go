package address

import (
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
)

// ErrNoAuthority is raised when a Matcher is used before an authority was set.
var ErrNoAuthority = errors.New("authority is not set")

// scope is an immutable snapshot of the active authority and its pattern.
type scope struct {
	authority string
	pattern   *regexp.Regexp
}

// Matcher holds the authority a crawl is confined to and answers whether
// an address belongs to it.
//
// The scope is published atomically, so a Matcher configured before workers
// start is safe to read from any number of goroutines. Build it with
// NewMatcher; the zero value has no authority and panics on use.
type Matcher struct {
	current atomic.Pointer[scope]
}

// NewMatcher returns a Matcher scoped to the authority of seed.
// An invalid seed is a fatal configuration error and is returned as-is.
func NewMatcher(seed string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.SetAuthority(seed); err != nil {
		return nil, err
	}
	return m, nil
}

// SetAuthority validates rawURL, derives its authority and rebuilds the
// match pattern. On failure the previous scope is left untouched and the
// caller must abort the crawl.
func (m *Matcher) SetAuthority(rawURL string) error {
	authority, err := Authority(rawURL)
	if err != nil {
		return fmt.Errorf("cannot scope crawl: %w", err)
	}
	m.current.Store(&scope{
		authority: authority,
		pattern:   compileScope(authority),
	})
	return nil
}

// Authority returns the active authority, e.g. "example.com".
func (m *Matcher) Authority() (string, error) {
	s := m.current.Load()
	if s == nil {
		return "", ErrNoAuthority
	}
	return s.authority, nil
}

// InScope reports whether rawURL is a valid address served by the active
// authority, with or without a leading "www.".
func (m *Matcher) InScope(rawURL string) bool {
	s := m.current.Load()
	if s == nil {
		panic(ErrNoAuthority)
	}
	if !Valid(rawURL) {
		return false
	}
	return s.pattern.MatchString(rawURL)
}

// OutOfScope is the negation of InScope.
func (m *Matcher) OutOfScope(rawURL string) bool {
	return !m.InScope(rawURL)
}

// compileScope builds scheme://(www.)?authority, an optional numeric port,
// then end of input, a path, a query or a fragment. Anything else after the
// authority (userinfo such as "authority:x@other") is out of scope.
func compileScope(authority string) *regexp.Regexp {
	return regexp.MustCompile(`^https?://(www\.)?` + regexp.QuoteMeta(authority) + `(:[0-9]+)?([/?#].*)?$`)
}
