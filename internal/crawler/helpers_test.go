package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/wordcrawl/internal/fetch"
	"github.com/nao1215/wordcrawl/internal/identity"
	"github.com/nao1215/wordcrawl/internal/robots"
)

var errUnreachable = errors.New("connection refused")

// fakeSite serves canned pages and records every requested URL.
// Addresses it does not know fail like an unreachable host.
type fakeSite struct {
	mu         sync.Mutex
	pages      map[string]*fetch.Page
	requested  []string
	identities []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{pages: make(map[string]*fetch.Page)}
}

func (s *fakeSite) html(rawURL, text string, links ...string) *fakeSite {
	s.pages[rawURL] = &fetch.Page{
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Text:        text,
		Links:       links,
	}
	return s
}

// redirect serves an HTML page for rawURL as if the server had sent the
// client on to finalURL.
func (s *fakeSite) redirect(rawURL, finalURL, text string, links ...string) *fakeSite {
	s.html(rawURL, text, links...)
	s.pages[rawURL].FinalURL = finalURL
	return s
}

func (s *fakeSite) binary(rawURL string) *fakeSite {
	s.pages[rawURL] = &fetch.Page{
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  200,
		ContentType: "application/pdf",
	}
	return s
}

func (s *fakeSite) Fetch(ctx context.Context, rawURL, ident string) (*fetch.Page, error) {
	s.mu.Lock()
	s.requested = append(s.requested, rawURL)
	s.identities = append(s.identities, ident)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, ok := s.pages[rawURL]
	if !ok {
		return nil, errUnreachable
	}
	return page, nil
}

func (s *fakeSite) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}

// staticExclusions returns a fixed exclusion set or error.
type staticExclusions struct {
	set robots.ExclusionSet
	err error
}

func (e staticExclusions) LoadExclusions(context.Context, string) (robots.ExclusionSet, error) {
	return e.set, e.err
}

func testPool(t interface{ Fatalf(string, ...any) }, ids ...string) *identity.Pool {
	if len(ids) == 0 {
		ids = []string{"TestBot/1.0"}
	}
	pool, err := identity.NewPool(ids)
	if err != nil {
		t.Fatalf("failed to build identity pool: %v", err)
	}
	return pool
}
