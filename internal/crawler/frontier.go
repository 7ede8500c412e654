package crawler

import (
	"errors"

	"github.com/nao1215/wordcrawl/internal/address"
	"github.com/nao1215/wordcrawl/internal/robots"
)

// ErrFrontierExhausted is returned by PopNext when the queue holds no
// valid, in-scope, unvisited address.
var ErrFrontierExhausted = errors.New("frontier exhausted")

// Scope decides whether an address belongs to the crawl.
// *address.Matcher satisfies it.
type Scope interface {
	InScope(rawURL string) bool
}

// Frontier is the queue of discovered addresses plus the ledger of
// visited ones. Entries are filtered lazily when popped.
//
// A Frontier is owned by a single crawl loop and is not safe for
// concurrent use.
type Frontier struct {
	queue      []string
	visited    map[string]struct{}
	scope      Scope
	exclusions robots.ExclusionSet
}

// NewFrontier returns an empty frontier limited to scope. Addresses under
// one of the exclusion prefixes are treated as already visited.
func NewFrontier(scope Scope, exclusions robots.ExclusionSet) *Frontier {
	return &Frontier{
		visited:    make(map[string]struct{}),
		scope:      scope,
		exclusions: exclusions,
	}
}

// OfferAll appends urls to the queue tail without any filtering.
func (f *Frontier) OfferAll(urls ...string) {
	f.queue = append(f.queue, urls...)
}

// MarkVisited records rawURL in the ledger without it being popped.
func (f *Frontier) MarkVisited(rawURL string) {
	f.visited[rawURL] = struct{}{}
}

// Visited reports whether rawURL is in the ledger.
func (f *Frontier) Visited(rawURL string) bool {
	_, ok := f.visited[rawURL]
	return ok
}

// PopNext removes entries from the head of the queue until it finds one
// that is valid, in scope, not excluded and not yet visited. That entry is
// added to the ledger and returned.
func (f *Frontier) PopNext() (string, error) {
	for len(f.queue) > 0 {
		next := f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]

		if !f.qualifies(next) {
			continue
		}
		f.visited[next] = struct{}{}
		return next, nil
	}
	return "", ErrFrontierExhausted
}

func (f *Frontier) qualifies(rawURL string) bool {
	if !address.Valid(rawURL) {
		return false
	}
	if f.Visited(rawURL) {
		return false
	}
	if !f.scope.InScope(rawURL) {
		return false
	}
	return !f.exclusions.Excludes(rawURL)
}

// Size returns the number of visited addresses.
func (f *Frontier) Size() int {
	return len(f.visited)
}

// Pending returns the number of queued entries, unfiltered.
func (f *Frontier) Pending() int {
	return len(f.queue)
}
