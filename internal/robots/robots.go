package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nao1215/wordcrawl/internal/address"
)

// ErrSiteOptedOut is returned when the wildcard record disallows "/".
// It is a terminal, non-error outcome for the crawl.
var ErrSiteOptedOut = errors.New("site opted out of crawling for all agents")

// manifestPath is appended to the seed's root.
const manifestPath = "/robots.txt"

// maxManifestSize caps how much of robots.txt is read.
const maxManifestSize = 512 * 1024

// ExclusionSet holds the disallowed path prefixes of one site.
// The zero value excludes nothing.
type ExclusionSet struct {
	root  string
	paths []string
}

// NewExclusionSet builds a set for root (e.g. "https://example.com") from
// disallowed paths (e.g. "/private").
func NewExclusionSet(root string, paths ...string) ExclusionSet {
	return ExclusionSet{root: root, paths: append([]string(nil), paths...)}
}

// Len returns the number of excluded prefixes.
func (e ExclusionSet) Len() int {
	return len(e.paths)
}

// Prefixes returns the fully-qualified excluded prefixes, root + path.
func (e ExclusionSet) Prefixes() []string {
	out := make([]string, 0, len(e.paths))
	for _, p := range e.paths {
		out = append(out, e.root+p)
	}
	return out
}

// Excludes reports whether rawURL falls under one of the disallowed paths.
// The comparison is made on the part after the root, so "www." and
// non-"www." spellings of the same host are treated alike.
func (e ExclusionSet) Excludes(rawURL string) bool {
	if len(e.paths) == 0 {
		return false
	}
	tail, err := address.Tail(rawURL)
	if err != nil {
		return false
	}
	if tail == "" {
		tail = "/"
	}
	for _, p := range e.paths {
		if strings.HasPrefix(tail, p) {
			return true
		}
	}
	return false
}

// Filter fetches and parses exclusion manifests.
type Filter struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger used to report manifest problems.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		f.logger = logger
	}
}

// WithUserAgent sets the User-Agent sent when fetching robots.txt.
func WithUserAgent(ua string) Option {
	return func(f *Filter) {
		f.userAgent = ua
	}
}

// NewFilter creates a Filter that uses client for retrieval.
func NewFilter(client *http.Client, opts ...Option) *Filter {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Filter{client: client}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// LoadExclusions fetches root(seedURL)/robots.txt and parses it.
//
// An invalid seed returns address.ErrInvalidURL. A full opt-out returns
// ErrSiteOptedOut. Any retrieval failure yields an empty set and nil error.
func (f *Filter) LoadExclusions(ctx context.Context, seedURL string) (ExclusionSet, error) {
	root, err := address.Root(seedURL)
	if err != nil {
		return ExclusionSet{}, err
	}

	body, err := f.fetch(ctx, root+manifestPath)
	if err != nil {
		f.logger.Debug("robots.txt unavailable, crawling without exclusions",
			"root", root,
			"error", err,
		)
		return NewExclusionSet(root), nil
	}
	defer body.Close()

	set, err := Parse(io.LimitReader(body, maxManifestSize), root)
	if err != nil {
		if errors.Is(err, ErrSiteOptedOut) {
			return set, err
		}
		f.logger.Debug("robots.txt unreadable, crawling without exclusions",
			"root", root,
			"error", err,
		)
		return NewExclusionSet(root), nil
	}

	for _, p := range set.Prefixes() {
		f.logger.Info("excluded by robots.txt", "prefix", p)
	}
	return set, nil
}

func (f *Filter) fetch(ctx context.Context, manifestURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Parse reads a robots.txt body and returns the exclusions of its first
// wildcard record, qualified with root.
func Parse(r io.Reader, root string) (ExclusionSet, error) {
	scanner := bufio.NewScanner(r)

	inRecord := false
	var paths []string
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		line := stripComment(raw)

		if !inRecord {
			field, value, ok := splitField(line)
			if ok && field == "user-agent" && value == "*" {
				inRecord = true
			}
			continue
		}

		if raw == "" {
			break
		}
		field, value, ok := splitField(line)
		if !ok || field != "disallow" || value == "" {
			continue
		}
		if value == "/" {
			return NewExclusionSet(root), ErrSiteOptedOut
		}
		paths = append(paths, value)
	}
	if err := scanner.Err(); err != nil {
		return NewExclusionSet(root), fmt.Errorf("failed to read robots.txt: %w", err)
	}
	return NewExclusionSet(root, paths...), nil
}

// splitField splits "Field: value" into a lowercased field and a trimmed value.
func splitField(line string) (string, string, bool) {
	field, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(field)), strings.TrimSpace(value), true
}

// stripComment removes a trailing "# ..." comment and surrounding space.
// A comment-only line does not end a record; only a truly blank line does.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
