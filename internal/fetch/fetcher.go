package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBodySize caps how much of a response body is parsed.
const DefaultMaxBodySize = 5 * 1024 * 1024

// ErrHTTPStatus is returned for responses with a 4xx or 5xx status code.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Page is what one fetch yields.
type Page struct {
	// URL is the address that was requested.
	URL string

	// FinalURL is the address after redirects.
	FinalURL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the raw Content-Type header.
	ContentType string

	// Text is the visible text of the body, whitespace collapsed.
	// Empty for non-HTML responses.
	Text string

	// Links are the href targets of every anchor, in document order,
	// resolved to absolute addresses. Duplicates are kept.
	Links []string
}

// IsHTML reports whether the response declared an HTML media type.
func (p *Page) IsHTML() bool {
	return isHTML(p.ContentType)
}

// Fetcher retrieves pages over HTTP.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	headers     map[string]string
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBodySize sets the maximum number of body bytes parsed.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds request headers to every fetch, e.g. a Cookie.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher that uses client.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
		headers:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch issues a GET for rawURL presenting identity as the User-Agent.
//
// Transport failures and 4xx/5xx statuses are returned as errors. A
// non-HTML response is not an error: the returned Page carries its
// content type and no text or links.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, identity string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", identity)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	page := &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return page, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}
	if !page.IsHTML() {
		f.logger.Debug("skipping non-HTML response",
			"url", rawURL,
			"contentType", page.ContentType,
		)
		return page, nil
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), page.ContentType)
	if err != nil {
		return page, fmt.Errorf("failed to decode body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return page, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page.Links = extractLinks(doc, resp.Request.URL)
	page.Text = extractText(doc)
	return page, nil
}

// extractLinks resolves every a[href] against the document base, which is
// the response URL unless a <base href> overrides it.
func extractLinks(doc *goquery.Document, pageURL *url.URL) []string {
	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := pageURL.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}

	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, u.String())
	})
	return links
}

// extractText returns the body's visible text with whitespace collapsed.
func extractText(doc *goquery.Document) string {
	body := doc.Find("body")
	body.Find("script, style, noscript, template").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
