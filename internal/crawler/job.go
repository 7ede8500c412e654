package crawler

import (
	"context"
	"errors"
	"strings"

	"github.com/nao1215/wordcrawl/internal/fetch"
	"github.com/nao1215/wordcrawl/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFetched is returned when a job is analyzed before a successful fetch.
var ErrNotFetched = errors.New("job has not been fetched successfully")

// PageFetcher retrieves one page using the given client identity.
// *fetch.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL, identity string) (*fetch.Page, error)
}

// Kind selects what a job does with a fetched page.
type Kind int

const (
	// KindSearch looks for a target word in the page text.
	KindSearch Kind = iota

	// KindCollect keeps the lowercased page text.
	KindCollect
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindCollect:
		return "collect"
	default:
		return "unknown"
	}
}

// analysis inspects the text of a fetched page. It returns whether the
// job reached its goal and the text to hand back to the caller, if any.
type analysis func(text string) (bool, string)

// Job is one fetch-and-extract unit against a single URL.
// A job is used once, by one goroutine at a time.
type Job struct {
	kind    Kind
	url     string
	analyze analysis
	scope   Scope

	fetched model.JobResult
	page    *fetch.Page
}

// NewSearchJob returns a job that searches rawURL for word, ignoring case.
func NewSearchJob(rawURL, word string) *Job {
	target := lower(word)
	return &Job{
		kind: KindSearch,
		url:  rawURL,
		analyze: func(text string) (bool, string) {
			return strings.Contains(lower(text), target), ""
		},
		fetched: model.NewFetchResult(rawURL),
	}
}

// NewCollectJob returns a job that captures the lowercased text of rawURL.
func NewCollectJob(rawURL string) *Job {
	return &Job{
		kind: KindCollect,
		url:  rawURL,
		analyze: func(text string) (bool, string) {
			return true, lower(text)
		},
		fetched: model.NewFetchResult(rawURL),
	}
}

// Kind returns the job kind.
func (j *Job) Kind() Kind {
	return j.kind
}

// URL returns the address the job works on.
func (j *Job) URL() string {
	return j.url
}

// WithScope confines the job to s. A page whose final address after
// redirects falls outside s is treated like a non-HTML response.
func (j *Job) WithScope(s Scope) *Job {
	j.scope = s
	return j
}

// Fetch retrieves the page and extracts its links.
//
// A transport failure yields errored=true. A non-HTML response yields an
// undetermined result with no links, as does a redirect that left the
// job's scope. Only an in-scope HTML page succeeds.
func (j *Job) Fetch(ctx context.Context, f PageFetcher, identity string) model.JobResult {
	page, err := f.Fetch(ctx, j.url, identity)
	switch {
	case err != nil:
		j.fetched = model.NewFetchResult(j.url).WithError()
	case !page.IsHTML(), j.leftScope(page):
		j.fetched = model.NewFetchResult(j.url)
	default:
		j.page = page
		j.fetched = model.NewFetchResult(j.url).WithSuccess(true)
	}
	return j.fetched
}

func (j *Job) leftScope(page *fetch.Page) bool {
	return j.scope != nil && page.FinalURL != "" && page.FinalURL != j.url && !j.scope.InScope(page.FinalURL)
}

// Links returns the extracted link targets, or nil unless Fetch succeeded.
func (j *Job) Links() []string {
	if j.page == nil {
		return nil
	}
	return j.page.Links
}

// Analyze runs the job's analysis on the fetched page text.
// It returns ErrNotFetched unless Fetch succeeded first.
func (j *Job) Analyze() (model.JobResult, string, error) {
	if !j.fetched.Succeeded || j.page == nil {
		return model.JobResult{}, "", ErrNotFetched
	}
	result, text := j.analyzePage()
	return result, text, nil
}

// analyzePage runs the analysis on j.page, which must be set.
func (j *Job) analyzePage() (model.JobResult, string) {
	ok, text := j.analyze(j.page.Text)
	return j.newAnalysisResult().WithSuccess(ok), text
}

func (j *Job) newAnalysisResult() model.JobResult {
	if j.kind == KindCollect {
		return model.NewWordCollectResult(j.url)
	}
	return model.NewWordSearchResult(j.url)
}

// Outcome is everything a finished job hands back to the crawl loop.
type Outcome struct {
	URL      string
	Fetch    model.JobResult
	Analysis model.JobResult
	Links    []string
	Text     string
}

// Run fetches the page and, when the fetch succeeded, analyzes it.
func (j *Job) Run(ctx context.Context, f PageFetcher, identity string) Outcome {
	out := Outcome{
		URL:      j.url,
		Fetch:    j.Fetch(ctx, f, identity),
		Analysis: j.newAnalysisResult(),
	}
	if !out.Fetch.Succeeded {
		return out
	}
	out.Links = j.Links()
	out.Analysis, out.Text = j.analyzePage()
	return out
}

// PageOutcome classifies the outcome for the visit log.
func (o Outcome) PageOutcome() model.PageOutcome {
	switch {
	case o.Fetch.Errored:
		return model.OutcomeErrored
	case !o.Fetch.Succeeded:
		return model.OutcomeNonHTML
	case o.Analysis.Kind == model.ResultWordSearch && o.Analysis.Succeeded:
		return model.OutcomeMatched
	default:
		return model.OutcomeFetched
	}
}

// lower folds s to lower case. A Caser keeps state, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
