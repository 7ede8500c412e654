package model

import (
	"time"

	"github.com/google/uuid"
)

// Mode is the kind of crawl that produced a report.
type Mode string

const (
	// ModeSearch crawls until a target word is found or the budget runs out.
	ModeSearch Mode = "search"

	// ModeCollect crawls until the budget runs out, keeping page text.
	ModeCollect Mode = "collect"
)

// CrawlReport is the result of one crawl run.
// It is what the CLI prints and what the history database stores.
type CrawlReport struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// Mode is either search or collect.
	Mode Mode `json:"mode"`

	// Seed is the starting address as given by the user.
	Seed string `json:"seed"`

	// Authority is the host the crawl was confined to.
	// Empty when the seed was invalid.
	Authority string `json:"authority,omitempty"`

	// Word is the target word in search mode.
	Word string `json:"word,omitempty"`

	// Status is the terminal state of the crawl.
	Status Status `json:"status"`

	// Reason explains an Aborted or Cancelled status.
	Reason string `json:"reason,omitempty"`

	// PagesVisited is the number of addresses handed out by the frontier.
	PagesVisited int `json:"pages_visited"`

	// PageBudget is the configured maximum of visited pages.
	PageBudget int `json:"page_budget"`

	// FoundURL is the page where the target word was found.
	FoundURL string `json:"found_url,omitempty"`

	// Errors counts jobs that failed at the transport level.
	Errors int `json:"errors"`

	// NonHTML counts pages skipped because they were not HTML.
	NonHTML int `json:"non_html"`

	// Exclusions lists the path prefixes taken from robots.txt.
	Exclusions []string `json:"exclusions,omitempty"`

	// Pages is the visit log in dispatch order.
	Pages []PageVisit `json:"pages,omitempty"`

	// TopWords is the word frequency table of a collect crawl.
	TopWords []WordCount `json:"top_words,omitempty"`

	// CorpusFile is where the collected text was written, if anywhere.
	CorpusFile string `json:"corpus_file,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// PageOutcome summarizes what happened to one visited page.
type PageOutcome string

const (
	OutcomeFetched PageOutcome = "fetched"
	OutcomeMatched PageOutcome = "matched"
	OutcomeNonHTML PageOutcome = "non-html"
	OutcomeErrored PageOutcome = "errored"
)

// PageVisit is one entry in the visit log.
type PageVisit struct {
	URL     string      `json:"url"`
	Outcome PageOutcome `json:"outcome"`
	Links   int         `json:"links"`
}

// WordCount is one row of a word frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// NewCrawlReport creates a running report with a fresh ID and start time.
func NewCrawlReport(mode Mode, seed string) *CrawlReport {
	return &CrawlReport{
		ID:         uuid.NewString(),
		Mode:       mode,
		Seed:       seed,
		Status:     StatusRunning,
		Exclusions: []string{},
		Pages:      []PageVisit{},
		StartedAt:  time.Now(),
	}
}

// Record appends a visit and updates the outcome counters.
func (r *CrawlReport) Record(visit PageVisit) {
	r.Pages = append(r.Pages, visit)
	switch visit.Outcome {
	case OutcomeErrored:
		r.Errors++
	case OutcomeNonHTML:
		r.NonHTML++
	case OutcomeMatched:
		r.FoundURL = visit.URL
	case OutcomeFetched:
	}
}

// Finish moves the report into a terminal status and stamps the end time.
// A report that is already terminal is left untouched.
func (r *CrawlReport) Finish(status Status, reason string) {
	if r.Status.Terminal() {
		return
	}
	r.Status = status
	r.Reason = reason
	r.FinishedAt = time.Now()
}

// Duration returns how long the crawl ran.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
