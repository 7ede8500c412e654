package model

import (
	"testing"
	"time"
)

func TestNewCrawlReport(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport(ModeSearch, "https://example.com")

	if r.ID == "" {
		t.Error("expected an ID")
	}
	if r.Status != StatusRunning {
		t.Errorf("got status %s, expected running", r.Status)
	}
	if r.Pages == nil || r.Exclusions == nil {
		t.Error("expected slices to be initialized")
	}
	if time.Since(r.StartedAt) > time.Second {
		t.Error("StartedAt is too old")
	}
	if other := NewCrawlReport(ModeSearch, "https://example.com"); other.ID == r.ID {
		t.Error("IDs must be unique")
	}
}

func TestCrawlReportRecord(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport(ModeSearch, "https://example.com")
	r.Record(PageVisit{URL: "https://example.com", Outcome: OutcomeFetched, Links: 3})
	r.Record(PageVisit{URL: "https://example.com/a.pdf", Outcome: OutcomeNonHTML})
	r.Record(PageVisit{URL: "https://example.com/down", Outcome: OutcomeErrored})
	r.Record(PageVisit{URL: "https://example.com/b", Outcome: OutcomeMatched})

	if len(r.Pages) != 4 {
		t.Errorf("got %d pages, expected 4", len(r.Pages))
	}
	if r.Errors != 1 || r.NonHTML != 1 {
		t.Errorf("got errors=%d nonHTML=%d", r.Errors, r.NonHTML)
	}
	if r.FoundURL != "https://example.com/b" {
		t.Errorf("got FoundURL %q", r.FoundURL)
	}
}

func TestCrawlReportFinish(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport(ModeCollect, "https://example.com")
	r.Finish(StatusExhaustedBudget, "")
	r.Finish(StatusAborted, "late")

	if r.Status != StatusExhaustedBudget {
		t.Errorf("terminal status must not change, got %s", r.Status)
	}
	if r.Reason != "" {
		t.Errorf("got reason %q", r.Reason)
	}
	if r.FinishedAt.IsZero() {
		t.Error("expected FinishedAt to be set")
	}
	if r.Duration() < 0 {
		t.Error("negative duration")
	}
}
