package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/wordcrawl/internal/address"
	"github.com/nao1215/wordcrawl/internal/model"
)

func TestSearchJob(t *testing.T) {
	t.Parallel()

	site := newFakeSite().
		html("https://example.com/", "Buy a shiny WIDGET today", "https://example.com/a", "https://example.com/a").
		html("https://example.com/b", "nothing to see").
		binary("https://example.com/doc.pdf")

	t.Run("finds the word ignoring case", func(t *testing.T) {
		t.Parallel()
		job := NewSearchJob("https://example.com/", "Widget")
		out := job.Run(context.Background(), site, "TestBot/1.0")

		if !out.Fetch.Succeeded || out.Fetch.Errored {
			t.Fatalf("fetch should succeed: %+v", out.Fetch)
		}
		if out.Analysis.Kind != model.ResultWordSearch || !out.Analysis.Succeeded {
			t.Errorf("expected a successful word search, got %+v", out.Analysis)
		}
		if len(out.Links) != 2 {
			t.Errorf("duplicate links must be kept, got %v", out.Links)
		}
		if out.PageOutcome() != model.OutcomeMatched {
			t.Errorf("got outcome %s", out.PageOutcome())
		}
	})

	t.Run("reports absence of the word", func(t *testing.T) {
		t.Parallel()
		out := NewSearchJob("https://example.com/b", "widget").Run(context.Background(), site, "TestBot/1.0")
		if out.Analysis.Succeeded || out.Analysis.Errored {
			t.Errorf("expected an unsuccessful search, got %+v", out.Analysis)
		}
		if out.PageOutcome() != model.OutcomeFetched {
			t.Errorf("got outcome %s", out.PageOutcome())
		}
	})

	t.Run("non-HTML is neither success nor error", func(t *testing.T) {
		t.Parallel()
		out := NewSearchJob("https://example.com/doc.pdf", "widget").Run(context.Background(), site, "TestBot/1.0")
		if !out.Fetch.Undetermined() {
			t.Errorf("expected undetermined fetch, got %+v", out.Fetch)
		}
		if out.Links != nil {
			t.Errorf("expected no links, got %v", out.Links)
		}
		if out.PageOutcome() != model.OutcomeNonHTML {
			t.Errorf("got outcome %s", out.PageOutcome())
		}
	})

	t.Run("transport failure is errored and yields no links", func(t *testing.T) {
		t.Parallel()
		out := NewSearchJob("https://example.com/missing", "widget").Run(context.Background(), site, "TestBot/1.0")
		if !out.Fetch.Errored || out.Fetch.Succeeded {
			t.Errorf("expected errored fetch, got %+v", out.Fetch)
		}
		if len(out.Links) != 0 {
			t.Errorf("errored job must not contribute links, got %v", out.Links)
		}
		if out.PageOutcome() != model.OutcomeErrored {
			t.Errorf("got outcome %s", out.PageOutcome())
		}
	})
}

func TestCollectJob(t *testing.T) {
	t.Parallel()

	site := newFakeSite().html("https://example.com/", "Hello World ÄPFEL")

	job := NewCollectJob("https://example.com/")
	out := job.Run(context.Background(), site, "TestBot/1.0")

	if out.Analysis.Kind != model.ResultWordCollect || !out.Analysis.Succeeded {
		t.Errorf("expected a successful collect, got %+v", out.Analysis)
	}
	if out.Text != "hello world äpfel" {
		t.Errorf("got text %q", out.Text)
	}
	if job.Kind() != KindCollect || job.Kind().String() != "collect" {
		t.Errorf("got kind %s", job.Kind())
	}
}

func TestJobAnalyzeBeforeFetch(t *testing.T) {
	t.Parallel()

	t.Run("never fetched", func(t *testing.T) {
		t.Parallel()
		_, _, err := NewSearchJob("https://example.com/", "widget").Analyze()
		if !errors.Is(err, ErrNotFetched) {
			t.Errorf("expected ErrNotFetched, got %v", err)
		}
	})

	t.Run("fetch failed", func(t *testing.T) {
		t.Parallel()
		job := NewCollectJob("https://example.com/missing")
		job.Fetch(context.Background(), newFakeSite(), "TestBot/1.0")
		_, _, err := job.Analyze()
		if !errors.Is(err, ErrNotFetched) {
			t.Errorf("expected ErrNotFetched, got %v", err)
		}
	})
}

func TestJobUsesIdentity(t *testing.T) {
	t.Parallel()

	site := newFakeSite().html("https://example.com/", "text")
	NewSearchJob("https://example.com/", "x").Run(context.Background(), site, "Agent/7")

	if len(site.identities) != 1 || site.identities[0] != "Agent/7" {
		t.Errorf("got identities %v", site.identities)
	}
}

func TestJobAnalyzeAfterFetch(t *testing.T) {
	t.Parallel()

	site := newFakeSite().html("https://example.com/", "a Widget here")
	job := NewSearchJob("https://example.com/", "widget")
	out := job.Run(context.Background(), site, "TestBot/1.0")

	result, text, err := job.Analyze()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != out.Analysis || text != out.Text {
		t.Errorf("Analyze() = %+v %q, Run analysis = %+v %q", result, text, out.Analysis, out.Text)
	}
}

func TestJobRedirectScope(t *testing.T) {
	t.Parallel()

	matcher, err := address.NewMatcher("https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	site := newFakeSite().
		redirect("https://example.com/out", "https://other.com/widget", "widget", "https://other.com/next").
		redirect("https://example.com/old", "https://www.example.com/new", "widget", "https://example.com/c")

	tests := []struct {
		name        string
		url         string
		scope       Scope
		wantOutcome model.PageOutcome
		wantLinks   int
	}{
		{
			name:        "redirect off site is not crawled",
			url:         "https://example.com/out",
			scope:       matcher,
			wantOutcome: model.OutcomeNonHTML,
			wantLinks:   0,
		},
		{
			name:        "redirect within site is crawled",
			url:         "https://example.com/old",
			scope:       matcher,
			wantOutcome: model.OutcomeMatched,
			wantLinks:   1,
		},
		{
			name:        "unscoped job follows any redirect",
			url:         "https://example.com/out",
			scope:       nil,
			wantOutcome: model.OutcomeMatched,
			wantLinks:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := NewSearchJob(tt.url, "widget")
			if tt.scope != nil {
				job.WithScope(tt.scope)
			}
			out := job.Run(context.Background(), site, "TestBot/1.0")

			if got := out.PageOutcome(); got != tt.wantOutcome {
				t.Errorf("got outcome %s, want %s", got, tt.wantOutcome)
			}
			if out.Fetch.Errored {
				t.Errorf("redirect must not count as an error: %+v", out.Fetch)
			}
			if len(out.Links) != tt.wantLinks {
				t.Errorf("got links %v, want %d", out.Links, tt.wantLinks)
			}
		})
	}
}
