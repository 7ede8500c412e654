package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// createSearchReport creates a finished search report for testing.
func createSearchReport() *model.CrawlReport {
	report := model.NewCrawlReport(model.ModeSearch, "https://example.com")
	report.Authority = "example.com"
	report.Word = "widget"
	report.PageBudget = 100
	report.Exclusions = []string{"https://example.com/private"}
	report.Record(model.PageVisit{URL: "https://example.com", Outcome: model.OutcomeFetched, Links: 3})
	report.Record(model.PageVisit{URL: "https://example.com/doc.pdf", Outcome: model.OutcomeNonHTML})
	report.Record(model.PageVisit{URL: "https://example.com/down", Outcome: model.OutcomeErrored})
	report.Record(model.PageVisit{URL: "https://example.com/a/deep", Outcome: model.OutcomeMatched, Links: 1})
	report.PagesVisited = 4
	report.Finish(model.StatusSucceeded, "")
	return report
}

// createCollectReport creates a finished collect report for testing.
func createCollectReport() *model.CrawlReport {
	report := model.NewCrawlReport(model.ModeCollect, "https://example.com")
	report.Authority = "example.com"
	report.PageBudget = 2
	report.Record(model.PageVisit{URL: "https://example.com", Outcome: model.OutcomeFetched, Links: 1})
	report.Record(model.PageVisit{URL: "https://example.com/b", Outcome: model.OutcomeFetched})
	report.PagesVisited = 2
	report.TopWords = []model.WordCount{{Word: "gopher", Count: 7}, {Word: "crawler", Count: 3}}
	report.CorpusFile = "/tmp/corpus.txt"
	report.Finish(model.StatusExhaustedBudget, "")
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes search report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createSearchReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"WORDCRAWL REPORT",
			"example.com",
			"Target Word:    widget",
			"Pages Visited: 4 / 100",
			`"widget" found at https://example.com/a/deep`,
			"ROBOTS.TXT EXCLUSIONS",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "VISITED PAGES") {
			t.Error("visit log should only be shown in verbose mode")
		}
	})

	t.Run("verbose shows visit log", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createSearchReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[non-html] https://example.com/doc.pdf") {
			t.Errorf("expected visit log, got:\n%s", buf.String())
		}
	})

	t.Run("writes top words for collect report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createCollectReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "TOP WORDS") || !strings.Contains(output, "gopher") {
			t.Error("expected top words section")
		}
		if strings.Contains(output, "Target Word") {
			t.Error("collect report has no target word")
		}
		if !strings.Contains(output, "Corpus written to /tmp/corpus.txt") {
			t.Error("expected corpus file line")
		}
	})

	t.Run("writes abort reason", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport(model.ModeSearch, "https://example.com")
		report.Finish(model.StatusAborted, "site opted out of crawling for all agents")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Aborted - site opted out") {
			t.Errorf("expected abort reason, got:\n%s", buf.String())
		}
	})

	t.Run("writes history list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		reports := []*model.CrawlReport{createSearchReport(), createCollectReport()}
		if _, err := NewSimpleWriter(&buf).WriteList(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if !strings.Contains(lines[1], reports[0].ID) || !strings.Contains(lines[1], "succeeded") {
			t.Errorf("unexpected row %q", lines[1])
		}
	})

	t.Run("writes empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteList(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No crawl history") {
			t.Error("expected empty history message")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createSearchReport()
		if _, err := NewJSONWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.ID != report.ID || decoded.Status != model.StatusSucceeded {
			t.Errorf("got %+v", decoded)
		}
		if decoded.FoundURL != "https://example.com/a/deep" {
			t.Errorf("got found URL %q", decoded.FoundURL)
		}
	})

	t.Run("encodes status by name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createCollectReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"status":"exhausted-budget"`) {
			t.Errorf("unexpected JSON: %s", buf.String())
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createSearchReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"id\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("wraps report with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createSearchReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Report == nil {
			t.Errorf("got %+v", decoded)
		}
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteList(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("got %q", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes search report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createSearchReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Wordcrawl Report",
			"## Outcome",
			"```mermaid",
			"## Robots.txt Exclusions",
			"## Visited Pages",
			"https://example.com/a/deep",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes top words", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createCollectReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "## Top Words") || !strings.Contains(buf.String(), "gopher") {
			t.Error("expected top words table")
		}
	})

	t.Run("writes history table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createSearchReport()
		if _, err := NewMarkdownWriter(&buf).WriteList([]*model.CrawlReport{report}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "# Crawl History") || !strings.Contains(buf.String(), report.ID) {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var buf1, buf2 bytes.Buffer
	multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

	report := createSearchReport()
	n, err := multi.Write(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf1.Len()+buf2.Len() {
		t.Errorf("got %d bytes, expected %d", n, buf1.Len()+buf2.Len())
	}
	if !strings.Contains(buf1.String(), report.ID) || !strings.Contains(buf2.String(), report.ID) {
		t.Error("expected both writers to receive the report")
	}

	if _, err := multi.WriteList([]*model.CrawlReport{report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	report := model.NewCrawlReport(model.ModeSearch, "https://example.com")
	if statusText(report) != "Running" {
		t.Errorf("got %q", statusText(report))
	}
	report.Finish(model.StatusCancelled, "interrupted")
	if !strings.Contains(statusText(report), "Cancelled") {
		t.Errorf("got %q", statusText(report))
	}
	if report.Duration() > time.Minute {
		t.Error("unexpected duration")
	}
}
