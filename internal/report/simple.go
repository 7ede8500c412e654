package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-page visit log.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the visit log.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeExclusions(&sb, report)
	w.writeTopWords(&sb, report)
	if w.verbose {
		w.writePages(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteList outputs one line per report, newest first as given.
func (w *SimpleWriter) WriteList(reports []*model.CrawlReport) (int, error) {
	var sb strings.Builder

	if len(reports) == 0 {
		sb.WriteString("No crawl history.\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("%-36s  %-19s  %-7s  %-18s  %5s  %s\n",
		"ID", "STARTED", "MODE", "STATUS", "PAGES", "SEED"))
	for _, r := range reports {
		sb.WriteString(fmt.Sprintf("%-36s  %-19s  %-7s  %-18s  %5d  %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Status,
			r.PagesVisited,
			r.Seed,
		))
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WORDCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Crawl ID:       %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("Mode:           %s\n", report.Mode))
	sb.WriteString(fmt.Sprintf("Seed:           %s\n", report.Seed))
	sb.WriteString(fmt.Sprintf("Authority:      %s\n", orDash(report.Authority)))
	if report.Mode == model.ModeSearch {
		sb.WriteString(fmt.Sprintf("Target Word:    %s\n", report.Word))
	}
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", statusText(report)))
	sb.WriteString("\n")
}

// writeSummary writes page counts and the search result.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Pages Visited: %d / %d\n", report.PagesVisited, report.PageBudget))
	sb.WriteString(fmt.Sprintf("  Errors:        %d\n", report.Errors))
	sb.WriteString(fmt.Sprintf("  Non-HTML:      %d\n", report.NonHTML))

	if report.Mode == model.ModeSearch {
		if report.FoundURL != "" {
			sb.WriteString(fmt.Sprintf("\n  [+] %q found at %s\n", report.Word, report.FoundURL))
		} else {
			sb.WriteString(fmt.Sprintf("\n  [-] %q was not found\n", report.Word))
		}
	}
	if report.CorpusFile != "" {
		sb.WriteString(fmt.Sprintf("\n  Corpus written to %s\n", report.CorpusFile))
	}
	sb.WriteString("\n")
}

// writeExclusions lists robots.txt exclusions.
func (w *SimpleWriter) writeExclusions(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Exclusions) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ROBOTS.TXT EXCLUSIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, e := range report.Exclusions {
		sb.WriteString(fmt.Sprintf("  - %s\n", e))
	}
	sb.WriteString("\n")
}

// writeTopWords writes the word frequency table of a collect crawl.
func (w *SimpleWriter) writeTopWords(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.TopWords) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOP WORDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for i, wc := range report.TopWords {
		sb.WriteString(fmt.Sprintf("  %3d. %-30s %6d\n", i+1, wc.Word, wc.Count))
	}
	sb.WriteString("\n")
}

// writePages writes the visit log.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VISITED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, p := range report.Pages {
		sb.WriteString(fmt.Sprintf("  [%-8s] %s (%d links)\n", p.Outcome, p.URL, p.Links))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
