package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/wordcrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeOutcome(md, report)
	w.writeExclusions(md, report)
	w.writeTopWords(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteList outputs a table of past crawls.
func (w *MarkdownWriter) WriteList(reports []*model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(reports) == 0 {
		md.PlainText("No crawl history.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(reports))
	for i, r := range reports {
		rows[i] = []string{
			"`" + r.ID + "`",
			r.StartedAt.Format(timeLayout),
			string(r.Mode),
			r.Status.String(),
			strconv.Itoa(r.PagesVisited),
			r.Seed,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Mode", "Status", "Pages", "Seed"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Wordcrawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Crawl ID", "`" + report.ID + "`"},
		{"Mode", string(report.Mode)},
		{"Seed", report.Seed},
		{"Authority", orDash(report.Authority)},
	}
	if report.Mode == model.ModeSearch {
		rows = append(rows, []string{"Target Word", "`" + report.Word + "`"})
	}
	rows = append(rows,
		[]string{"Started", report.StartedAt.Format(timeLayout)},
		[]string{"Duration", report.Duration().Round(time.Millisecond).String()},
		[]string{"Pages Visited", strconv.Itoa(report.PagesVisited) + " / " + strconv.Itoa(report.PageBudget)},
		[]string{"Status", statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOutcome writes the page outcome breakdown and an alert for the status.
func (w *MarkdownWriter) writeOutcome(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Outcome")
	md.PlainText("")

	fetched := len(report.Pages) - report.Errors - report.NonHTML
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Pages"},
		Rows: [][]string{
			{"HTML", strconv.Itoa(fetched)},
			{"Non-HTML", strconv.Itoa(report.NonHTML)},
			{"Errors", strconv.Itoa(report.Errors)},
		},
	})
	md.PlainText("")

	if len(report.Pages) > 0 {
		w.writePieChart(md, report, fetched)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport, fetched int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Visited Pages"),
		piechart.WithShowData(true),
	)

	if fetched > 0 {
		chart.LabelAndIntValue("HTML", uint64(fetched))
	}
	if report.NonHTML > 0 {
		chart.LabelAndIntValue("Non-HTML", uint64(report.NonHTML))
	}
	if report.Errors > 0 {
		chart.LabelAndIntValue("Errors", uint64(report.Errors))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the terminal status.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch report.Status {
	case model.StatusSucceeded:
		md.Tip("Found `" + report.Word + "` at " + report.FoundURL)
	case model.StatusAborted:
		md.Cautionf("Crawl aborted: %s", report.Reason)
	case model.StatusCancelled:
		md.Warningf("Crawl cancelled after %d page(s); results are partial.", report.PagesVisited)
	case model.StatusExhaustedBudget, model.StatusFrontierExhausted:
		if report.Mode == model.ModeSearch {
			md.Importantf("`%s` was not found in %d page(s).", report.Word, report.PagesVisited)
		} else {
			md.Note("Collected text from " + strconv.Itoa(report.PagesVisited) + " page(s).")
		}
	case model.StatusRunning:
		md.Note("Crawl still running.")
	}
	md.PlainText("")
}

// writeExclusions lists robots.txt exclusions.
func (w *MarkdownWriter) writeExclusions(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Exclusions) == 0 {
		return
	}

	md.H2("Robots.txt Exclusions")
	md.PlainText("")
	md.BulletList(report.Exclusions...)
	md.PlainText("")
}

// writeTopWords writes the word frequency table.
func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.TopWords) == 0 {
		return
	}

	md.H2("Top Words")
	md.PlainText("")

	rows := make([][]string, len(report.TopWords))
	for i, wc := range report.TopWords {
		rows[i] = []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the visit log inside a collapsible block.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Pages) == 0 {
		return
	}

	md.H2("Visited Pages")
	md.PlainText("")

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(p.URL, 80),
			string(p.Outcome),
			strconv.Itoa(p.Links),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Outcome", "Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordcrawl](https://github.com/nao1215/wordcrawl)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
