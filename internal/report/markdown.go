package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/a11yscan/internal/model"
)

// MarkdownWriter writes GitHub-flavoured Markdown reports.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs result.
func (w *MarkdownWriter) Write(result *model.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + result.URL + "`"},
			{"Checked At", result.Timestamp + " UTC"},
			{"Score", "**" + result.Score + "**"},
		},
	})
	md.PlainText("")

	w.writePieChart(md, result)
	w.writeAlert(md, result)

	md.H2("Checks")
	md.PlainText("")
	rows := make([][]string, len(result.Checks))
	for i, c := range result.Checks {
		status := "✅ Pass"
		if !c.Passed {
			status = "❌ Fail"
		}
		rows[i] = []string{string(c.Name), status, escapeCell(truncateString(c.Details, 120))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Status", "Details"},
		Rows:   rows,
	})
	md.PlainText("")

	failed := result.FailedChecks()
	if len(failed) > 0 {
		md.H2("Recommendations")
		md.PlainText("")
		for _, c := range failed {
			if c.Recommendation == nil {
				continue
			}
			md.Details(string(c.Name), *c.Recommendation)
		}
		md.PlainText("")
	}

	md.H2("Limitations")
	md.PlainText("")
	limits := Limitations()
	items := make([]string, len(limits))
	for i, l := range limits {
		items[i] = fmt.Sprintf("**%s**: %s", l.Check, l.Reason)
	}
	md.BulletList(items...)
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.Result) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Check Results"),
		piechart.WithShowData(true),
	)
	if result.PassedCount > 0 {
		chart.LabelAndIntValue("Passed", uint64(result.PassedCount))
	}
	if failed := result.TotalCount - result.PassedCount; failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.Result) {
	failed := result.TotalCount - result.PassedCount
	switch {
	case failed == 0:
		md.Tip("All checks passed. Four of them cannot fail; see Limitations.")
	case failed >= 3:
		md.Cautionf("%d of %d checks failed.", failed, result.TotalCount)
	default:
		md.Warningf("%d of %d checks failed.", failed, result.TotalCount)
	}
	md.PlainText("")
}

// WriteComparison outputs cmp.
func (w *MarkdownWriter) WriteComparison(cmp *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Comparison")
	md.PlainText("")
	md.PlainTextf("URL: `%s`", cmp.URL)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Run", "Date", "Score"},
		Rows: [][]string{
			{"Previous", cmp.Previous.Timestamp.Format("2006-01-02 15:04"), cmp.Previous.Score},
			{"Current", cmp.Current.Timestamp.Format("2006-01-02 15:04"), cmp.Current.Score},
			{"**Change**", "-", "**" + formatDelta(cmp.ScoreDelta) + "**"},
		},
	})
	md.PlainText("")

	switch cmp.Direction {
	case DirectionRegressed:
		md.Warningf("Regressed: %d check(s) newly failing.", len(cmp.NewlyFailing))
	case DirectionImproved:
		md.Tip("Improved: " + strconv.Itoa(len(cmp.Fixed)) + " check(s) fixed.")
	default:
		md.Note("Score unchanged.")
	}
	md.PlainText("")
	if cmp.PageChanged {
		md.Importantf("The page content changed between the two runs (snapshot digest %s).", truncateString(cmp.Current.SnapshotDigest, 12))
		md.PlainText("")
	}

	w.writeNameList(md, "Newly Failing", cmp.NewlyFailing)
	w.writeNameList(md, "Fixed", cmp.Fixed)
	w.writeNameList(md, "Still Failing", cmp.StillFailing)

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeNameList(md *markdown.Markdown, title string, names []model.CheckName) {
	if len(names) == 0 {
		return
	}
	md.H2(fmt.Sprintf("%s (%d)", title, len(names)))
	md.PlainText("")
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = string(n)
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yscan](https://github.com/nao1215/a11yscan)*")
}

// escapeCell keeps table cells on one line and out of the column syntax.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
