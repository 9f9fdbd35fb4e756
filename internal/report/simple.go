package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter writes human-readable terminal reports. Colour is off unless
// WithColor(true) is given, so output piped to a file stays plain.
type SimpleWriter struct {
	baseWriter

	verbose bool

	pass  *color.Color
	fail  *color.Color
	note  *color.Color
	title cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose prints details for passed checks too.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables ANSI colours.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range []*color.Color{w.pass, w.fail, w.note} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		pass:       color.New(color.FgGreen, color.Bold),
		fail:       color.New(color.FgRed, color.Bold),
		note:       color.New(color.FgYellow),
		title:      cases.Upper(language.English),
	}
	w.pass.DisableColor()
	w.fail.DisableColor()
	w.note.DisableColor()

	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs result.
func (w *SimpleWriter) Write(result *model.Result) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "accessibility report")
	fmt.Fprintf(&sb, "URL:        %s\n", result.URL)
	fmt.Fprintf(&sb, "Checked at: %s UTC\n", result.Timestamp)
	fmt.Fprintf(&sb, "Score:      %s\n\n", w.score(result.PassedCount, result.TotalCount))

	w.writeSection(&sb, "checks")
	for _, c := range result.Checks {
		if c.Passed {
			fmt.Fprintf(&sb, "  [%s] %s\n", w.pass.Sprint("PASS"), c.Name)
			if w.verbose {
				fmt.Fprintf(&sb, "         %s\n", c.Details)
			}
			continue
		}
		fmt.Fprintf(&sb, "  [%s] %s\n", w.fail.Sprint("FAIL"), c.Name)
		fmt.Fprintf(&sb, "         %s\n", c.Details)
		if c.Recommendation != nil {
			for _, line := range strings.Split(*c.Recommendation, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				fmt.Fprintf(&sb, "         %s %s\n", w.note.Sprint(">"), line)
			}
		}
	}
	sb.WriteString("\n")

	if w.verbose {
		w.writeSection(&sb, "limitations")
		for _, l := range Limitations() {
			fmt.Fprintf(&sb, "  * %s: %s\n", l.Check, l.Reason)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs cmp.
func (w *SimpleWriter) WriteComparison(cmp *Comparison) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "accessibility comparison")
	fmt.Fprintf(&sb, "URL:      %s\n", cmp.URL)
	fmt.Fprintf(&sb, "Previous: %s  (%s)\n", cmp.Previous.Score, cmp.Previous.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current:  %s  (%s)\n", cmp.Current.Score, cmp.Current.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Status:   %s (%s)\n", w.direction(cmp.Direction), formatDelta(cmp.ScoreDelta))
	if cmp.PageChanged {
		fmt.Fprintf(&sb, "Page:     %s\n", w.note.Sprint("content changed between runs"))
	}
	sb.WriteString("\n")

	w.writeNames(&sb, "newly failing", cmp.NewlyFailing, w.fail, "-")
	w.writeNames(&sb, "fixed", cmp.Fixed, w.pass, "+")
	w.writeNames(&sb, "still failing", cmp.StillFailing, w.note, "*")

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	heading := w.title.String(title)
	pad := max((ruleWidth-len(heading))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + heading + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(w.title.String(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeNames(sb *strings.Builder, title string, names []model.CheckName, c *color.Color, marker string) {
	if len(names) == 0 {
		return
	}
	w.writeSection(sb, fmt.Sprintf("%s (%d)", title, len(names)))
	for _, n := range names {
		fmt.Fprintf(sb, "  [%s] %s\n", c.Sprint(marker), n)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) score(passed, total int) string {
	s := fmt.Sprintf("%d/%d", passed, total)
	if passed == total {
		return w.pass.Sprint(s)
	}
	return w.fail.Sprint(s)
}

func (w *SimpleWriter) direction(d Direction) string {
	switch d {
	case DirectionImproved:
		return w.pass.Sprint("IMPROVED")
	case DirectionRegressed:
		return w.fail.Sprint("REGRESSED")
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a signed change.
func formatDelta(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}
