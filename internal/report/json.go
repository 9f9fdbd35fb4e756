package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rules"
)

// JSONWriter writes the client-facing result JSON, one document per call.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter. Output is compact by default.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs result exactly as the HTTP API returns it.
func (w *JSONWriter) Write(result *model.Result) (int, error) {
	return w.writeJSON(result)
}

// WriteComparison outputs cmp.
func (w *JSONWriter) WriteComparison(cmp *Comparison) (int, error) {
	return w.writeJSON(cmp)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// Limitation names a check that always passes and explains why.
type Limitation struct {
	Check  model.CheckName `json:"check"`
	Reason string          `json:"reason"`
}

// Limitations lists the always-pass checks of the default engine.
func Limitations() []Limitation {
	out := make([]Limitation, 0, 4)
	for _, c := range rules.NewEngine().Checks() {
		if l := c.Limitation(); l != "" {
			out = append(out, Limitation{Check: c.Name(), Reason: l})
		}
	}
	return out
}

// JSONReport wraps a result with the tool version and the limitations that
// qualify its score.
type JSONReport struct {
	Version     string        `json:"version"`
	Result      *model.Result `json:"result"`
	Limitations []Limitation  `json:"limitations"`
}

// NewJSONReport creates a JSONReport.
func NewJSONReport(result *model.Result, version string) *JSONReport {
	return &JSONReport{
		Version:     version,
		Result:      result,
		Limitations: Limitations(),
	}
}

// FullJSONWriter writes results wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter creates a FullJSONWriter.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs result wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.Result) (int, error) {
	return w.writeJSON(NewJSONReport(result, w.version))
}
