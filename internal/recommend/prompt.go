package recommend

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

// Input and output bounds for generation.
const (
	MaxPromptNameLength    = 200
	MaxPromptDetailsLength = 500
	MaxPromptURLLength     = 200
	MaxPromptLength        = 2000

	// MinGeneratedLength is the shortest generated text that is used. Anything
	// this long or shorter is replaced by the template.
	MinGeneratedLength = 20
)

const systemPreamble = "You are an expert web accessibility consultant who provides clear, actionable recommendations for fixing WCAG compliance issues."

// BuildPrompt builds the bounded generation prompt for one failed check.
// Inputs are clipped first and then stripped of angle brackets.
func BuildPrompt(check model.CheckResult, pageURL string) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nYou are an expert web accessibility consultant. A webpage compliance check found an issue:\n\n")
	b.WriteString("Check Name: ")
	b.WriteString(sanitize.Bounded(string(check.Name), MaxPromptNameLength))
	b.WriteString("\nIssue: ")
	b.WriteString(sanitize.Bounded(check.Details, MaxPromptDetailsLength))
	b.WriteString("\nURL: ")
	b.WriteString(sanitize.Bounded(pageURL, MaxPromptURLLength))
	b.WriteString("\n\nProvide a specific, actionable recommendation on how to fix this issue. ")
	b.WriteString("Be concise (2-3 sentences) and focus on practical steps. Format your response as plain text without markdown.")

	return sanitize.Clip(b.String(), MaxPromptLength)
}

// cleanGenerated joins generator fragments and bounds the result.
func cleanGenerated(fragments []string) string {
	text := strings.TrimSpace(strings.Join(fragments, ""))
	return sanitize.Clip(sanitize.StripAngles(text), model.MaxRecommendationLength)
}

// usable reports whether generated text is long enough to replace the
// template.
func usable(text string) bool {
	return utf8.RuneCountInString(text) > MinGeneratedLength
}
