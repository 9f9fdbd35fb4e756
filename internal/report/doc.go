// Package report renders analysis results and history comparisons.
//
// Three writers implement Writer:
//   - SimpleWriter: coloured terminal text (fatih/color)
//   - JSONWriter and FullJSONWriter: the client-facing result JSON, the
//     latter wrapped with the tool version and the list of checks that
//     cannot fail
//   - MarkdownWriter: GitHub-flavoured Markdown with tables, alerts and a
//     Mermaid pie chart (nao1215/markdown)
//
// Compare builds the Comparison the history command prints.
package report
