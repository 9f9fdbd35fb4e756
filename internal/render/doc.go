// Package render fetches a page and extracts the structural facts the rule
// engine evaluates.
//
// HTTPRenderer owns one HTTP client. The client is created on first use and
// released by Close; a later Render creates a fresh one. Pages are decoded
// with their declared charset, parsed with goquery, and reduced to a
// model.PageSnapshot. Scripts are not executed, so content that only
// exists after JavaScript runs is not seen.
package render
