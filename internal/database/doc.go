// Package database stores finished analyses in SQLite (modernc.org/sqlite,
// no cgo) so a site's accessibility score can be followed over time.
//
// Each saved result gets a UUID, the client-facing result JSON, and a SHA3-256
// digest of the page snapshot it was computed from. Comparing digests tells
// whether a score changed because the page changed or because the checks
// did. Per-check outcomes are stored in their own table for trend queries.
package database
