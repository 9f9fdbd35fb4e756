package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yscan/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "a11yscan.db"

// ErrDatabaseNotFound is returned by Open when the file is missing and
// creation was not requested.
var ErrDatabaseNotFound = errors.New("history database not found")

// HistoryDB is the SQLite history store. It is safe for concurrent use.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions creates the database if needed and enables WAL.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the history database inside dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		mode = "rw"
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; the server and batch workers share this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_results (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		hostname TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		score TEXT NOT NULL,
		passed_count INTEGER NOT NULL,
		total_count INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		snapshot_digest TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_url ON check_results(url);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON check_results(timestamp);

	CREATE TABLE IF NOT EXISTS check_outcomes (
		result_id TEXT NOT NULL REFERENCES check_results(id) ON DELETE CASCADE,
		check_name TEXT NOT NULL,
		passed INTEGER NOT NULL,
		PRIMARY KEY (result_id, check_name)
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_name ON check_outcomes(check_name);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// Record is the metadata of one stored result.
type Record struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Hostname       string    `json:"hostname"`
	Timestamp      time.Time `json:"timestamp"`
	Score          string    `json:"score"`
	PassedCount    int       `json:"passedCount"`
	TotalCount     int       `json:"totalCount"`
	SnapshotDigest string    `json:"snapshotDigest,omitempty"`
}

// SnapshotDigest returns the hex SHA3-256 of the snapshot's JSON encoding,
// or "" for a nil snapshot.
func SnapshotDigest(snapshot *model.PageSnapshot) string {
	if snapshot == nil {
		return ""
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return ""
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveResult stores result and its per-check outcomes in one transaction
// and returns the new record ID. snapshot may be nil.
func (h *HistoryDB) SaveResult(ctx context.Context, result *model.Result, snapshot *model.PageSnapshot) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}

	hostname := ""
	if u, err := url.Parse(result.URL); err == nil {
		hostname = u.Hostname()
	}
	id := uuid.NewString()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO check_results (id, url, hostname, timestamp, score, passed_count, total_count, result_json, snapshot_digest)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		result.URL,
		hostname,
		result.Timestamp,
		result.Score,
		result.PassedCount,
		result.TotalCount,
		string(resultJSON),
		SnapshotDigest(snapshot),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}

	for _, c := range result.Checks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO check_outcomes (result_id, check_name, passed) VALUES (?, ?, ?)`,
			id, string(c.Name), c.Passed,
		); err != nil {
			return "", fmt.Errorf("failed to save check outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit result: %w", err)
	}
	return id, nil
}

// GetLatest returns the most recent result for pageURL, or nil when there
// is none.
func (h *HistoryDB) GetLatest(ctx context.Context, pageURL string) (*model.Result, error) {
	return h.queryResult(ctx, `
	SELECT result_json FROM check_results
	WHERE url = ?
	ORDER BY timestamp DESC, rowid DESC
	LIMIT 1
	`, pageURL)
}

// GetByID returns the result stored under id, or nil when there is none.
func (h *HistoryDB) GetByID(ctx context.Context, id string) (*model.Result, error) {
	return h.queryResult(ctx, `SELECT result_json FROM check_results WHERE id = ?`, id)
}

func (h *HistoryDB) queryResult(ctx context.Context, query string, arg any) (*model.Result, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx, query, arg).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result model.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &result, nil
}

// GetHistory returns the stored records for pageURL, newest first. A
// non-positive limit returns all of them.
func (h *HistoryDB) GetHistory(ctx context.Context, pageURL string, limit int) ([]Record, error) {
	query := `
	SELECT id, url, hostname, timestamp, score, passed_count, total_count, COALESCE(snapshot_digest, '')
	FROM check_results
	WHERE url = ?
	ORDER BY timestamp DESC, rowid DESC
	`
	args := []any{pageURL}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		var ts string
		if err := rows.Scan(&r.ID, &r.URL, &r.Hostname, &ts, &r.Score, &r.PassedCount, &r.TotalCount, &r.SnapshotDigest); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Timestamp = parseTimestamp(ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListURLs returns every URL with at least one stored result, sorted.
func (h *HistoryDB) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT url FROM check_results ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// FailureCounts returns, per check name, how many stored results for
// pageURL failed that check. Checks that never failed are absent.
func (h *HistoryDB) FailureCounts(ctx context.Context, pageURL string) (map[model.CheckName]int, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT o.check_name, COUNT(*)
	FROM check_outcomes o
	JOIN check_results r ON r.id = o.result_id
	WHERE r.url = ? AND o.passed = 0
	GROUP BY o.check_name
	`, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to count failures: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.CheckName]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan failure count: %w", err)
		}
		counts[model.CheckName(name)] = n
	}
	return counts, rows.Err()
}

// timestampFormats lists the layouts a stored timestamp may use.
var timestampFormats = []string{
	model.TimestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
