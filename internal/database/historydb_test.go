package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// resultAt builds a result for pageURL whose failing checks are failed.
func resultAt(pageURL string, at time.Time, failed ...model.CheckName) *model.Result {
	isFailed := make(map[model.CheckName]bool, len(failed))
	for _, f := range failed {
		isFailed[f] = true
	}
	checks := make([]model.CheckResult, 0, model.TotalChecks)
	for _, name := range model.CheckNames() {
		checks = append(checks, model.CheckResult{Name: name, Passed: !isFailed[name], Details: "details"})
	}
	return model.NewResult(pageURL, model.NewComplianceReport(checks), nil, at)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the file in a new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "data")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
			t.Errorf("expected database file, got %v", err)
		}
		if db.Path() != filepath.Join(dir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("missing file without creation returns ErrDatabaseNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("existing file opens without creation", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		first, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = first.Close()

		second, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("expected existing database to open, got %v", err)
		}
		_ = second.Close()
	})
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := resultAt("https://example.com/", base, model.CheckReadingSequence, model.CheckBypassBlocks)
	newer := resultAt("https://example.com/", base.Add(time.Hour), model.CheckBypassBlocks)
	other := resultAt("https://other.example/", base)

	olderID, err := db.SaveResult(ctx, older, &model.PageSnapshot{Title: "v1"})
	if err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, err := db.SaveResult(ctx, newer, &model.PageSnapshot{Title: "v2"}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, err := db.SaveResult(ctx, other, nil); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	t.Run("latest returns the newest result", func(t *testing.T) {
		got, err := db.GetLatest(ctx, "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Score != "9/10" {
			t.Errorf("expected the 9/10 result, got %+v", got)
		}
	})

	t.Run("latest for an unknown URL is nil", func(t *testing.T) {
		got, err := db.GetLatest(ctx, "https://unknown.example/")
		if err != nil || got != nil {
			t.Errorf("expected nil, nil; got %+v, %v", got, err)
		}
	})

	t.Run("by ID round-trips the result", func(t *testing.T) {
		got, err := db.GetByID(ctx, olderID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Score != "8/10" || got.Timestamp != older.Timestamp {
			t.Errorf("unexpected result %+v", got)
		}
		if len(got.Checks) != model.TotalChecks {
			t.Errorf("expected %d checks, got %d", model.TotalChecks, len(got.Checks))
		}
	})

	t.Run("history is newest first with metadata", func(t *testing.T) {
		records, err := db.GetHistory(ctx, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if !records[0].Timestamp.After(records[1].Timestamp) {
			t.Errorf("expected newest first, got %v then %v", records[0].Timestamp, records[1].Timestamp)
		}
		if records[1].ID != olderID || records[0].Hostname != "example.com" {
			t.Errorf("unexpected records %+v", records)
		}
		if records[0].SnapshotDigest == records[1].SnapshotDigest || len(records[0].SnapshotDigest) != 64 {
			t.Errorf("expected distinct 64-character digests, got %q and %q", records[0].SnapshotDigest, records[1].SnapshotDigest)
		}
	})

	t.Run("history honours the limit", func(t *testing.T) {
		records, err := db.GetHistory(ctx, "https://example.com/", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 record, got %d", len(records))
		}
	})

	t.Run("URLs are listed once each", func(t *testing.T) {
		urls, err := db.ListURLs(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(urls) != 2 || urls[0] != "https://example.com/" || urls[1] != "https://other.example/" {
			t.Errorf("unexpected URLs %v", urls)
		}
	})

	t.Run("failure counts aggregate per check", func(t *testing.T) {
		counts, err := db.FailureCounts(ctx, "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if counts[model.CheckBypassBlocks] != 2 || counts[model.CheckReadingSequence] != 1 {
			t.Errorf("unexpected counts %v", counts)
		}
		if _, ok := counts[model.CheckLabelName]; ok {
			t.Error("passing checks must not be counted")
		}
	})
}

func TestSnapshotDigest(t *testing.T) {
	t.Parallel()

	a := &model.PageSnapshot{Title: "Home", HasLandmarks: true}
	b := &model.PageSnapshot{Title: "Home", HasLandmarks: true}
	c := &model.PageSnapshot{Title: "Home"}

	if SnapshotDigest(a) != SnapshotDigest(b) {
		t.Error("equal snapshots must have equal digests")
	}
	if SnapshotDigest(a) == SnapshotDigest(c) {
		t.Error("different snapshots must have different digests")
	}
	if SnapshotDigest(nil) != "" {
		t.Error("nil snapshot must have an empty digest")
	}
}
