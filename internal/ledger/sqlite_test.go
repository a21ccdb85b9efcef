//go:build sqlite

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fissh.db")

	store := NewSQLiteStore(dbPath)
	base := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return base.Add(5 * time.Second) }
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Open(ctx, Record{ID: "s1", Transport: "web", Remote: "127.0.0.1:1", Started: base}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Open(ctx, Record{ID: "s2", Transport: "ssh", Started: base.Add(time.Second)}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Observe(ctx, "s1", 24, 40); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := store.Observe(ctx, "s1", 10, 50); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := store.Finish(ctx, "s1", 7, "closed"); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := store.Finish(ctx, "s1", 99, "again"); err != nil {
		t.Fatalf("second finish: %v", err)
	}

	rec, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Frames != 7 || rec.Reason != "closed" || rec.PeakRows != 24 || rec.PeakCols != 50 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Duration(time.Time{}) != 5*time.Second {
		t.Fatalf("duration = %v", rec.Duration(time.Time{}))
	}

	active, err := store.Active(ctx)
	if err != nil || len(active) != 1 || active[0].ID != "s2" {
		t.Fatalf("active = %+v, %v", active, err)
	}
	recent, err := store.Recent(ctx, 10)
	if err != nil || len(recent) != 2 || recent[0].ID != "s2" {
		t.Fatalf("recent = %+v, %v", recent, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing err = %v", err)
	}
	if err := store.Finish(ctx, "missing", 0, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("finish missing err = %v", err)
	}
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "fissh.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close: %v", err)
	}
}
