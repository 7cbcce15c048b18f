package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreGetSet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "expenses.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get(ctx, "expenses"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	for _, v := range []string{"[]", `[{"name":"Coffee"}]`} {
		if err := s.Set(ctx, "expenses", v); err != nil {
			t.Fatalf("set %q: %v", v, err)
		}
		got, ok, err := s.Get(ctx, "expenses")
		if err != nil || !ok || got != v {
			t.Fatalf("get after set %q: got=%q ok=%v err=%v", v, got, ok, err)
		}
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "expenses", "[1]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	// Migrations must be idempotent on reopen.
	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(ctx, "expenses")
	if err != nil || !ok || got != "[1]" {
		t.Fatalf("unexpected value after reopen: got=%q ok=%v err=%v", got, ok, err)
	}
}

func TestPostgresStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	key := "test_" + filepath.Base(t.TempDir())
	if err := s.Set(ctx, key, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok || got != "[]" {
		t.Fatalf("unexpected get: got=%q ok=%v err=%v", got, ok, err)
	}
}
