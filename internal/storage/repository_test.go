package storage

import (
	"context"
	"path/filepath"
	"testing"

	"budgetboard/internal/kv"
)

func TestSQLiteRepositoryGetSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, found, err := repo.Get(ctx, kv.KeyExpenses); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := repo.Set(ctx, kv.KeyExpenses, `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, kv.KeyExpenses, `[{"id":"a"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := repo.Set(ctx, kv.KeyBudget, "100"); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	v, found, err := repo.Get(ctx, kv.KeyExpenses)
	if err != nil || !found || v != `[{"id":"a"}]` {
		t.Fatalf("unexpected value %q found=%v err=%v", v, found, err)
	}

	keys, err := repo.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != kv.KeyBudget {
		t.Fatalf("unexpected keys %v err=%v", keys, err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening runs migrations again (no change) and keeps data.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if v, _, _ := repo.Get(ctx, kv.KeyBudget); v != "100" {
		t.Fatalf("value lost across reopen: %q", v)
	}
}
