package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"orderstock/internal/core/domain"
)

func newTestJSONStore(t *testing.T) (*JSONStore[domain.InventoryEntry], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.json")
	return NewJSONStore[domain.InventoryEntry](path), path
}

func TestJSONStore_ListMissingFile(t *testing.T) {
	store, _ := newTestJSONStore(t)

	recs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty list, got %d records", len(recs))
	}
}

func TestJSONStore_InsertPersists(t *testing.T) {
	store, path := newTestJSONStore(t)
	ctx := context.Background()

	entry := domain.InventoryEntry{ProductID: "p1", Name: "widget", Available: 10}
	stored, err := store.Insert(ctx, entry)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if stored.ProductID != "p1" {
		t.Errorf("expected stored record back, got %+v", stored)
	}

	// A fresh store over the same file must see the record.
	reopened := NewJSONStore[domain.InventoryEntry](path)
	got, found, err := reopened.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatal("expected record after reopen")
	}
	if got.Available != 10 || got.Name != "widget" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestJSONStore_GetNotFound(t *testing.T) {
	store, _ := newTestJSONStore(t)

	_, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestJSONStore_ReplaceExisting(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	store.Insert(ctx, domain.InventoryEntry{ProductID: "p1", Available: 10})

	ok, err := store.Replace(ctx, "p1", domain.InventoryEntry{ProductID: "p1", Available: 3})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replacement")
	}

	got, _, _ := store.Get(ctx, "p1")
	if got.Available != 3 {
		t.Errorf("expected available 3, got %d", got.Available)
	}
}

func TestJSONStore_ReplaceMissingIsNotUpsert(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	ok, err := store.Replace(ctx, "ghost", domain.InventoryEntry{ProductID: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no replacement for missing id")
	}

	recs, _ := store.List(ctx)
	if len(recs) != 0 {
		t.Errorf("expected store untouched, got %d records", len(recs))
	}
}

func TestJSONStore_UpdateAppliesAtomically(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	store.Insert(ctx, domain.InventoryEntry{ProductID: "p1", Available: 10})

	ok, err := store.Update(ctx, "p1", func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		e.Available -= 4
		return e, nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !ok {
		t.Fatal("expected update to apply")
	}

	got, _, _ := store.Get(ctx, "p1")
	if got.Available != 6 {
		t.Errorf("expected available 6, got %d", got.Available)
	}
}

func TestJSONStore_UpdateAbortsOnFnError(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	store.Insert(ctx, domain.InventoryEntry{ProductID: "p1", Available: 10})

	errReject := errors.New("rejected")
	ok, err := store.Update(ctx, "p1", func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		e.Available = 0
		return e, errReject
	})
	if !errors.Is(err, errReject) {
		t.Fatalf("expected fn error back, got: %v", err)
	}
	if ok {
		t.Error("expected no application")
	}

	got, _, _ := store.Get(ctx, "p1")
	if got.Available != 10 {
		t.Errorf("expected available unchanged at 10, got %d", got.Available)
	}
}

func TestJSONStore_UpdateMissing(t *testing.T) {
	store, _ := newTestJSONStore(t)

	ok, err := store.Update(context.Background(), "ghost", func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		return e, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected not found")
	}
}

func TestJSONStore_InsertUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	// The store path is a directory, so I/O on it fails.
	store := NewJSONStore[domain.InventoryEntry](dir)

	_, err := store.Insert(context.Background(), domain.InventoryEntry{ProductID: "p1"})
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got: %v", err)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	store, path := newTestJSONStore(t)
	os.WriteFile(path, []byte("{not json"), 0o644)

	_, err := store.List(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got: %v", err)
	}
}

func TestJSONStore_ConcurrentInserts(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	total := 50
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Insert(ctx, domain.InventoryEntry{ProductID: fmt.Sprintf("p%d", n)})
			if err != nil {
				t.Errorf("insert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	recs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != total {
		t.Errorf("expected %d records, got %d", total, len(recs))
	}
}
