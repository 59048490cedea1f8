package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"orderstock/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/orderstock?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

func newTestMySQLStore(t *testing.T, db *sql.DB) *MySQLStore[domain.InventoryEntry] {
	t.Helper()
	ctx := context.Background()

	db.ExecContext(ctx, `DROP TABLE IF EXISTS test_inventory_records`)
	store, err := NewMySQLStore[domain.InventoryEntry](ctx, db, "test_inventory_records")
	if err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	t.Cleanup(func() {
		db.ExecContext(context.Background(), `DROP TABLE IF EXISTS test_inventory_records`)
	})
	return store
}

func TestMySQLStore_RoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := newTestMySQLStore(t, db)

	_, err := store.Insert(ctx, domain.InventoryEntry{ProductID: "p1", Name: "widget", Available: 10})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	_, err = store.Insert(ctx, domain.InventoryEntry{ProductID: "p2", Name: "gadget", Available: 5})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	recs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ProductID != "p1" || recs[1].ProductID != "p2" {
		t.Errorf("expected insertion order p1,p2, got %s,%s", recs[0].ProductID, recs[1].ProductID)
	}

	ok, err := store.Update(ctx, "p1", func(e domain.InventoryEntry) (domain.InventoryEntry, error) {
		e.Available -= 3
		return e, nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !ok {
		t.Fatal("expected update to apply")
	}

	got, found, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatal("expected record")
	}
	if got.Available != 7 {
		t.Errorf("expected available 7, got %d", got.Available)
	}
}

func TestMySQLStore_ReplaceSemantics(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := newTestMySQLStore(t, db)

	store.Insert(ctx, domain.InventoryEntry{ProductID: "p1", Available: 10})

	// Replacing with identical content still counts as a replacement.
	ok, err := store.Replace(ctx, "p1", domain.InventoryEntry{ProductID: "p1", Available: 10})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if !ok {
		t.Error("expected replacement of existing record")
	}

	ok, err = store.Replace(ctx, "ghost", domain.InventoryEntry{ProductID: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no replacement for missing id")
	}
}
