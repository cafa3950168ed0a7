package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSeedLoadPersist(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cat, stock, err := s.Load(ctx)
	if err != nil || cat.Len() != 0 || len(stock) != 0 {
		t.Fatalf("fresh database must be empty: %v %v %v", cat.Names(), stock, err)
	}

	recipes := []catalog.Recipe{
		{Name: "Классика", Components: inventory.Composition{"Роза": 3, "Тюльпан": 2}},
		{Name: "Весна", Components: inventory.Composition{"Тюльпан": 5}},
	}
	if err := s.Seed(ctx, recipes, inventory.Stock{"Роза": 10, "Тюльпан": 5}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cat, stock, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r, err := cat.Lookup("классика")
	if err != nil || !r.Components.Equal(recipes[0].Components) || r.Name != "Классика" {
		t.Fatalf("unexpected recipe %+v err=%v", r, err)
	}
	if !stock.Equal(inventory.Stock{"Роза": 10, "Тюльпан": 5}) {
		t.Fatalf("unexpected stock %v", stock)
	}

	if err := s.PersistStock(ctx, inventory.Stock{"Роза": 7, "Лилия": 2}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	_, stock, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stock.Equal(inventory.Stock{"Роза": 7, "Тюльпан": 5, "Лилия": 2}) {
		t.Fatalf("unexpected stock after persist %v", stock)
	}
}

func TestSQLitePersistRejectsNegativeAtomically(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.Seed(ctx, nil, inventory.Stock{"a": 1, "b": 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.PersistStock(ctx, inventory.Stock{"a": 5, "b": -1}); err == nil {
		t.Fatalf("expected the check constraint to reject a negative quantity")
	}
	_, stock, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !stock.Equal(inventory.Stock{"a": 1, "b": 1}) {
		t.Fatalf("failed persist must roll back, got %v", stock)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	if got := pg.rebind(`INSERT INTO t(a, b) VALUES(?, ?)`); got != `INSERT INTO t(a, b) VALUES($1, $2)` {
		t.Fatalf("unexpected postgres query %q", got)
	}
	lite := &Store{dialect: DialectSQLite}
	if got := lite.rebind(`SELECT ?`); got != `SELECT ?` {
		t.Fatalf("sqlite query must not change, got %q", got)
	}
}
