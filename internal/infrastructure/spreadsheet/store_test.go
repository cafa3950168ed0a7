package spreadsheet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/backup"

	"github.com/xuri/excelize/v2"
)

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"Название", "Роза", "Тюльпан", "", "Пион"},
		{"Классика", "3", "2", "9", ""},
		{"", "1"},
		{"Весна", "abc", "5", "", "1.0"},
		{"Пустой", "0", "-1"},
		{" Склад ", "10", "4", "", "2.5"},
		{"После склада", "1", "1"},
	}
	cat, stock, err := ParseRows(rows, "склад")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected two recipes, got %v", cat.Names())
	}
	r, err := cat.Lookup("классика")
	if err != nil || !r.Components.Equal(inventory.Composition{"Роза": 3, "Тюльпан": 2}) {
		t.Fatalf("unexpected recipe %+v err=%v", r, err)
	}
	r, _ = cat.Lookup("весна")
	if !r.Components.Equal(inventory.Composition{"Тюльпан": 5, "Пион": 1}) {
		t.Fatalf("unexpected recipe %+v", r)
	}
	if !stock.Equal(inventory.Stock{"Роза": 10, "Тюльпан": 4}) {
		t.Fatalf("unexpected stock %v", stock)
	}
}

func TestParseRowsStockRowFallbacks(t *testing.T) {
	rows := [][]string{
		{"name", "rose"},
		{"Classic", "3"},
		{"Склад (основной)", "7"},
	}
	_, stock, err := ParseRows(rows, "склад")
	if err != nil || stock["rose"] != 7 {
		t.Fatalf("partial match failed: %v %v", stock, err)
	}

	cat, stock, err := ParseRows(rows[:2], "склад")
	if err != nil || cat.Len() != 0 || len(stock) != 0 {
		t.Fatalf("missing stock row must yield empty state, got %v %v %v", cat.Names(), stock, err)
	}

	if _, _, err := ParseRows([][]string{{"only name"}}, "склад"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func seedWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bouquets.xlsx")
	recipes := []catalog.Recipe{{Name: "Классика", Components: inventory.Composition{"Роза": 3, "Тюльпан": 2}}}
	if err := WriteWorkbook(path, "", "", recipes, inventory.Stock{"Роза": 10, "Тюльпан": 5}); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return path
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := seedWorkbook(t)
	store := New(Config{Path: path})

	cat, stock, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cat.Lookup("классика"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !stock.Equal(inventory.Stock{"Роза": 10, "Тюльпан": 5}) {
		t.Fatalf("unexpected stock %v", stock)
	}

	if err := store.PersistStock(ctx, inventory.Stock{"Роза": 7, "Тюльпан": 3, "Лилия": 4}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	cat, stock, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stock.Equal(inventory.Stock{"Роза": 7, "Тюльпан": 3, "Лилия": 4}) {
		t.Fatalf("unexpected stock after persist %v", stock)
	}
	r, _ := cat.Lookup("Классика")
	if !r.Components.Equal(inventory.Composition{"Роза": 3, "Тюльпан": 2}) {
		t.Fatalf("recipes must survive a stock write, got %v", r.Components)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(DefaultSheet, "A3"); v != DefaultStockRow {
		t.Fatalf("stock row label moved: %q", v)
	}
}

func TestStoreMissingFile(t *testing.T) {
	store := New(Config{Path: filepath.Join(t.TempDir(), "absent.xlsx")})

	cat, stock, err := store.Load(context.Background())
	if err != nil || cat.Len() != 0 || len(stock) != 0 {
		t.Fatalf("missing workbook must load empty, got %v %v %v", cat.Names(), stock, err)
	}
	if err := store.PersistStock(context.Background(), inventory.Stock{"Роза": 1}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStoreBacksUpBeforeOverwrite(t *testing.T) {
	path := seedWorkbook(t)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	dir := t.TempDir()
	sink, err := backup.NewFSSink(dir)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	store := New(Config{Path: path, Backup: sink})
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	if err := store.PersistStock(context.Background(), inventory.Stock{"Роза": 1}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	saved, err := os.ReadFile(filepath.Join(dir, "bouquets", "20260102T030405.000Z.xlsx"))
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(saved) != string(original) {
		t.Fatalf("backup does not hold the previous workbook")
	}
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]struct {
		want int
		ok   bool
	}{
		"5":    {5, true},
		" 7 ":  {7, true},
		"3.0":  {3, true},
		"3,0":  {3, true},
		"2.5":  {0, false},
		"":     {0, false},
		"many": {0, false},
		"-2":   {-2, true},
	}
	for in, tc := range cases {
		got, ok := parseQuantity(in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseQuantity(%q) = %d,%v want %d,%v", in, got, ok, tc.want, tc.ok)
		}
	}
}
