// Package spreadsheet keeps recipes and stock in an xlsx workbook.
//
// The sheet's first row is the header: column A holds product names and every
// other column is a component label. Rows above the stock row are recipes and
// the stock row itself holds the free quantity of each component.
package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/backup"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultSheet    = "CRM"
	DefaultStockRow = "склад"
)

var (
	ErrStoreUnavailable = errors.New("spreadsheet: workbook unavailable")
	ErrMalformed        = errors.New("spreadsheet: malformed sheet")
	ErrStockRowMissing  = errors.New("spreadsheet: stock row not found")
)

type Config struct {
	Path     string
	Sheet    string
	StockRow string
	Backup   backup.Sink
	Logger   observability.Logger
}

type Store struct {
	mu       sync.Mutex
	path     string
	sheet    string
	stockRow string
	backup   backup.Sink
	log      observability.Logger
	now      func() time.Time
}

func New(cfg Config) *Store {
	s := &Store{
		path:     cfg.Path,
		sheet:    cfg.Sheet,
		stockRow: cfg.StockRow,
		backup:   cfg.Backup,
		log:      cfg.Logger,
		now:      time.Now,
	}
	if s.sheet == "" {
		s.sheet = DefaultSheet
	}
	if s.stockRow == "" {
		s.stockRow = DefaultStockRow
	}
	if s.log == nil {
		s.log = observability.NopLogger()
	}
	s.log = s.log.With(observability.F("component", "spreadsheet_store"))
	return s
}

// Load reads the workbook. A missing file yields an empty catalog and stock.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, inventory.Stock, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.New(), inventory.Stock{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("spreadsheet: open %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ParseRows(rows, s.stockRow)
}

// PersistStock rewrites the stock row. Labels missing from the header get a
// new column. The previous workbook goes to the backup sink first.
func (s *Store) PersistStock(ctx context.Context, stock inventory.Stock) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrStoreUnavailable, s.path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("%w: empty header", ErrMalformed)
	}
	header := rows[0]
	row := findStockRow(rows, s.stockRow)
	if row < 0 {
		return ErrStockRowMissing
	}

	columns := make(map[string]int, len(header))
	for j := 1; j < len(header); j++ {
		if label := strings.TrimSpace(header[j]); label != "" {
			if _, dup := columns[label]; !dup {
				columns[label] = j
			}
		}
	}
	next := len(header)
	for _, label := range inventory.Composition(stock).Components() {
		col, ok := columns[label]
		if !ok {
			col = next
			next++
			if err := s.setCell(f, col, 0, label); err != nil {
				return err
			}
			columns[label] = col
		}
		if err := s.setCell(f, col, row, stock[label]); err != nil {
			return err
		}
	}

	s.backupCopy(ctx, raw)
	return s.save(f)
}

func (s *Store) setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("spreadsheet: cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(s.sheet, cell, v); err != nil {
		return fmt.Errorf("spreadsheet: set %s: %w", cell, err)
	}
	return nil
}

// save writes next to the target and renames, so readers never see a half
// written workbook.
func (s *Store) save(f *excelize.File) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".workbook-*.xlsx")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) backupCopy(ctx context.Context, raw []byte) {
	if s.backup == nil {
		return
	}
	key := backup.Key(s.path, s.now())
	if err := s.backup.Put(ctx, key, bytes.NewReader(raw)); err != nil {
		s.log.Warn("workbook_backup_failed",
			observability.F("key", key),
			observability.F("error", err),
		)
		return
	}
	s.log.Debug("workbook_backup_written", observability.F("key", key))
}

// ParseRows turns sheet rows into a catalog and stock. Without a stock row
// both are empty. Cells that are not whole numbers are skipped.
func ParseRows(rows [][]string, stockLabel string) (*catalog.Catalog, inventory.Stock, error) {
	cat := catalog.New()
	stock := inventory.Stock{}
	if len(rows) == 0 {
		return cat, stock, nil
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("%w: need a name column and at least one component column", ErrMalformed)
	}
	row := findStockRow(rows, stockLabel)
	if row < 0 {
		return cat, stock, nil
	}

	for i := 1; i < row; i++ {
		name := strings.TrimSpace(cellAt(rows[i], 0))
		if catalog.Normalize(name) == "" {
			continue
		}
		comp := make(inventory.Composition)
		for j := 1; j < len(header); j++ {
			label := strings.TrimSpace(header[j])
			if label == "" {
				continue
			}
			if q, ok := parseQuantity(cellAt(rows[i], j)); ok && q > 0 {
				comp[label] = q
			}
		}
		if len(comp) > 0 {
			cat.Put(catalog.Recipe{Name: name, Components: comp})
		}
	}

	for j := 1; j < len(header); j++ {
		label := strings.TrimSpace(header[j])
		if label == "" {
			continue
		}
		if q, ok := parseQuantity(cellAt(rows[row], j)); ok && q >= 0 {
			stock[label] = q
		}
	}
	return cat, stock, nil
}

// findStockRow prefers an exact normalized match and falls back to the first
// row whose name contains the label.
func findStockRow(rows [][]string, label string) int {
	want := catalog.Normalize(label)
	for i := 1; i < len(rows); i++ {
		if catalog.Normalize(cellAt(rows[i], 0)) == want {
			return i
		}
	}
	for i := 1; i < len(rows); i++ {
		if strings.Contains(catalog.Normalize(cellAt(rows[i], 0)), want) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}

func parseQuantity(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
