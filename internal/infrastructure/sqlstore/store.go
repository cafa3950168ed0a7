// Package sqlstore keeps recipes and stock in SQLite or Postgres through
// database/sql. Both dialects share one schema.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "pgx"

	defaultSQLitePath = "flower-crm.db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		product   TEXT    NOT NULL,
		component TEXT    NOT NULL,
		qty       INTEGER NOT NULL CHECK (qty > 0),
		PRIMARY KEY (product, component)
	)`,
	`CREATE TABLE IF NOT EXISTS stock (
		component TEXT    PRIMARY KEY,
		qty       INTEGER NOT NULL CHECK (qty >= 0),
		position  INTEGER NOT NULL DEFAULT 0
	)`,
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// OpenSQLite opens (or creates) a database file and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("sqlstore: create dirs: %w", err)
	}
	db, err := sql.Open(string(DialectSQLite), path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	// One writer at a time keeps sqlite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return New(ctx, db, DialectSQLite)
}

// OpenPostgres connects with the pgx driver and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn required")
	}
	db, err := sql.Open(string(DialectPostgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping postgres: %w", err)
	}
	return New(ctx, db, DialectPostgres)
}

// New wraps an open database and makes sure the tables exist.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlstore: apply schema: %w", err)
		}
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for integration tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Load(ctx context.Context) (*catalog.Catalog, inventory.Stock, error) {
	cat, err := s.loadRecipes(ctx)
	if err != nil {
		return nil, nil, err
	}
	stock, err := s.loadStock(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cat, stock, nil
}

func (s *Store) loadRecipes(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT product, component, qty FROM recipes ORDER BY product, component`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipes := map[string]inventory.Composition{}
	var products []string
	for rows.Next() {
		var product, component string
		var qty int
		if err := rows.Scan(&product, &component, &qty); err != nil {
			return nil, fmt.Errorf("sqlstore: scan recipe: %w", err)
		}
		if _, ok := recipes[product]; !ok {
			recipes[product] = inventory.Composition{}
			products = append(products, product)
		}
		if qty > 0 {
			recipes[product][component] = qty
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterate recipes: %w", err)
	}

	cat := catalog.New()
	for _, product := range products {
		cat.Put(catalog.Recipe{Name: product, Components: recipes[product]})
	}
	return cat, nil
}

func (s *Store) loadStock(ctx context.Context) (inventory.Stock, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT component, qty FROM stock ORDER BY position, component`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select stock: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stock := inventory.Stock{}
	for rows.Next() {
		var component string
		var qty int
		if err := rows.Scan(&component, &qty); err != nil {
			return nil, fmt.Errorf("sqlstore: scan stock: %w", err)
		}
		stock[component] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterate stock: %w", err)
	}
	return stock, nil
}

// PersistStock upserts every component of stock in one transaction. Rows for
// components not in stock are left as they are.
func (s *Store) PersistStock(ctx context.Context, stock inventory.Stock) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := s.upsertStock(ctx, tx, stock); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

// Seed replaces all recipes and upserts stock, for first start and tests.
func (s *Store) Seed(ctx context.Context, recipes []catalog.Recipe, stock inventory.Stock) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return fmt.Errorf("sqlstore: clear recipes: %w", err)
	}
	insert := s.rebind(`INSERT INTO recipes(product, component, qty) VALUES(?, ?, ?)`)
	for _, r := range recipes {
		for _, c := range r.Components.Components() {
			q := r.Components[c]
			if q <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, insert, r.Name, c, q); err != nil {
				return fmt.Errorf("sqlstore: insert recipe %s/%s: %w", r.Name, c, err)
			}
		}
	}
	if err := s.upsertStock(ctx, tx, stock); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

func (s *Store) upsertStock(ctx context.Context, tx *sql.Tx, stock inventory.Stock) error {
	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM stock`).Scan(&next); err != nil {
		return fmt.Errorf("sqlstore: stock position: %w", err)
	}
	upsert := s.rebind(`INSERT INTO stock(component, qty, position) VALUES(?, ?, ?)
		ON CONFLICT(component) DO UPDATE SET qty = excluded.qty`)
	for _, c := range inventory.Composition(stock).Components() {
		next++
		if _, err := tx.ExecContext(ctx, upsert, c, stock[c], next); err != nil {
			return fmt.Errorf("sqlstore: upsert stock %s: %w", c, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
