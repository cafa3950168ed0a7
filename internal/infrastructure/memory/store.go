package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

var ErrInjected = errors.New("memory store: injected failure")

// Store keeps recipes and stock in process. It is the test double for the
// durable stores and supports one-shot fault injection.
type Store struct {
	mu          sync.RWMutex
	recipes     []catalog.Recipe
	stock       inventory.Stock
	failPersist int
	failLoad    bool
	persists    int
}

func NewStore(stock inventory.Stock, recipes ...catalog.Recipe) *Store {
	s := &Store{stock: stock.Clone()}
	for _, r := range recipes {
		s.recipes = append(s.recipes, r.Clone())
	}
	return s
}

func (s *Store) Load(ctx context.Context) (*catalog.Catalog, inventory.Stock, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failLoad {
		return nil, nil, ErrInjected
	}
	return catalog.FromRecipes(s.recipes...), s.stock.Clone(), nil
}

func (s *Store) PersistStock(ctx context.Context, stock inventory.Stock) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPersist > 0 {
		s.failPersist--
		return ErrInjected
	}
	s.stock = stock.Clone()
	s.persists++
	return nil
}

// Stock returns what was last persisted.
func (s *Store) Stock() inventory.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock.Clone()
}

// Persists counts successful stock writes.
func (s *Store) Persists() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persists
}

// FailNextPersist makes the next n PersistStock calls fail.
func (s *Store) FailNextPersist(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPersist = n
}

// FailLoad toggles Load failures.
func (s *Store) FailLoad(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = fail
}

// PutRecipe adds or replaces a recipe, as an external edit of the store would.
func (s *Store) PutRecipe(r catalog.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := catalog.Normalize(r.Name)
	for i, existing := range s.recipes {
		if catalog.Normalize(existing.Name) == key {
			s.recipes[i] = r.Clone()
			return
		}
	}
	s.recipes = append(s.recipes, r.Clone())
}
