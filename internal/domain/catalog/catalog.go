package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

var ErrUnknownProduct = errors.New("catalog: unknown product")

// UnknownProductError carries the name as the caller typed it.
type UnknownProductError struct {
	Name string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("catalog: unknown product %q", e.Name)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }

// Recipe is the component requirement of one product.
type Recipe struct {
	Name       string
	Components inventory.Composition
}

func (r Recipe) Clone() Recipe {
	return Recipe{Name: r.Name, Components: r.Components.Clone()}
}

// Catalog maps normalized product names to recipes. It is read-only once built.
type Catalog struct {
	recipes map[string]Recipe
}

func New() *Catalog {
	return &Catalog{recipes: make(map[string]Recipe)}
}

// FromRecipes builds a catalog; later duplicates of the same normalized name win.
func FromRecipes(recipes ...Recipe) *Catalog {
	c := New()
	for _, r := range recipes {
		c.Put(r)
	}
	return c
}

// Put registers a recipe. Recipes with an empty name or no positive component are ignored.
func (c *Catalog) Put(r Recipe) {
	key := Normalize(r.Name)
	comp := r.Components.Positive()
	if key == "" || len(comp) == 0 {
		return
	}
	c.recipes[key] = Recipe{Name: r.Name, Components: comp}
}

// Lookup resolves a product name and returns a copy of its recipe.
func (c *Catalog) Lookup(name string) (Recipe, error) {
	if c != nil {
		if r, ok := c.recipes[Normalize(name)]; ok {
			return r.Clone(), nil
		}
	}
	return Recipe{}, &UnknownProductError{Name: name}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// Names returns the recipe names of record, sorted by key.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.recipes))
	for k := range c.recipes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.recipes[k].Name
	}
	return out
}

// Recipes returns copies of every recipe, sorted by key.
func (c *Catalog) Recipes() []Recipe {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.recipes))
	for k := range c.recipes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Recipe, len(keys))
	for i, k := range keys {
		out[i] = c.recipes[k].Clone()
	}
	return out
}
