package catalog

import (
	"errors"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Rose ", "rose"},
		{"ROSE", "rose"},
		{"Rosé", "rose"},
		{"Весенний  букет", "весенний букет"},
		{"Ёлочка", "елочка"},
		{"ｒｏｓｅ", "rose"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	c := FromRecipes(Recipe{Name: "Classic", Components: inventory.Composition{"Роза": 3, "Тюльпан": 2}})

	r, err := c.Lookup("  CLASSIC")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	r.Components["Роза"] = 100

	again, _ := c.Lookup("classic")
	if again.Components["Роза"] != 3 {
		t.Fatalf("catalog recipe mutated through lookup copy")
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := FromRecipes().Lookup("nope")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected unknown product, got %v", err)
	}
	var unknown *UnknownProductError
	if !errors.As(err, &unknown) || unknown.Name != "nope" {
		t.Fatalf("expected name on error, got %v", err)
	}
}

func TestPutSkipsEmptyRecipes(t *testing.T) {
	c := FromRecipes(
		Recipe{Name: "", Components: inventory.Composition{"rose": 1}},
		Recipe{Name: "empty", Components: inventory.Composition{"rose": 0}},
		Recipe{Name: "ok", Components: inventory.Composition{"rose": 1}},
	)
	if c.Len() != 1 || c.Names()[0] != "ok" {
		t.Fatalf("unexpected catalog: %v", c.Names())
	}
}

func TestBaseProductName(t *testing.T) {
	cases := map[string]string{
		"Classic (с заменой)":   "Classic",
		"Classic (с заменой 2)": "Classic",
		"Classic":               "Classic",
		"(odd)":                 "(odd)",
		" Spring mix ":          "Spring mix",
	}
	for in, want := range cases {
		if got := BaseProductName(in); got != want {
			t.Fatalf("BaseProductName(%q) = %q, want %q", in, got, want)
		}
	}
}
