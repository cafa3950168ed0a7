package inventory

import (
	"errors"
	"testing"
)

func TestParseComposition(t *testing.T) {
	text := "Роза: 3\n\nТюльпан:2\nгвоздика - 4\nлилия: x\nпион: 0\n: 5\nРоза: 1"
	comp, skipped := ParseComposition(text)

	if comp["Роза"] != 4 || comp["Тюльпан"] != 2 || len(comp) != 2 {
		t.Fatalf("unexpected composition: %v", comp)
	}
	if len(skipped) != 4 {
		t.Fatalf("expected 4 skipped lines, got %d: %v", len(skipped), skipped)
	}
	wantLines := []int{4, 5, 6, 7}
	for i, s := range skipped {
		if s.Line != wantLines[i] {
			t.Fatalf("skipped[%d] line = %d, want %d", i, s.Line, wantLines[i])
		}
		if !errors.Is(s, ErrMalformedLine) {
			t.Fatalf("expected ErrMalformedLine")
		}
	}
}

func TestFromLines(t *testing.T) {
	comp := FromLines([]Line{{"rose", 2}, {"rose", 1}, {"tulip", 0}, {"", 4}})
	if len(comp) != 1 || comp["rose"] != 3 {
		t.Fatalf("unexpected composition: %v", comp)
	}
}
