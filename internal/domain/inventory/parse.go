package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedLine = errors.New("inventory: malformed composition line")

// LineError describes one composition line that was skipped.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e LineError) Unwrap() error { return ErrMalformedLine }

// Line is a single component:quantity pair.
type Line struct {
	Component string
	Quantity  int
}

// ParseComposition reads one "component: quantity" pair per line.
// Lines that do not parse to a label and a positive integer are skipped and
// reported. Blank lines are ignored silently. Repeated components are summed.
func ParseComposition(text string) (Composition, []LineError) {
	out := make(Composition)
	var skipped []LineError
	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
		if line == "" {
			continue
		}
		name, qty, ok := strings.Cut(line, ":")
		if !ok {
			skipped = append(skipped, LineError{Line: i + 1, Text: line, Reason: "missing ':' separator"})
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			skipped = append(skipped, LineError{Line: i + 1, Text: line, Reason: "empty component name"})
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			skipped = append(skipped, LineError{Line: i + 1, Text: line, Reason: "quantity is not an integer"})
			continue
		}
		if n <= 0 {
			skipped = append(skipped, LineError{Line: i + 1, Text: line, Reason: "quantity must be positive"})
			continue
		}
		out[name] += n
	}
	return out, skipped
}

// FromLines folds pairs into a composition, ignoring non-positive quantities.
func FromLines(lines []Line) Composition {
	out := make(Composition, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 && l.Component != "" {
			out[l.Component] += l.Quantity
		}
	}
	return out
}
