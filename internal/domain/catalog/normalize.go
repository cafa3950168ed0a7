package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var letterVariants = strings.NewReplacer(
	"ё", "е", "Ё", "Е",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
)

// Normalize turns a product or component label into its lookup key: NBSP
// becomes a space, the text is NFKC-normalised, letter variants are unified,
// runs of whitespace collapse to one space and the result is case-folded.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFKC.String(s)
	s = letterVariants.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(s)
}

// BaseProductName strips a trailing parenthesised annotation, so that
// "Classic (replacement 2)" resolves to the "Classic" recipe.
func BaseProductName(display string) string {
	trimmed := strings.TrimSpace(display)
	if !strings.HasSuffix(trimmed, ")") {
		return trimmed
	}
	open := strings.LastIndex(trimmed, "(")
	if open <= 0 {
		return trimmed
	}
	return strings.TrimSpace(trimmed[:open])
}
