package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// leadingArticles are rotated to the end of a sort key.
var leadingArticles = []string{"the ", "a ", "an "}

// Normalize returns the canonical matching form of a name: diacritics
// stripped, case folded, whitespace collapsed to single spaces.
func Normalize(text string) string {
	stripped := stripMarks(text)
	folded := cases.Fold().String(stripped)
	return collapseWhitespace(folded)
}

// SortKey derives a default sort form from display text, rotating a leading
// article: "The Beatles" becomes "Beatles, The". Text without a leading
// article is returned trimmed but otherwise unchanged.
func SortKey(text string) string {
	trimmed := collapseWhitespace(text)
	lowered := strings.ToLower(trimmed)
	for _, article := range leadingArticles {
		if strings.HasPrefix(lowered, article) && len(trimmed) > len(article) {
			rest := strings.TrimSpace(trimmed[len(article):])
			return rest + ", " + strings.TrimSpace(trimmed[:len(article)])
		}
	}
	return trimmed
}

// Equal reports whether two name strings normalize to the same form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func stripMarks(text string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(chain, text)
	if err != nil {
		return text
	}
	return result
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
