package wow

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug normalizes a name to lowercase-hyphenated URL-token form:
// accents stripped, punctuation dropped, word runs joined by single
// hyphens ("Ara-Kara, City of Echoes" -> "ara-kara-city-of-echoes").
// It does not attempt fuzzy correction of misspelled names.
func Slug(name string) string {
	s := strings.ToLower(removeAccents(name))
	s = strings.ReplaceAll(s, "'", "")

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
