package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold приводит строку к виду для сравнения: нижний регистр, без диакритики и крайних пробелов.
// "Descartáveis" и "descartaveis" после Fold совпадают.
func Fold(s string) string {
	// transform.Chain хранит состояние, поэтому собирается на каждый вызов
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}
