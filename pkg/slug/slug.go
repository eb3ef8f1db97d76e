// Package slug builds URL-friendly identifiers from display names.
package slug

import (
	"strings"
)

// accentFold maps common accented Latin characters to their ASCII
// equivalents so that slugs stay within [a-z0-9-].
var accentFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ß", "ss",
)

// Generate lowercases the name, folds accented characters to ASCII and
// replaces everything else that is not a letter or digit with a single
// hyphen. "Café Crème 500g" becomes "cafe-creme-500g".
func Generate(name string) string {
	lowered := accentFold.Replace(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	b.Grow(len(lowered))

	lastHyphen := true // suppress leading hyphens
	for _, r := range lowered {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
