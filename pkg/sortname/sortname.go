// Package sortname generates sort titles for display names.
package sortname

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ForTitle returns the sort form of a title: trimmed and with combining
// accents stripped ("Éowyn" -> "Eowyn").
func ForTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	stripped, _, err := transform.String(stripper, title)
	if err != nil {
		return title
	}
	return stripped
}
