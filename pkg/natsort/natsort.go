// Package natsort implements case-insensitive natural-order string comparison:
// embedded digit runs compare as numbers, everything else compares rune by
// rune ignoring case. "Chapter 2" sorts before "Chapter 10".
package natsort

import (
	"unicode"
	"unicode/utf8"
)

// Compare returns -1, 0, or 1 depending on whether a sorts before, equal to,
// or after b in natural order.
func Compare(a, b string) int {
	for a != "" && b != "" {
		ar, asize := utf8.DecodeRuneInString(a)
		br, bsize := utf8.DecodeRuneInString(b)

		if unicode.IsDigit(ar) && unicode.IsDigit(br) {
			aNum, aRest := digitRun(a)
			bNum, bRest := digitRun(b)
			if c := compareDigits(aNum, bNum); c != 0 {
				return c
			}
			a, b = aRest, bRest
			continue
		}

		al := unicode.ToLower(ar)
		bl := unicode.ToLower(br)
		if al != bl {
			if al < bl {
				return -1
			}
			return 1
		}
		a = a[asize:]
		b = b[bsize:]
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// Less reports whether a sorts strictly before b in natural order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// digitRun splits s into its leading run of digits and the remainder.
func digitRun(s string) (string, string) {
	for i, r := range s {
		if !unicode.IsDigit(r) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// compareDigits compares two digit runs numerically. Leading zeros are
// insignificant; between runs of equal value the shorter one sorts first so
// that "2" < "02".
func compareDigits(a, b string) int {
	at := trimLeadingZeros(a)
	bt := trimLeadingZeros(b)

	if len(at) != len(bt) {
		if len(at) < len(bt) {
			return -1
		}
		return 1
	}
	if at != bt {
		if at < bt {
			return -1
		}
		return 1
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}

func trimLeadingZeros(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return s[i:]
		}
	}
	return ""
}
