package dict

import "strings"

// Romanian diacritics fold to their ASCII base letter. Both the cedilla
// and comma-below forms occur in the wild.
var diacritics = map[rune]rune{
	'ă': 'A', 'â': 'A', 'î': 'I', 'ș': 'S', 'ş': 'S', 'ț': 'T', 'ţ': 'T',
	'Ă': 'A', 'Â': 'A', 'Î': 'I', 'Ș': 'S', 'Ş': 'S', 'Ț': 'T', 'Ţ': 'T',
}

// Normalize returns the uppercase A-Z representation of text. Diacritics
// are folded, any other non-letter runes are dropped.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if folded, ok := diacritics[r]; ok {
			b.WriteRune(folded)
			continue
		}
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		}
	}
	return b.String()
}

// isSurface reports whether s consists solely of uppercase A-Z letters.
// Entries that normalize to anything else are rejected at load.
func isSurface(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
