package engine

import "strings"

// FoldDigits converts Arabic-Indic (U+0660–U+0669) and Extended Arabic-Indic
// (U+06F0–U+06F9) digits to their ASCII equivalents. OCR output for Saudi
// accident reports mixes both scripts, sometimes within a single number.
func FoldDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x0660 && r <= 0x0669:
			b.WriteRune('0' + (r - 0x0660))
		case r >= 0x06F0 && r <= 0x06F9:
			b.WriteRune('0' + (r - 0x06F0))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeID strips every non-digit character from a raw identifier after
// folding Arabic digit scripts to ASCII. Normalization is idempotent.
func NormalizeID(raw string) string {
	folded := FoldDigits(raw)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IDKeys are the comparison keys derived from a normalized identifier.
// National IDs are 9–10 digits; upstream systems sometimes truncate or
// mistype a leading digit, so the trailing 8 and 9 digits act as fallback
// keys.
type IDKeys struct {
	Full  string
	Last9 string
	Last8 string
}

// KeysOf derives the comparison keys for a normalized identifier.
// Suffix keys are empty when the identifier is too short to carry them.
func KeysOf(normalized string) IDKeys {
	keys := IDKeys{Full: normalized}
	if len(normalized) >= 9 {
		keys.Last9 = normalized[len(normalized)-9:]
	}
	if len(normalized) >= 8 {
		keys.Last8 = normalized[len(normalized)-8:]
	}
	return keys
}
