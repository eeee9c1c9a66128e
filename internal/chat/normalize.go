package chat

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes inbound text: lowercase, punctuation stripped
// (letters, digits and whitespace survive), whitespace collapsed, trimmed.
// Pure and idempotent, so handlers can normalize defensively.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
