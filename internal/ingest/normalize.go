package ingest

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Normalize cleans text pasted from rich-text sources: typographic quotes
// become ASCII quotes, zero-width characters and byte-order marks are
// dropped, non-breaking spaces become plain spaces, and the result is
// trimmed. It never fails and is idempotent.
func Normalize(raw string) string {
	// transform.Chain keeps internal buffers, so it is built per call.
	t := transform.Chain(
		runes.Remove(runes.Predicate(isInvisible)),
		runes.Map(plainPunctuation),
	)
	out, _, err := transform.String(t, raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(out)
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', // zero width space
		'\u200c', // zero width non-joiner
		'\u200d', // zero width joiner
		'\ufeff': // byte order mark
		return true
	}
	return false
}

func plainPunctuation(r rune) rune {
	switch r {
	case '\u201c', '\u201d', '\u201e', '\u201f':
		return '"'
	case '\u2018', '\u2019', '\u201a', '\u201b':
		return '\''
	case '\u00a0', '\u202f':
		return ' '
	}
	return r
}
