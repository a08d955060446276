package domain

import (
	"strings"
)

// NormalizeAnswer prepares a player's raw answer (or a stored name/alias) for
// comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeAnswer(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FirstNameSegment returns the normalized part of a country name before the
// first comma: "Taiwan, Province of China" → "taiwan". Names without a comma
// normalize whole.
func FirstNameSegment(name string) string {
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	return NormalizeAnswer(name)
}
