// Package format rewrites workout text into its canonical form.
package format

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/claude/repnotes/internal/codec"
)

// Format returns the canonical rendering of text. Formatting a canonical
// text returns it unchanged. Lines the grammar does not understand before
// the first exercise are dropped; lines under an exercise are kept as cues.
func Format(text string) string {
	out := codec.Encode(codec.Decode(text, nil))
	if out == "" {
		return ""
	}
	return out + "\n"
}

// Changed reports whether text is not already canonical.
func Changed(text string) bool {
	return Format(text) != text
}

// Diff returns a unified diff from text to its canonical form, or "" when
// text is already canonical.
func Diff(name, text string) string {
	formatted := Format(text)
	if formatted == text {
		return ""
	}
	return udiff.Unified(name, name+" (formatted)", ensureNewline(text), formatted)
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
