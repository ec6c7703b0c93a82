package ui

import (
	"strings"
	"unicode"

	xansi "github.com/charmbracelet/x/ansi"
)

var whitespace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "\v", " ", "\f", " ")

// Literal makes user text safe to print: escape sequences are removed and
// any remaining control characters become spaces, so a label can never
// move the cursor, recolour the screen or smuggle in hyperlinks.
func Literal(s string) string {
	s = whitespace.Replace(s)
	s = xansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// Fit pads or cuts s to exactly w cells.
func Fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	switch {
	case sw > w:
		return xansi.Truncate(s, w, "…")
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	}
	return s
}
