// Package textwidth is the single display-width authority for wtmux.
// Terminal state, the renderer, and copy mode must all measure through this
// package; any divergence between the width used when writing cells and the
// width used when drawing them corrupts the grid.
package textwidth

import "github.com/mattn/go-runewidth"

// Rune returns the display width of r: 2 for wide characters (CJK,
// fullwidth forms, emoji), 1 for normal characters, 0 for zero-width
// characters (combining marks, control characters).
func Rune(r rune) int {
	if r == 0 {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// String returns the total display width of s.
func String(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most w display columns, appending tail if
// anything was removed.
func Truncate(s string, w int, tail string) string {
	return runewidth.Truncate(s, w, tail)
}
