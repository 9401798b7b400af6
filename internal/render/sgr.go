package render

import (
	"strconv"
	"strings"

	"wtmux/internal/term"
)

// sgrFor builds the SGR sequence selecting a cell's attributes, starting
// from a full reset so runs never inherit stale state across cells.
func sgrFor(c *term.Cell) string {
	var sb strings.Builder
	sb.WriteString("\x1b[0")
	if c.HasFlag(term.FlagBold) {
		sb.WriteString(";1")
	}
	if c.HasFlag(term.FlagFaint) {
		sb.WriteString(";2")
	}
	if c.HasFlag(term.FlagItalic) {
		sb.WriteString(";3")
	}
	if c.HasFlag(term.FlagUnderline) {
		sb.WriteString(";4")
	}
	if c.HasFlag(term.FlagBlink) {
		sb.WriteString(";5")
	}
	if c.HasFlag(term.FlagReverse) {
		sb.WriteString(";7")
	}
	if c.HasFlag(term.FlagHidden) {
		sb.WriteString(";8")
	}
	if c.HasFlag(term.FlagStrike) {
		sb.WriteString(";9")
	}
	writeColor(&sb, c.Fg, false)
	writeColor(&sb, c.Bg, true)
	sb.WriteByte('m')
	return sb.String()
}

func writeColor(sb *strings.Builder, c term.Color, bg bool) {
	switch c.Kind {
	case term.ColorDefault:
		// The reset already selected the defaults.
	case term.ColorIndexed:
		idx := int(c.Index)
		base := 30
		if bg {
			base = 40
		}
		switch {
		case idx < 8:
			sb.WriteByte(';')
			sb.WriteString(strconv.Itoa(base + idx))
		case idx < 16:
			sb.WriteByte(';')
			sb.WriteString(strconv.Itoa(base + 60 + idx - 8))
		default:
			sb.WriteByte(';')
			if bg {
				sb.WriteString("48;5;")
			} else {
				sb.WriteString("38;5;")
			}
			sb.WriteString(strconv.Itoa(idx))
		}
	case term.ColorRGB:
		sb.WriteByte(';')
		if bg {
			sb.WriteString("48;2;")
		} else {
			sb.WriteString("38;2;")
		}
		sb.WriteString(strconv.Itoa(int(c.R)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(c.G)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(c.B)))
	}
}

// fgRGB and bgRGB build direct-color selectors for chrome drawn from theme
// hex values.
func fgRGB(r, g, b uint8) string {
	return "\x1b[38;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
}

func bgRGB(r, g, b uint8) string {
	return "\x1b[48;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
}
