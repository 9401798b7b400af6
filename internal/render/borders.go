package render

// BorderStyle selects the glyph set used for pane separators.
type BorderStyle int

const (
	BorderSingle BorderStyle = iota
	BorderDouble
	BorderRounded
	BorderNone
)

// ParseBorderStyle maps the config spelling to a style.
func ParseBorderStyle(s string) BorderStyle {
	switch s {
	case "double":
		return BorderDouble
	case "rounded":
		return BorderRounded
	case "none":
		return BorderNone
	default:
		return BorderSingle
	}
}

// borderGlyphs holds the drawing characters for one style.
type borderGlyphs struct {
	horizontal rune
	vertical   rune
	cross      rune
}

var borderSets = map[BorderStyle]borderGlyphs{
	BorderSingle:  {horizontal: '─', vertical: '│', cross: '┼'},
	BorderDouble:  {horizontal: '═', vertical: '║', cross: '╬'},
	BorderRounded: {horizontal: '─', vertical: '│', cross: '┼'},
	BorderNone:    {horizontal: ' ', vertical: ' ', cross: ' '},
}
