// Package theme holds the built-in color schemes. Schemes are data: the
// renderer asks the active theme for chrome colors (tab bar, borders,
// status bar, selection) and derives nothing else from them.
package theme

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is one color scheme. All values are hex strings ("#rrggbb").
type Theme struct {
	Name string

	Foreground string
	Background string

	TabBarBg       string
	TabActiveFg    string
	TabActiveBg    string
	TabInactiveFg  string
	StatusBg       string
	StatusFg       string
	BorderActive   string
	BorderInactive string
	SelectionBg    string
	SearchMatchBg  string
}

// builtin is the fixed set of schemes, selectable by name from the config
// file or cycled live in the theme picker.
var builtin = []Theme{
	{
		Name:       "default",
		Foreground: "#d4d4d4", Background: "#1e1e1e",
		TabBarBg: "#252526", TabActiveFg: "#ffffff", TabActiveBg: "#0e639c",
		TabInactiveFg: "#969696", StatusBg: "#007acc", StatusFg: "#ffffff",
		BorderActive: "#0e639c", BorderInactive: "#444444",
		SelectionBg: "#264f78", SearchMatchBg: "#613214",
	},
	{
		Name:       "monokai",
		Foreground: "#f8f8f2", Background: "#272822",
		TabBarBg: "#1e1f1c", TabActiveFg: "#272822", TabActiveBg: "#a6e22e",
		TabInactiveFg: "#75715e", StatusBg: "#414339", StatusFg: "#f8f8f2",
		BorderActive: "#a6e22e", BorderInactive: "#49483e",
		SelectionBg: "#49483e", SearchMatchBg: "#e6db74",
	},
	{
		Name:       "solarized-dark",
		Foreground: "#839496", Background: "#002b36",
		TabBarBg: "#073642", TabActiveFg: "#fdf6e3", TabActiveBg: "#268bd2",
		TabInactiveFg: "#586e75", StatusBg: "#073642", StatusFg: "#93a1a1",
		BorderActive: "#268bd2", BorderInactive: "#073642",
		SelectionBg: "#073642", SearchMatchBg: "#b58900",
	},
	{
		Name:       "solarized-light",
		Foreground: "#657b83", Background: "#fdf6e3",
		TabBarBg: "#eee8d5", TabActiveFg: "#fdf6e3", TabActiveBg: "#268bd2",
		TabInactiveFg: "#93a1a1", StatusBg: "#eee8d5", StatusFg: "#586e75",
		BorderActive: "#268bd2", BorderInactive: "#93a1a1",
		SelectionBg: "#eee8d5", SearchMatchBg: "#b58900",
	},
	{
		Name:       "nord",
		Foreground: "#d8dee9", Background: "#2e3440",
		TabBarBg: "#3b4252", TabActiveFg: "#2e3440", TabActiveBg: "#88c0d0",
		TabInactiveFg: "#4c566a", StatusBg: "#434c5e", StatusFg: "#d8dee9",
		BorderActive: "#88c0d0", BorderInactive: "#434c5e",
		SelectionBg: "#434c5e", SearchMatchBg: "#ebcb8b",
	},
	{
		Name:       "gruvbox",
		Foreground: "#ebdbb2", Background: "#282828",
		TabBarBg: "#3c3836", TabActiveFg: "#282828", TabActiveBg: "#fabd2f",
		TabInactiveFg: "#928374", StatusBg: "#504945", StatusFg: "#ebdbb2",
		BorderActive: "#fabd2f", BorderInactive: "#504945",
		SelectionBg: "#504945", SearchMatchBg: "#d79921",
	},
	{
		Name:       "dracula",
		Foreground: "#f8f8f2", Background: "#282a36",
		TabBarBg: "#21222c", TabActiveFg: "#282a36", TabActiveBg: "#bd93f9",
		TabInactiveFg: "#6272a4", StatusBg: "#44475a", StatusFg: "#f8f8f2",
		BorderActive: "#bd93f9", BorderInactive: "#44475a",
		SelectionBg: "#44475a", SearchMatchBg: "#ffb86c",
	},
	{
		Name:       "high-contrast",
		Foreground: "#ffffff", Background: "#000000",
		TabBarBg: "#000000", TabActiveFg: "#000000", TabActiveBg: "#ffffff",
		TabInactiveFg: "#c0c0c0", StatusBg: "#ffffff", StatusFg: "#000000",
		BorderActive: "#ffffff", BorderInactive: "#808080",
		SelectionBg: "#3f3f3f", SearchMatchBg: "#808000",
	},
}

// Names lists the built-in scheme names in picker order.
func Names() []string {
	names := make([]string, len(builtin))
	for i, t := range builtin {
		names[i] = t.Name
	}
	return names
}

// ByName returns the named scheme.
func ByName(name string) (Theme, error) {
	for _, t := range builtin {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("unknown color scheme %q", name)
}

// Default returns the first built-in scheme.
func Default() Theme { return builtin[0] }

// Next returns the scheme after the named one, wrapping around. Unknown
// names restart at the first scheme.
func Next(name string) Theme {
	for i, t := range builtin {
		if t.Name == name {
			return builtin[(i+1)%len(builtin)]
		}
	}
	return builtin[0]
}

// RGB parses a theme hex value into 8-bit channels. Malformed values
// degrade to mid-gray rather than failing a render.
func RGB(hex string) (uint8, uint8, uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 128, 128, 128
	}
	r, g, b := c.RGB255()
	return r, g, b
}

// Dimmed returns hex darkened toward black by the given fraction.
func Dimmed(hex string, fraction float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	black := colorful.Color{}
	return c.BlendRgb(black, fraction).Hex()
}
