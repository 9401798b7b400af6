// Package config loads the wtmux configuration file. Missing files yield
// defaults; a malformed file or an invalid required field is fatal at
// startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"wtmux/internal/term"
	"wtmux/internal/theme"
)

// Config mirrors config.toml.
type Config struct {
	Shell       string          `toml:"shell"`
	Codepage    int             `toml:"codepage"`
	PrefixKey   string          `toml:"prefix_key"`
	ColorScheme string          `toml:"color_scheme"`
	TabBar      TabBarConfig    `toml:"tab_bar"`
	StatusBar   StatusBarConfig `toml:"status_bar"`
	Pane        PaneConfig      `toml:"pane"`
	Cursor      CursorConfig    `toml:"cursor"`
	Scrollback  ScrollbackConfig `toml:"scrollback"`
}

type TabBarConfig struct {
	Visible bool `toml:"visible"`
}

type StatusBarConfig struct {
	Visible  bool `toml:"visible"`
	ShowTime bool `toml:"show_time"`
}

type PaneConfig struct {
	BorderStyle string `toml:"border_style"`
}

type CursorConfig struct {
	Shape string `toml:"shape"`
	Blink bool   `toml:"blink"`
}

type ScrollbackConfig struct {
	Lines int `toml:"lines"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Shell:       "",
		Codepage:    65001,
		PrefixKey:   "C-b",
		ColorScheme: "default",
		TabBar:      TabBarConfig{Visible: true},
		StatusBar:   StatusBarConfig{Visible: true, ShowTime: true},
		Pane:        PaneConfig{BorderStyle: "single"},
		Cursor:      CursorConfig{Shape: "block", Blink: true},
		Scrollback:  ScrollbackConfig{Lines: term.DefaultScrollbackLines},
	}
}

// Dir returns the wtmux configuration directory: $WTMUX_CONFIG_DIR when
// set, otherwise ~/.wtmux.
func Dir() (string, error) {
	if dir := os.Getenv("WTMUX_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wtmux"), nil
}

// Load reads config.toml from the configuration directory. A missing file
// returns the defaults with no error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom reads the configuration from path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Codepage != 65001 && c.Codepage != 932 {
		return fmt.Errorf("codepage: must be 65001 or 932, got %d", c.Codepage)
	}
	if _, err := ParsePrefixKey(c.PrefixKey); err != nil {
		return err
	}
	if _, err := theme.ByName(c.ColorScheme); err != nil {
		return err
	}
	switch c.Pane.BorderStyle {
	case "single", "double", "rounded", "none":
	default:
		return fmt.Errorf("pane.border_style: must be single, double, rounded, or none, got %q", c.Pane.BorderStyle)
	}
	switch c.Cursor.Shape {
	case "block", "underline", "bar":
	default:
		return fmt.Errorf("cursor.shape: must be block, underline, or bar, got %q", c.Cursor.Shape)
	}
	if c.Scrollback.Lines < 0 {
		return fmt.Errorf("scrollback.lines: must be >= 0, got %d", c.Scrollback.Lines)
	}
	return nil
}

// ParsePrefixKey converts a "C-x" spelling to the control byte it names.
func ParsePrefixKey(s string) (byte, error) {
	rest, ok := strings.CutPrefix(s, "C-")
	if !ok || len(rest) != 1 || rest[0] < 'a' || rest[0] > 'z' {
		return 0, fmt.Errorf("prefix_key: must be C-a through C-z, got %q", s)
	}
	return rest[0] - 'a' + 1, nil
}

// CursorShape maps the configured default cursor appearance to the
// terminal shape enum.
func (c *Config) CursorShape() term.CursorShape {
	switch c.Cursor.Shape {
	case "underline":
		if c.Cursor.Blink {
			return term.CursorBlinkingUnderline
		}
		return term.CursorSteadyUnderline
	case "bar":
		if c.Cursor.Blink {
			return term.CursorBlinkingBar
		}
		return term.CursorSteadyBar
	default:
		if c.Cursor.Blink {
			return term.CursorBlinkingBlock
		}
		return term.CursorSteadyBlock
	}
}
