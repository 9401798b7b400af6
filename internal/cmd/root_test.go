package cmd

import (
	"testing"

	"wtmux/internal/config"
	"wtmux/internal/pty"
)

func TestResolveOptions_CLIOverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Shell = "pwsh"

	opts := resolveOptions(cfg, flagShell{wsl: true})
	if opts.Shell != pty.ShellWsl {
		t.Fatalf("CLI flag must win over config, got %v", opts.Shell)
	}
}

func TestResolveOptions_ConfigOverDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Shell = "powershell"

	opts := resolveOptions(cfg, flagShell{})
	if opts.Shell != pty.ShellPowerShell {
		t.Fatalf("config shell must apply, got %v", opts.Shell)
	}
}

func TestResolveOptions_BuiltinDefault(t *testing.T) {
	opts := resolveOptions(config.Default(), flagShell{})
	if opts.Shell != pty.ShellCmd {
		t.Fatalf("expected built-in default shell, got %v", opts.Shell)
	}
	if opts.Codepage != 65001 {
		t.Fatalf("expected UTF-8 code page, got %d", opts.Codepage)
	}
}

func TestResolveOptions_CustomShellString(t *testing.T) {
	opts := resolveOptions(config.Default(), flagShell{shell: "/bin/zsh -l"})
	if opts.Shell != pty.ShellCustom || opts.Custom != "/bin/zsh -l" {
		t.Fatalf("unexpected custom shell %v %q", opts.Shell, opts.Custom)
	}
}

func TestResolveOptions_SjisFlag(t *testing.T) {
	opts := resolveOptions(config.Default(), flagShell{sjis: true})
	if opts.Codepage != 932 {
		t.Fatalf("expected Shift-JIS code page, got %d", opts.Codepage)
	}
}

func TestRootCmd_RejectsPositionalArgs(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"unexpected"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected positional args to be rejected")
	}
}
