package pty

import (
	"strings"
	"testing"
)

func TestParseShell(t *testing.T) {
	cases := []struct {
		in     string
		shell  Shell
		custom string
	}{
		{"", ShellCmd, ""},
		{"cmd", ShellCmd, ""},
		{"powershell", ShellPowerShell, ""},
		{"pwsh", ShellPwsh, ""},
		{"wsl", ShellWsl, ""},
		{"/usr/bin/fish -l", ShellCustom, "/usr/bin/fish -l"},
	}
	for _, c := range cases {
		shell, custom := ParseShell(c.in)
		if shell != c.shell || custom != c.custom {
			t.Fatalf("ParseShell(%q) = %v %q", c.in, shell, custom)
		}
	}
}

func TestCommandLine_CustomQuoting(t *testing.T) {
	path, args, err := commandLine(ShellCustom, `/bin/sh -c "echo hi there"`)
	if err != nil {
		t.Fatalf("commandLine: %v", err)
	}
	if path != "/bin/sh" || len(args) != 2 || args[1] != "echo hi there" {
		t.Fatalf("unexpected parse: %q %v", path, args)
	}
}

func TestCommandLine_EmptyCustomRejected(t *testing.T) {
	if _, _, err := commandLine(ShellCustom, "   "); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestCommandLine_PowerShellLaunchesDirectly(t *testing.T) {
	path, _, err := commandLine(ShellPwsh, "")
	if err != nil {
		t.Fatalf("commandLine: %v", err)
	}
	if path != "pwsh" {
		t.Fatalf("pwsh must launch directly, got %q", path)
	}
}

func TestBuildEnv_InjectsMarkerAndCodepage(t *testing.T) {
	env := buildEnv(Spec{Codepage: 932, Env: map[string]string{"EXTRA": "1"}})
	joined := strings.Join(env, "\n")
	for _, want := range []string{"WTMUX=1", "WTMUX_CODEPAGE=932", "EXTRA=1"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in child env", want)
		}
	}
}

func TestBuildEnv_OverridesInherited(t *testing.T) {
	t.Setenv("WTMUX", "stale")
	env := buildEnv(Spec{Codepage: 65001})
	count := 0
	for _, e := range env {
		if strings.HasPrefix(e, "WTMUX=") {
			count++
			if e != "WTMUX=1" {
				t.Fatalf("expected override, got %q", e)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one WTMUX entry, got %d", count)
	}
}

func TestShellString_RoundTrips(t *testing.T) {
	for _, s := range []Shell{ShellCmd, ShellPowerShell, ShellPwsh, ShellWsl} {
		shell, _ := ParseShell(s.String())
		if shell != s {
			t.Fatalf("round trip failed for %v", s)
		}
	}
}
