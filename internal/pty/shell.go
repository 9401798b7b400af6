package pty

import (
	"fmt"
	"os"

	"github.com/google/shlex"
)

// Shell is the normalized shell selection.
type Shell int

const (
	// ShellCmd is the built-in default command interpreter.
	ShellCmd Shell = iota
	// ShellPowerShell is Windows PowerShell.
	ShellPowerShell
	// ShellPwsh is PowerShell Core.
	ShellPwsh
	// ShellWsl runs the default WSL distribution shell.
	ShellWsl
	// ShellCustom runs a user-supplied command line.
	ShellCustom
)

// ParseShell maps a config or CLI string to a Shell. Unrecognized values
// become ShellCustom with the string as the command line.
func ParseShell(s string) (Shell, string) {
	switch s {
	case "", "cmd":
		return ShellCmd, ""
	case "powershell":
		return ShellPowerShell, ""
	case "pwsh":
		return ShellPwsh, ""
	case "wsl":
		return ShellWsl, ""
	default:
		return ShellCustom, s
	}
}

// String returns the config-file spelling of the shell.
func (s Shell) String() string {
	switch s {
	case ShellCmd:
		return "cmd"
	case ShellPowerShell:
		return "powershell"
	case ShellPwsh:
		return "pwsh"
	case ShellWsl:
		return "wsl"
	default:
		return "custom"
	}
}

// commandLine resolves the shell to an executable and argument list.
// PowerShell-family shells launch directly, never through an intermediate
// command interpreter, to avoid a double interpreter startup. Custom
// command lines are split with shell-style quoting.
func commandLine(shell Shell, custom string) (string, []string, error) {
	switch shell {
	case ShellCmd:
		if sh := os.Getenv("SHELL"); sh != "" {
			return sh, nil, nil
		}
		return "/bin/sh", nil, nil
	case ShellPowerShell:
		return "powershell", []string{"-NoLogo"}, nil
	case ShellPwsh:
		return "pwsh", []string{"-NoLogo"}, nil
	case ShellWsl:
		return "wsl", nil, nil
	case ShellCustom:
		parts, err := shlex.Split(custom)
		if err != nil {
			return "", nil, fmt.Errorf("parse shell command %q: %w", custom, err)
		}
		if len(parts) == 0 {
			return "", nil, fmt.Errorf("empty shell command")
		}
		return parts[0], parts[1:], nil
	}
	return "", nil, fmt.Errorf("unknown shell %d", shell)
}
