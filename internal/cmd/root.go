// Package cmd wires the CLI surface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"wtmux/internal/config"
	"wtmux/internal/eventlog"
	"wtmux/internal/pty"
	"wtmux/internal/session"
	"wtmux/internal/termstyle"
	"wtmux/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var (
		simple     bool
		useCmd     bool
		usePwshOld bool
		usePwsh    bool
		useWsl     bool
		shellArg   string
		sjis       bool
		showVer    bool
	)

	rootCmd := &cobra.Command{
		Use:   "wtmux",
		Short: "Tiled terminal multiplexer",
		Long:  "wtmux hosts multiple shells in a tiled layout on one terminal, with tabs, split panes, scrollback copy mode, and mouse support.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVer {
				fmt.Println("wtmux " + version.Version)
				return nil
			}
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return &session.ExitError{Code: 2, Err: errors.New("stdout is not a terminal")}
			}

			cfg, err := config.Load()
			if err != nil {
				return &session.ExitError{Code: 1, Err: err}
			}

			opts := resolveOptions(cfg, flagShell{
				cmd: useCmd, powershell: usePwshOld, pwsh: usePwsh,
				wsl: useWsl, shell: shellArg, sjis: sjis, simple: simple,
			})

			logger := eventlog.Nop()
			if dir, derr := config.Dir(); derr == nil {
				if mkerr := os.MkdirAll(dir, 0o755); mkerr == nil {
					logger = eventlog.New(true, filepath.Join(dir, "log.jsonl"))
				}
			}

			sess, err := session.New(cfg, opts, logger)
			if err != nil {
				return &session.ExitError{Code: 1, Err: err}
			}
			return sess.Run()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().BoolVarP(&simple, "simple", "1", false, "single pane, no tab or status bar")
	rootCmd.Flags().BoolVarP(&useCmd, "cmd", "c", false, "use the default command shell")
	rootCmd.Flags().BoolVarP(&usePwshOld, "powershell", "p", false, "use PowerShell")
	rootCmd.Flags().BoolVarP(&usePwsh, "pwsh", "7", false, "use PowerShell Core")
	rootCmd.Flags().BoolVarP(&useWsl, "wsl", "w", false, "use WSL")
	rootCmd.Flags().StringVarP(&shellArg, "shell", "s", "", "shell command line to run")
	rootCmd.Flags().BoolVar(&sjis, "sjis", false, "use Shift-JIS (code page 932) instead of UTF-8")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "print version and exit")

	return rootCmd
}

type flagShell struct {
	cmd, powershell, pwsh, wsl bool
	shell                      string
	sjis                       bool
	simple                     bool
}

// resolveOptions applies the shell precedence: CLI flags over the config
// file over the built-in default.
func resolveOptions(cfg *config.Config, f flagShell) session.Options {
	opts := session.Options{Codepage: cfg.Codepage, Simple: f.simple}

	switch {
	case f.shell != "":
		opts.Shell, opts.Custom = pty.ParseShell(f.shell)
		if opts.Shell != pty.ShellCustom {
			opts.Custom = ""
		}
	case f.powershell:
		opts.Shell = pty.ShellPowerShell
	case f.pwsh:
		opts.Shell = pty.ShellPwsh
	case f.wsl:
		opts.Shell = pty.ShellWsl
	case f.cmd:
		opts.Shell = pty.ShellCmd
	default:
		opts.Shell, opts.Custom = pty.ParseShell(cfg.Shell)
	}
	if f.sjis {
		opts.Codepage = 932
	}
	return opts
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", termstyle.Red("error:"), err)
		var exitErr *session.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}
