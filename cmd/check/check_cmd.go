package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/internal/app"
	"github.com/LegacyCodeHQ/solls/validation"
	"github.com/LegacyCodeHQ/solls/vcs/git"
)

type checkOptions struct {
	root    string
	changed bool

	// Overridable in tests.
	newCompiler func(root string, settings config.Settings) solc.Compiler
	newLinters  func(root string, settings config.Settings) solium.Provider
}

// Cmd represents the check command.
var Cmd = NewCommand()

// NewCommand returns a new check command instance.
func NewCommand() *cobra.Command {
	return newCommand(&checkOptions{
		newCompiler: app.NewCompiler,
		newLinters:  app.NewLinters,
	})
}

func newCommand(opts *checkOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]...",
		Short: "Validate contracts once and print their diagnostics",
		Long: `Run the compiler and the linter on each file, the same way the language
server does when a file is opened, and print the diagnostics.

With --changed, the contracts git reports as staged, modified or untracked
under the project root are checked instead.

Exits with a non-zero status when any error diagnostic is reported.

Examples:
  solls check src/Token.sol
  solls check -r . src/*.sol
  solls check --changed`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.changed {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Project root (default: current directory)")
	cmd.Flags().BoolVar(&opts.changed, "changed", false, "Check the contracts changed in the git working tree")

	return cmd
}

func runCheck(cmd *cobra.Command, files []string, opts *checkOptions) error {
	root := opts.root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}

	if opts.changed {
		files, err = git.ChangedContracts(cmd.Context(), root)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No changed contracts")
			return nil
		}
	}

	configFile, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	cfg, err := app.LoadConfig(root, configFile)
	if err != nil {
		return err
	}

	printer := app.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	orchestrator := validation.New(validation.Options{
		WorkspaceRoot: root,
		Settings:      cfg.Solidity,
		Compiler:      opts.newCompiler(root, cfg.Solidity),
		Linters:       opts.newLinters(root, cfg.Solidity),
		Publisher:     printer,
		Notifier:      printer,
		Logger:        app.NewLogger(cfg.Logging, logLevel, cmd.ErrOrStderr()),
	})

	for _, file := range files {
		path, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		code, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		orchestrator.Validate(cmd.Context(), validation.TriggerOpen, validation.Document{
			URI:  displayName(root, file),
			Path: path,
			Text: string(code),
		})
	}

	if n := printer.ErrorCount(); n > 0 {
		return fmt.Errorf("found %d error(s)", n)
	}
	return nil
}

// displayName keeps names given on the command line and shortens absolute
// paths under root.
func displayName(root, file string) string {
	if !filepath.IsAbs(file) {
		return file
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return filepath.ToSlash(rel)
}
