package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/solls/cmd/check"
	"github.com/LegacyCodeHQ/solls/cmd/graph"
	"github.com/LegacyCodeHQ/solls/cmd/serve"
	"github.com/LegacyCodeHQ/solls/cmd/watch"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand(serve.Cmd, check.Cmd, graph.Cmd, watch.Cmd)

func newRootCommand(subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solls",
		Short: "Solidity language server with compiler and linter diagnostics",
		Long: `solls resolves the imports of Solidity contracts across local files and
installed packages, runs solc and solium on the result and reports their
diagnostics, either to an editor over the Language Server Protocol or on
the command line.

Use 'solls --help' to see all available commands, or 'solls <command> --help'
for detailed information about a specific command.`,
		Version:      version,
		SilenceUsage: true,
	}

	// Register subcommands
	cmd.AddCommand(subcommands...)

	// Initialize annotations for version template
	cmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: .solls.yaml in the project root)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides the config file)")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
