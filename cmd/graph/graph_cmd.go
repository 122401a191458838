package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/solls/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/solls/depgraph"
	"github.com/LegacyCodeHQ/solls/depgraph/packages"
	"github.com/LegacyCodeHQ/solls/internal/app"
)

type graphOptions struct {
	format string
	root   string
	why    string
	url    bool
}

// Cmd represents the graph command.
var Cmd = NewCommand()

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{
		format: formatters.OutputFormatDOT.String(),
	}

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the resolved import graph of a contract",
		Long: `Resolve the imports of a contract the same way a validation pass does
and print the resulting graph.

Formats:
  dot      Graphviz digraph, import cycles in red (default)
  json     adjacency lists keyed by file
  mermaid  Mermaid.js flowchart, import cycles in red
  sources  the compiler's source set

Examples:
  solls graph contracts/Token.sol
  solls graph contracts/Token.sol -f json
  solls graph contracts/Token.sol -f mermaid -u
  solls graph src/Vault.sol -r . -f sources
  solls graph src/Vault.sol --why lib/openzeppelin-contracts/contracts/utils/Context.sol`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format (dot, json, mermaid, sources)")
	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "Project root (default: current directory)")
	cmd.Flags().StringVar(&opts.why, "why", "", "Show only the import chains leading to this file")
	cmd.Flags().BoolVarP(&opts.url, "url", "u", false, "Print a mermaid.live URL instead of the graph (mermaid format only)")

	return cmd
}

func runGraph(cmd *cobra.Command, file string, opts *graphOptions) error {
	root := opts.root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := app.LoadConfig(root, configFile)
	if err != nil {
		return err
	}
	settings := cfg.Solidity
	if settings.RootDirectory != "" {
		root = filepath.Join(root, settings.RootDirectory)
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", file, err)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	remappings := make([]packages.Remapping, 0, len(settings.CompilerRemappings))
	for _, rule := range settings.CompilerRemappings {
		r, err := packages.ParseRemapping(rule)
		if err != nil {
			return fmt.Errorf("invalid compiler remapping: %w", err)
		}
		remappings = append(remappings, r)
	}

	project, err := packages.NewProject(root, packages.Options{
		PackagesDirectory:  settings.PackageDefaultDependenciesDirectory,
		ContractsDirectory: settings.PackageDefaultDependenciesContractsDirectory,
		Remappings:         remappings,
	})
	if err != nil {
		return err
	}
	for _, warning := range project.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warning)
	}

	collection := depgraph.NewCollection(nil)
	collection.AddAndResolve(path, string(code), project)

	if formatters.OutputFormat(opts.format) == formatters.OutputFormatSources {
		if opts.why != "" {
			return fmt.Errorf("--why cannot be combined with --format sources")
		}
		data, err := json.MarshalIndent(collection.CompilationUnit(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	formatter, err := formatters.NewFormatter(formatters.OutputFormat(opts.format))
	if err != nil {
		return err
	}

	g, err := collection.DependencyGraph()
	if err != nil {
		return err
	}
	cycles, err := collection.Cycles()
	if err != nil {
		return err
	}

	if opts.why != "" {
		target, err := filepath.Abs(opts.why)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", opts.why, err)
		}
		g = depgraph.ImportPaths(g, path, target)
		if len(g) == 0 {
			return fmt.Errorf("%s is not imported by %s", opts.why, file)
		}
	}

	output, err := formatter.Format(g, formatters.FormatOptions{
		Label:       filepath.Base(path),
		Root:        project.Root,
		PackagesDir: project.PackagesDir,
		Cycles:      cycles,
	})
	if err != nil {
		return err
	}

	if len(cycles) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "found %d import cycle(s)\n", len(cycles))
	}
	if opts.url {
		mermaid, ok := formatter.(*formatters.MermaidFormatter)
		if !ok {
			return fmt.Errorf("--url is only supported for the mermaid format")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), mermaid.GenerateURL(output))
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), output)
	if err == nil && formatters.OutputFormat(opts.format) == formatters.OutputFormatJSON {
		_, err = fmt.Fprintln(cmd.OutOrStdout())
	}
	return err
}
