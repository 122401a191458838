package serve

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/solls/internal/app"
	"github.com/LegacyCodeHQ/solls/lsp"
)

type serveOptions struct {
	stdio bool
}

// Cmd represents the serve command.
var Cmd = NewCommand()

// NewCommand returns a new serve command instance.
func NewCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server on stdio",
		Long: `Run the Solidity language server. The client talks JSON-RPC over stdin
and stdout; logs go to stderr and are mirrored to the client as
window/logMessage notifications.

Configuration is read from .solls.yaml (or .json/.toml) in the current
directory, or from --config, and is updated by the client through
workspace/didChangeConfiguration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cmd, cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	// Editors commonly pass --stdio; it is the only transport.
	cmd.Flags().BoolVar(&opts.stdio, "stdio", true, "Communicate over stdin/stdout")
	_ = cmd.Flags().MarkHidden("stdio")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, in io.Reader, out io.Writer) error {
	configFile, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cwd, err := filepath.Abs(".")
	if err != nil {
		return err
	}
	cfg, err := app.LoadConfig(cwd, configFile)
	if err != nil {
		return err
	}

	logWriter := lsp.NewLogWriter()
	logger := app.NewLogger(cfg.Logging, logLevel, io.MultiWriter(cmd.ErrOrStderr(), logWriter))

	server := lsp.NewServer(lsp.Options{
		Logger:     logger,
		ConfigFile: configFile,
		Version:    cmd.Root().Version,
		LogWriter:  logWriter,
	})
	if err := server.Run(ctx, lsp.NewStdio(in, out)); err != nil {
		return err
	}
	if code := server.ExitCode(); code != 0 {
		return fmt.Errorf("client exited without shutdown (exit code %d)", code)
	}
	return nil
}
