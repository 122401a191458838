package watch

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/internal/app"
	"github.com/LegacyCodeHQ/solls/validation"
)

type watchOptions struct {
	port int
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Validate contracts as they change on disk",
		Long: `Validate every contract under a directory, then watch it and revalidate
contracts as they are edited. Changes to remappings.txt, foundry.toml, the
style config or the solls config file revalidate everything.

Diagnostics are printed as file:line:column: severity: message [source].
With --port, the current diagnostics are also served as a live-updating
page at localhost.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd, dir, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVarP(&opts.port, "port", "P", 0, "Serve live diagnostics over HTTP on this port (0 disables)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, dir string, opts *watchOptions) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve watch root: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")

	loader, err := config.NewLoader(root, configFile)
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Logging, logLevel, cmd.ErrOrStderr())
	printer := app.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	printer.ReportClean = true

	var publisher validation.Publisher = printer
	if opts.port > 0 {
		b := newBroker()
		srv := newServer(b, opts.port)
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
		}
		go srv.Serve(ln)
		defer srv.Close()

		publisher = newViewerPublisher(printer, b)
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving at http://localhost:%d\n", opts.port)
	}

	orchestrator := validation.New(validation.Options{
		WorkspaceRoot: root,
		Settings:      cfg.Solidity,
		Compiler:      app.NewCompiler(root, cfg.Solidity),
		Linters:       app.NewLinters(root, cfg.Solidity),
		Publisher:     publisher,
		Notifier:      printer,
		Logger:        logger,
	})

	w := newWorkspace(root, orchestrator, logger)
	w.skipDir(packagesDir(root, cfg.Solidity))
	w.reload = func() (config.Settings, error) {
		cfg, err := loader.Load()
		return cfg.Solidity, err
	}
	w.apply = func(settings config.Settings) {
		orchestrator.SetSettings(settings)
		orchestrator.SetCheckers(app.NewCompiler(root, settings), app.NewLinters(root, settings))
	}

	if err := w.scan(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	w.validateAll(ctx, validation.TriggerOpen)

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (%d contracts)\n", root, len(w.paths()))
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndValidate(ctx, w, logger)
}

func packagesDir(root string, settings config.Settings) string {
	return filepath.Join(root, settings.RootDirectory, settings.PackageDefaultDependenciesDirectory)
}
