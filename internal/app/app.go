// Package app wires configuration, logging and the checker adapters for the
// commands.
package app

import (
	"io"

	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/internal/logging"
)

// LoadConfig loads the configuration for a workspace root.
func LoadConfig(root, configFile string) (config.Config, error) {
	loader, err := config.NewLoader(root, configFile)
	if err != nil {
		return config.Config{}, err
	}
	return loader.Load()
}

// NewLogger builds the logger described by settings. A non-empty
// levelOverride replaces the configured level.
func NewLogger(settings config.LoggingSettings, levelOverride string, output io.Writer) *logging.Logger {
	level := settings.Level
	if levelOverride != "" {
		level = levelOverride
	}
	format := logging.HumanFormat
	if settings.Format == string(logging.JSONFormat) {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
		Output: output,
	})
}

// NewCompiler returns the executable-backed compiler for settings.
func NewCompiler(root string, settings config.Settings) solc.Compiler {
	compiler := solc.NewExecCompiler(settings.CompilerPath)
	compiler.Dir = root
	return compiler
}

// NewLinters returns the linter selector for settings.
func NewLinters(root string, settings config.Settings) solium.Provider {
	return solium.NewSelector(root, settings.NodePath, settings.LinterPath, settings.MultiProjectLinting)
}
