package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
)

func TestNewLogger_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingSettings{Level: "error", Format: "json"}, "debug", &buf)

	logger.Debug("resolved imports", nil)

	assert.Contains(t, buf.String(), `"message":"resolved imports"`)
}

func TestNewLogger_ConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingSettings{Level: "warn"}, "", &buf)

	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[warn] shown")
}

func TestNewCompiler(t *testing.T) {
	compiler, ok := NewCompiler("/work", config.Settings{CompilerPath: "/opt/solc"}).(*solc.ExecCompiler)

	require.True(t, ok)
	assert.Equal(t, "/opt/solc", compiler.Path)
	assert.Equal(t, "/work", compiler.Dir)
}

func TestNewLinters(t *testing.T) {
	selector, ok := NewLinters(t.TempDir(), config.Settings{LinterPath: "ethlint"}).(*solium.Selector)

	require.True(t, ok)
	assert.Equal(t, "ethlint", selector.DefaultModule())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), "")

	require.NoError(t, err)
	assert.Equal(t, "solc", cfg.Solidity.CompilerPath)
}
