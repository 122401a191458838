// Package config loads server settings from defaults, a workspace config
// file, the editor and the environment.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SOLLS_SOLIDITY_COMPILERPATH.
const EnvPrefix = "SOLLS"

// Config is the full configuration tree.
type Config struct {
	Solidity Settings        `mapstructure:"solidity"`
	Logging  LoggingSettings `mapstructure:"logging"`
}

// Settings are the "solidity" settings shared with the editor.
type Settings struct {
	ValidateOnOpen         Policy `mapstructure:"validateOnOpen"`
	ValidateOnChange       Policy `mapstructure:"validateOnChange"`
	ValidateOnSave         Policy `mapstructure:"validateOnSave"`
	ValidateOnConfigChange Policy `mapstructure:"validateOnConfigChange"`
	RetainPreviousResults  bool   `mapstructure:"retainPreviousResults"`

	// CompilerRemappings holds "prefix=target" rules.
	CompilerRemappings []string `mapstructure:"compilerRemappings"`

	PackageDefaultDependenciesDirectory          string `mapstructure:"packageDefaultDependenciesDirectory"`
	PackageDefaultDependenciesContractsDirectory string `mapstructure:"packageDefaultDependenciesContractsDirectory"`

	// RootDirectory is the sub-root, relative to the workspace, that all
	// project paths resolve against.
	RootDirectory string `mapstructure:"rootDirectory"`

	MultiProjectLinting   bool          `mapstructure:"multiProjectLinting"`
	RemoteCompilerVersion string        `mapstructure:"remoteCompilerVersion"`
	CompilerPath          string        `mapstructure:"compilerPath"`
	LinterPath            string        `mapstructure:"linterPath"`
	NodePath              string        `mapstructure:"nodePath"`
	ValidationLockWindow  time.Duration `mapstructure:"validationLockWindow"`
}

// LoggingSettings configure internal/logging.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var legacyKeys = map[string]string{
	"lintOnChange": "validateOnChange",
	"lintOnSave":   "validateOnSave",
}

// Loader layers the configuration sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader reads the optional .solls config file in workspaceRoot, or
// configFile when set, and the SOLLS_* environment.
func NewLoader(workspaceRoot, configFile string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".solls")
		if workspaceRoot != "" {
			v.AddConfigPath(workspaceRoot)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solidity.validateOnOpen", string(PolicyAll))
	v.SetDefault("solidity.validateOnChange", string(PolicyAll))
	v.SetDefault("solidity.validateOnSave", string(PolicyAll))
	v.SetDefault("solidity.validateOnConfigChange", string(PolicyAll))
	v.SetDefault("solidity.retainPreviousResults", false)
	v.SetDefault("solidity.compilerRemappings", []string{})
	v.SetDefault("solidity.packageDefaultDependenciesDirectory", "lib")
	v.SetDefault("solidity.packageDefaultDependenciesContractsDirectory", "src")
	v.SetDefault("solidity.rootDirectory", "")
	v.SetDefault("solidity.multiProjectLinting", false)
	v.SetDefault("solidity.remoteCompilerVersion", "")
	v.SetDefault("solidity.compilerPath", "solc")
	v.SetDefault("solidity.linterPath", "solium")
	v.SetDefault("solidity.nodePath", "node")
	v.SetDefault("solidity.validationLockWindow", "2m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// MergeClientSettings merges the editor's "solidity" settings object.
func (l *Loader) MergeClientSettings(solidity map[string]interface{}) error {
	merged := make(map[string]interface{}, len(solidity))
	for key, value := range solidity {
		if current, ok := legacyKeys[key]; ok {
			if _, set := solidity[current]; !set {
				merged[current] = value
			}
			continue
		}
		merged[key] = value
	}
	return l.v.MergeConfigMap(map[string]interface{}{"solidity": merged})
}

// Load decodes and validates the current configuration.
func (l *Loader) Load() (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		policyHook,
		remappingHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Solidity.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s Settings) validate() error {
	for name, p := range map[string]Policy{
		"validateOnOpen":         s.ValidateOnOpen,
		"validateOnChange":       s.ValidateOnChange,
		"validateOnSave":         s.ValidateOnSave,
		"validateOnConfigChange": s.ValidateOnConfigChange,
	} {
		if _, err := ParsePolicy(string(p)); err != nil {
			return fmt.Errorf("solidity.%s: %w", name, err)
		}
	}
	if s.ValidationLockWindow < 0 {
		return fmt.Errorf("solidity.validationLockWindow must not be negative")
	}
	return nil
}

var policyType = reflect.TypeOf(Policy(""))

func policyHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != policyType {
		return data, nil
	}
	return ParsePolicy(data)
}

// remappingHook turns {prefix, target} objects into "prefix=target".
func remappingHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	var prefix, target interface{}
	switch m := data.(type) {
	case map[string]interface{}:
		prefix, target = m["prefix"], m["target"]
	case map[interface{}]interface{}:
		prefix, target = m["prefix"], m["target"]
	default:
		return data, nil
	}
	return fmt.Sprintf("%v=%v", prefix, target), nil
}
