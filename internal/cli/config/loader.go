package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context. The key lives here so
// the commands package can retrieve it without importing the cli package.
type loggerKey struct{}

// Package-level config file tracking and loaded-config access.
var (
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile finds the config file to use.
// Priority: explicit path > colmark.yaml > colmark.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"colmark.yaml", "colmark.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds a Config from the layered sources. flags may be nil; when
// present, only flags the user actually set override the other layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"prefix":       DefaultPrefix,
		"exclude_dirs": DefaultExcludeDirs,
		"extensions":   DefaultExtensions,
		"workers":      DefaultWorkers,
		"output":       DefaultOutput,
		"verbose":      false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: COLMARK_SCAN_DIR -> scan_dir
	if err := k.Load(env.Provider("COLMARK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "COLMARK_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// Validate enforces the run preconditions the engine itself does not
// check: a real scan directory and a non-empty target list.
func Validate(cfg *Config) error {
	if cfg.ScanDir == "" {
		return fmt.Errorf("scan_dir is required (flag --scan-dir, env COLMARK_SCAN_DIR or colmark.yaml)")
	}
	info, err := os.Stat(cfg.ScanDir)
	if err != nil {
		return fmt.Errorf("scan_dir %q: %w", cfg.ScanDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan_dir %q is not a directory", cfg.ScanDir)
	}
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("no targets configured; expected \"table.column\" entries")
	}
	if cfg.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after Load is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
