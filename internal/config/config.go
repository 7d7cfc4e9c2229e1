// Package config loads runtime configuration: defaults, then an optional
// YAML file, then REVISIT_ environment variables, then command-line flags,
// each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "REVISIT_"

// Config controls the engine's runtime wiring.
type Config struct {
	DBPath   string `koanf:"db" validate:"required"`
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:   "revisit.db",
		LogLevel: "info",
	}
}

// Load merges the configuration layers. configFile may be empty; a missing
// explicitly-given file is an error, flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	_ = k.Set("db", defaults.DBPath)
	_ = k.Set("log_level", defaults.LogLevel)

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", configFile, err)
		}
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
