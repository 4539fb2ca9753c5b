// Package config loads runtime settings for the echeance CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ECHEANCE_"

// Configuration holds the settings shared by every command.
type Configuration struct {
	DBPath               string `koanf:"db_path" validate:"required"`
	RulesDir             string `koanf:"rules_dir"`
	CaseInsensitiveMatch bool   `koanf:"case_insensitive_match"`
	LogLevel             string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat            string `koanf:"log_format" validate:"oneof=text json"`
	LogUseCases          bool   `koanf:"log_use_cases"`
}

// Load merges, lowest priority first: defaults, ~/.echeance/config.json, the
// local config file (if any) and ECHEANCE_* environment variables.
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(homeDir, ".echeance", "config.json")
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", localConfigPath, err)
		}
		if err := k.Load(file.Provider(localConfigPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.DBPath != ":memory:" {
		cfg.DBPath = expandHomePath(cfg.DBPath)
	}
	cfg.RulesDir = expandHomePath(cfg.RulesDir)
	return &cfg, nil
}

// envTransform maps ECHEANCE_DB_PATH to db_path.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
