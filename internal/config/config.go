// Package config resolves runtime settings for apflow commands from
// APFLOW_* environment variables and optional .env files.
package config

import (
	"fmt"
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/roach88/apflow/internal/stepkey"
)

// Config carries the settings shared by every apflow command. Flags may
// override individual fields after Load.
type Config struct {
	// Precision is the fraction width used when renumbering, from APFLOW_PRECISION.
	Precision int `env:"APFLOW_PRECISION" envDefault:"3"`
	// ActorRegistry is the actor registry YAML path from APFLOW_ACTORS.
	ActorRegistry string `env:"APFLOW_ACTORS"`
	// ActionRegistry is the action registry YAML path from APFLOW_ACTIONS.
	ActionRegistry string `env:"APFLOW_ACTIONS"`
	// ArchivePath is the revision archive location from APFLOW_ARCHIVE.
	ArchivePath string `env:"APFLOW_ARCHIVE"`
	// LogLevel is the logging level from APFLOW_LOG_LEVEL.
	LogLevel string `env:"APFLOW_LOG_LEVEL" envDefault:"info"`
}

// Vars represents a simple string-to-string map of variables.
type Vars map[string]string

// FromOS builds a Vars map from the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}

// Merge merges several Vars maps into one, later maps overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile loads a single .env-style file into Vars.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse env file %q: %w", path, err)
	}
	out := make(Vars, len(envMap))
	for k, v := range envMap {
		out[k] = v
	}
	return out, nil
}

// Load resolves a Config from the process environment, with the given .env
// files filling in keys the environment does not set. Later files override
// earlier ones; real environment variables always win. Every named file must
// exist and parse.
func Load(envFiles ...string) (Config, error) {
	var fromFiles Vars
	for _, path := range envFiles {
		if path == "" {
			continue
		}
		vars, err := LoadEnvFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load env file %q: %w", path, err)
		}
		fromFiles = Merge(fromFiles, vars)
	}

	var cfg Config
	opts := envparse.Options{Environment: Merge(fromFiles, FromOS())}
	if err := envparse.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Precision < stepkey.MinFractionDigits {
		return Config{}, fmt.Errorf("APFLOW_PRECISION %d is below the minimum fraction width %d", cfg.Precision, stepkey.MinFractionDigits)
	}
	return cfg, nil
}
