// Package config loads runtime settings from defaults, an optional YAML
// file, the environment (with .env support) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/and161185/nextmode/internal/migrate"
	"github.com/and161185/nextmode/internal/repository"
)

// Environment variable names.
const (
	EnvStore         = "NEXTMODE_STORE"
	EnvDSN           = "NEXTMODE_DSN"
	EnvNamespace     = "NEXTMODE_NS"
	EnvHashPasscodes = "NEXTMODE_HASH_PASSCODES"
	EnvDev           = "NEXTMODE_DEV"
)

// Config holds the settings of the nextmode shell.
type Config struct {
	// Store selects the backend: "sqlite" or "postgres".
	Store string `yaml:"store"`
	// DSN is the sqlite file path or the postgres connection string.
	// Empty selects the default sqlite file; postgres requires it.
	DSN string `yaml:"dsn"`
	// Namespace prefixes every stored record.
	Namespace string `yaml:"namespace"`
	// HashPasscodes seals new passcodes with Argon2id.
	HashPasscodes bool `yaml:"hash_passcodes"`
	// Dev switches to human-readable debug logging.
	Dev bool `yaml:"dev"`
}

// DataDir is where the local store lives by default.
func DataDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "nextmode")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nextmode")
}

// DefaultSQLitePath is the local store used when no DSN is configured.
func DefaultSQLitePath() string { return filepath.Join(DataDir(), "nextmode.db") }

// Default returns the built-in settings: the sqlite store in DataDir.
func Default() Config {
	return Config{
		Store:     migrate.DriverSQLite,
		Namespace: repository.DefaultNamespace,
	}
}

// DataSource is the DSN to open, falling back to DefaultSQLitePath for sqlite.
func (c Config) DataSource() string {
	if c.DSN == "" && c.Store == migrate.DriverSQLite {
		return DefaultSQLitePath()
	}
	return c.DSN
}

// Load layers defaults, the YAML file at path (skipped when empty), the
// optional dotenv files (".env" when none are given) and NEXTMODE_*
// variables. Existing environment variables win over dotenv values.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.DSN = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		c.Namespace = v
	}
	for key, dst := range map[string]*bool{EnvHashPasscodes: &c.HashPasscodes, EnvDev: &c.Dev} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks that the store can be opened with these settings.
func (c Config) Validate() error {
	switch c.Store {
	case migrate.DriverSQLite, migrate.DriverPostgres:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, migrate.DriverSQLite, migrate.DriverPostgres)
	}
	if c.Store == migrate.DriverPostgres && c.DSN == "" {
		return errors.New("dsn is required for the postgres store")
	}
	if c.Namespace == "" {
		return errors.New("namespace must not be empty")
	}
	return nil
}
