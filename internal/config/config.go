package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Role constants
const (
	RolePresidium = "presidium" // Chairs; may act on any country
	RoleDelegate  = "delegate"  // Acts for their own country
)

const (
	configFileName = "config.yaml"
	envPrefix      = "presidium"

	DefaultSaveRetries  = 3
	DefaultEventWorkers = 4
)

// Config is the flat presidium configuration.
type Config struct {
	DatabasePath string `yaml:"database_path" split_words:"true"`
	LogLevel     string `yaml:"log_level"     split_words:"true"`
	LogFormat    string `yaml:"log_format"    split_words:"true"` // "text" or "json"
	SaveRetries  int    `yaml:"save_retries"  split_words:"true"`
	EventWorkers int    `yaml:"event_workers" split_words:"true"`

	ActorID      string `yaml:"actor_id"      split_words:"true"`
	ActorEmail   string `yaml:"actor_email"   split_words:"true"`
	ActorCountry string `yaml:"actor_country" split_words:"true"`
	ActorRole    string `yaml:"actor_role"    split_words:"true"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default(home string) *Config {
	return &Config{
		DatabasePath: filepath.Join(home, "presidium.db"),
		LogLevel:     "info",
		LogFormat:    "text",
		SaveRetries:  DefaultSaveRetries,
		EventWorkers: DefaultEventWorkers,
		ActorRole:    RolePresidium,
	}
}

// HomeDir resolves the presidium home: $PRESIDIUM_HOME, else ~/.presidium.
func HomeDir() (string, error) {
	if dir := os.Getenv("PRESIDIUM_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".presidium"), nil
}

// LoadConfig reads config.yaml from dir, then applies PRESIDIUM_* environment
// overrides. A missing file is not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default(dir)

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.yaml to dir.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	if c.SaveRetries < 0 {
		return fmt.Errorf("save_retries cannot be negative (got %d)", c.SaveRetries)
	}
	if c.EventWorkers <= 0 {
		c.EventWorkers = DefaultEventWorkers
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json (got %q)", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.ActorRole != "" && !IsKnownRole(c.ActorRole) {
		return fmt.Errorf("actor_role must be %s or %s (got %q)", RolePresidium, RoleDelegate, c.ActorRole)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// IsKnownRole reports whether role is a recognised actor role.
func IsKnownRole(role string) bool {
	return role == RolePresidium || role == RoleDelegate
}
