// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for lineage configuration.
	DefaultConfigDir = ".lineage"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultTreesFile is the default trees file name.
	DefaultTreesFile = "trees.yaml"
	// DefaultDatabaseFile is the per-tree SQLite file name.
	DefaultDatabaseFile = "lineage.db"

	// EnvUser overrides the configured editing identity.
	EnvUser = "LINEAGE_USER"
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "LINEAGE_LOG_LEVEL"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Resolver ResolverConfig `yaml:"resolver,omitempty"`
	// User is the editing identity passed to the authorizer.
	User string `yaml:"user,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-tree databases, this is computed dynamically using SQLitePathForTree.
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logger construction settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ResolverConfig holds resolver behaviour switches.
type ResolverConfig struct {
	// RepairOnRead persists the promotion of an unflagged event found
	// while resolving. A pointer so an absent key keeps the default.
	RepairOnRead *bool `yaml:"repair_on_read,omitempty"`
}

// RepairEnabled reports whether read-path promotions are persisted.
func (r ResolverConfig) RepairEnabled() bool {
	return r.RepairOnRead == nil || *r.RepairOnRead
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from the .lineage directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'lineage init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if user := os.Getenv(EnvUser); user != "" {
		c.User = user
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// ConfigDir returns the path to the .lineage config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// TreesFilePath returns the path to the trees file.
func TreesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultTreesFile)
}

// SanitizeTreeName converts a tree name to a directory-safe identifier.
func SanitizeTreeName(name string) string {
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// TreeDir returns the directory path for a given tree.
func TreeDir(basePath, treeName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "trees", SanitizeTreeName(treeName))
}

// SQLitePathForTree returns the SQLite database path for a given tree.
func SQLitePathForTree(basePath, treeName string) string {
	return filepath.Join(TreeDir(basePath, treeName), DefaultDatabaseFile)
}

// DatabasePath returns the configured database path, or the per-tree path
// when none is configured.
func (c *Config) DatabasePath(basePath, treeName string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return SQLitePathForTree(basePath, treeName)
}
