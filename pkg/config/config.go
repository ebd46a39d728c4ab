// Package config loads the gnmd configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/genemede/gnmd/pkg/curate"
	"github.com/genemede/gnmd/pkg/logging"
	"github.com/genemede/gnmd/pkg/storage"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "GNMD_CONFIG"

// Config represents the gnmd configuration
type Config struct {
	Store     StoreConfig     `yaml:"store" json:"store"`
	Repair    RepairConfig    `yaml:"repair" json:"repair"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// StoreConfig controls how entity files are written
type StoreConfig struct {
	// Suffix is enforced on files made by create
	Suffix string `yaml:"suffix" json:"suffix"`

	// Indent is the JSON indent width in spaces
	Indent int `yaml:"indent" json:"indent"`
}

// RepairConfig sets repair defaults the fix command flags can override
type RepairConfig struct {
	LenientDatetimes bool `yaml:"lenient_datetimes" json:"lenient_datetimes"`
	DedupeGUIDs      bool `yaml:"dedupe_guids" json:"dedupe_guids"`
}

// DiscoveryConfig selects files for the find command
type DiscoveryConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Dir holds session log files. Empty means entries go to stderr.
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Suffix: storage.DefaultSuffix,
			Indent: 4,
		},
		Discovery: DiscoveryConfig{
			Include: []string{"*" + storage.DefaultSuffix},
			Exclude: []string{"*_bak_*"},
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// DefaultPath returns $GNMD_CONFIG, or ~/.gnmd/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gnmd", "config.yaml"), nil
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields DefaultConfig. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Suffix == "" {
		c.Store.Suffix = storage.DefaultSuffix
	}
	if !strings.HasPrefix(c.Store.Suffix, ".") || strings.ContainsAny(c.Store.Suffix, `/\`) {
		return fmt.Errorf("invalid store suffix: %q (must start with '.' and contain no separators)", c.Store.Suffix)
	}

	if c.Store.Indent < 0 || c.Store.Indent > 8 {
		return fmt.Errorf("store indent must be between 0 and 8, got %d", c.Store.Indent)
	}

	if _, err := storage.NewMatcher(c.Discovery.Include, c.Discovery.Exclude); err != nil {
		return err
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if _, err := logging.ParseLevel(c.Logging.Verbosity); err != nil {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create temp file for atomic write
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() logging.Level {
	level, err := logging.ParseLevel(c.Logging.Verbosity)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

// Repairer builds a repairer from the repair section.
func (c *Config) Repairer(opts ...curate.Option) *curate.Repairer {
	base := []curate.Option{
		curate.WithLenientDatetimes(c.Repair.LenientDatetimes),
		curate.WithDedupe(c.Repair.DedupeGUIDs),
	}
	return curate.New(append(base, opts...)...)
}

// Matcher builds the discovery matcher.
func (c *Config) Matcher() (*storage.Matcher, error) {
	return storage.NewMatcher(c.Discovery.Include, c.Discovery.Exclude)
}

// FileOptions returns the storage options the store section implies.
func (c *Config) FileOptions() []storage.Option {
	return []storage.Option{
		storage.WithProvider(storage.NewDisk(c.Store.Indent)),
		storage.WithSuffix(c.Store.Suffix),
		storage.WithRepairer(c.Repairer()),
	}
}
