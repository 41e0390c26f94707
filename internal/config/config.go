package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iishyfishyy/trigramdb/internal/persist"
	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

const (
	ConfigDirName   = ".trigramdb"
	ConfigFileName  = "config.yaml"
	StoreFileName   = "store.json"
	HistoryFileName = "history.json"

	DefaultHistoryEntries = 200
)

// Config represents the application configuration
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	History HistoryConfig `yaml:"history"`
}

// SearchConfig holds the scoring parameters
type SearchConfig struct {
	Iterations int       `yaml:"iterations"`
	Weights    []float64 `yaml:"weights,flow"`
}

// StorageConfig selects where entries are kept
type StorageConfig struct {
	Backend string `yaml:"backend"` // json | msgpack | sqlite
	Path    string `yaml:"path"`
}

// HistoryConfig controls the search history file
type HistoryConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Iterations: scoring.DefaultIterations,
			Weights:    scoring.DefaultWeights(),
		},
		Storage: StorageConfig{
			Backend: persist.KindJSON,
			Path:    filepath.Join("~", ConfigDirName, StoreFileName),
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: DefaultHistoryEntries,
		},
	}
}

// Validate checks that the configuration can drive a search
func (c *Config) Validate() error {
	var errs []error

	if c.Search.Iterations < 2 {
		errs = append(errs, fmt.Errorf("search.iterations must be at least 2, got %d", c.Search.Iterations))
	}
	if len(c.Search.Weights) == 0 {
		errs = append(errs, errors.New("search.weights must not be empty"))
	}
	for i, w := range c.Search.Weights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("search.weights[%d] must not be negative, got %v", i, w))
		}
	}

	switch c.Storage.Backend {
	case persist.KindJSON, persist.KindMsgpack, persist.KindSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be one of json, msgpack, sqlite, got %q", c.Storage.Backend))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path must not be empty"))
	}

	if c.History.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("history.max_entries must not be negative, got %d", c.History.MaxEntries))
	}

	return errors.Join(errs...)
}

// StorePath returns the storage path with a leading ~ expanded
func (c *Config) StorePath() (string, error) {
	return ExpandHome(c.Storage.Path)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetHistoryPath returns the path to the search history file
func GetHistoryPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, HistoryFileName), nil
}

// Load reads the configuration from path. It returns nil (not an error)
// when the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep their default values
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads the configuration at path, falling back to Default
// when the file is missing
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}

// Save writes the configuration to path
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal renders the configuration as YAML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Exists checks if a configuration file exists at path
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
