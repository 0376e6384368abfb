// Package config provides configuration management for gupshup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/tidwall/sjson"
)

const (
	appName        = "gupshup"
	configFileName = "gupshup.json"
	dbFileName     = "gupshup.db"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// Models lists the selectable model identifiers.
var Models = []ModelInfo{
	{ID: "gemini-3-flash-preview", Name: "Gemini 3.0 Flash", Description: "Fastest reasoning model"},
	{ID: "gemini-3-pro-preview", Name: "Gemini 3.0 Pro", Description: "Best for complex tasks"},
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config is the top-level configuration structure.
type Config struct {
	APIKey       string   `json:"api_key,omitempty"`
	Model        string   `json:"model,omitempty"`
	ShareBaseURL string   `json:"share_base_url,omitempty"`
	ListenAddr   string   `json:"listen_addr,omitempty"`
	User         *User    `json:"user,omitempty"`
	Options      *Options `json:"options,omitempty"`
}

// User identifies the local account that owns persisted sessions.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// Options holds optional configuration settings.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates a new Config with defaults applied.
func NewConfig() *Config {
	cfg := &Config{Options: &Options{}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = "http://localhost:8787"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8787"
	}
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// DataDir returns the data directory, honoring the configured override.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DatabasePath returns the SQLite database file path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), dbFileName)
}

// Load reads configuration from the global config file.
// A missing file yields a default configuration rather than an error.
func Load() (*Config, error) {
	return LoadFromFile(GlobalConfigPath())
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from trusted config resolution.
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := unmarshalConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func marshalConfig(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	return json.Unmarshal(data, cfg)
}

// Save writes the configuration to the global config file.
func Save(cfg *Config) error {
	return SaveToFile(cfg, GlobalConfigPath())
}

// SaveToFile writes the configuration to a specific file path.
func SaveToFile(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := marshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // Restrictive permissions for security.
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Set updates a single field in the config file using JSON path notation.
// This uses sjson for surgical updates - only the specified field is modified.
func Set(key string, value any) error {
	return SetInFile(GlobalConfigPath(), key, value)
}

// SetInFile updates a single field in a specific config file.
func SetInFile(path, key string, value any) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from trusted config resolution.
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(newData), 0o600); err != nil { //nolint:gosec // Restrictive permissions for security.
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
