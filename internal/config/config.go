// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for webllama.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.webllama/config.toml
//   - ~/.webllama/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/webllama/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete webllama configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Web application server configuration
	Server ServerConfig `toml:"server" json:"server"`

	// Local Ollama configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Python application configuration
	App AppConfig `toml:"app" json:"app"`
}

// ServerConfig describes where the web application listens.
type ServerConfig struct {
	// Host the app binds to (default: 127.0.0.1)
	Host string `toml:"host" json:"host"`
	// Port the app listens on (default: 8080)
	Port int `toml:"port" json:"port"`
}

// OllamaConfig contains local Ollama daemon configuration.
type OllamaConfig struct {
	// URL of the Ollama server
	URL string `toml:"url" json:"url"`
	// Model the web app uses; pulled automatically when absent
	Model string `toml:"model" json:"model"`
	// Unit is the systemd unit name for the daemon
	Unit string `toml:"unit" json:"unit"`
}

// AppConfig describes the Python application being launched.
type AppConfig struct {
	// Dir is the application root directory
	Dir string `toml:"dir" json:"dir"`
	// Entrypoint is the module run as `python -m <entrypoint>`, or a
	// script path relative to Dir when it ends in .py
	Entrypoint string `toml:"entrypoint" json:"entrypoint"`
	// VenvDir is the virtual environment directory (default: <dir>/.venv)
	VenvDir string `toml:"venv_dir" json:"venv_dir"`
	// Requirements is the pip requirements file (default: <dir>/requirements.txt)
	Requirements string `toml:"requirements" json:"requirements"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},

		Ollama: OllamaConfig{
			URL:   "http://127.0.0.1:11434",
			Model: "llama3.2:3b",
			Unit:  "ollama",
		},

		App: AppConfig{
			Entrypoint: "app.py",
		},
	}
}

// Endpoint returns the URL the web application serves on.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// VenvDir resolves the virtual environment directory, falling back to
// <app.dir>/.venv.
func (c *Config) VenvDir() string {
	if c.App.VenvDir != "" {
		return c.App.VenvDir
	}
	return filepath.Join(c.App.Dir, ".venv")
}

// RequirementsPath resolves the pip requirements file, falling back to
// <app.dir>/requirements.txt.
func (c *Config) RequirementsPath() string {
	if c.App.Requirements != "" {
		return c.App.Requirements
	}
	return filepath.Join(c.App.Dir, "requirements.txt")
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the webllama configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".webllama"), nil
}

func configFilePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return configFilePath("config.toml")
}

// ConfigPathJSON returns the path to the JSON fallback config file.
func ConfigPathJSON() (string, error) {
	return configFilePath("config.json")
}

// EnsureConfigDir creates ~/.webllama if it does not exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is selected by file extension; everything else parses
// as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := loadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := loadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}

	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if cfg.Ollama.Unit == "" {
		cfg.Ollama.Unit = defaults.Ollama.Unit
	}

	if cfg.App.Entrypoint == "" {
		cfg.App.Entrypoint = defaults.App.Entrypoint
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies WEBLLAMA_* environment variables on top of
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("WEBLLAMA_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("WEBLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("WEBLLAMA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("WEBLLAMA_APP_DIR"); v != "" {
		c.App.Dir = v
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with owner-only
// permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# webllama configuration file")
	fmt.Fprintln(file, "# Generated by webllama - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file. The write is atomic so
// a crash cannot leave a truncated config behind.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError names one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateErrors collects every invalid field so the user can fix the
// whole file in one pass.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", c.Server.Port),
		})
	}

	if c.Ollama.URL != "" {
		u, err := url.Parse(c.Ollama.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL %q", c.Ollama.URL),
			})
		}
	}

	if c.Ollama.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.model",
			Message: "model must not be empty",
		})
	}

	if c.App.Entrypoint == "" {
		errs = append(errs, ValidationError{
			Field:   "app.entrypoint",
			Message: "entrypoint must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
