// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for deepchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.deepchat/config.toml
//   - ~/.deepchat/config.json
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

	"github.com/morganforge/deepchat/internal/conversation"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete deepchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Ollama backend configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Generation parameters
	Generation GenerationConfig `toml:"generation" json:"generation"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains backend connection configuration.
type OllamaConfig struct {
	// URL is the base URL of the Ollama server
	URL string `toml:"url" json:"url"`
	// DefaultModel is used until the user picks a model
	DefaultModel string `toml:"default_model" json:"default_model"`
	// TimeoutSecs bounds non-streaming requests (model listing, health)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// GenerationConfig contains model inference parameters.
type GenerationConfig struct {
	// Temperature in [0.0, 1.0]; clamped on load
	Temperature float64 `toml:"temperature" json:"temperature"`
	// ContextLength (num_ctx) in [512, 8192]; clamped on load
	ContextLength int `toml:"context_length" json:"context_length"`
}

// UIConfig contains presentation configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", or "auto"
	Theme string `toml:"theme" json:"theme"`
	// FenceTag is the language tag forced onto code fences
	FenceTag string `toml:"fence_tag" json:"fence_tag"`
	// ShowStats toggles the per-reply statistics line
	ShowStats bool `toml:"show_stats" json:"show_stats"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Ollama: OllamaConfig{
			URL:          "http://127.0.0.1:11434",
			DefaultModel: "deepseek-r1:14b",
			TimeoutSecs:  30,
		},
		Generation: GenerationConfig{
			Temperature:   conversation.DefaultTemperature,
			ContextLength: conversation.DefaultContextLength,
		},
		UI: UIConfig{
			Theme:     "auto",
			FenceTag:  "python",
			ShowStats: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the deepchat configuration directory (~/.deepchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".deepchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, falling back to defaults.
// Environment overrides and validation are always applied.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	case ".json":
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DEEPCHAT_* environment variables on top of
// whatever was loaded from disk.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DEEPCHAT_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("DEEPCHAT_MODEL"); v != "" {
		c.Ollama.DefaultModel = v
	}
	if v := os.Getenv("DEEPCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Ollama.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("DEEPCHAT_TEMPERATURE"); v != "" {
		if temp, err := strconv.ParseFloat(v, 64); err == nil {
			c.Generation.Temperature = temp
		}
	}
	if v := os.Getenv("DEEPCHAT_CONTEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.ContextLength = n
		}
	}
	if v := os.Getenv("DEEPCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("DEEPCHAT_FENCE_TAG"); v != "" {
		c.UI.FenceTag = v
	}
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero-valued fields and clamps parameters to their
// valid ranges.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = d.Ollama.URL
	}
	if c.Ollama.DefaultModel == "" {
		c.Ollama.DefaultModel = d.Ollama.DefaultModel
	}
	if c.Ollama.TimeoutSecs <= 0 {
		c.Ollama.TimeoutSecs = d.Ollama.TimeoutSecs
	}
	if c.Generation.ContextLength == 0 {
		c.Generation.ContextLength = d.Generation.ContextLength
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.FenceTag == "" {
		c.UI.FenceTag = d.UI.FenceTag
	}

	// Parameters are clamped, never rejected
	if c.Generation.Temperature < conversation.TemperatureMin {
		c.Generation.Temperature = conversation.TemperatureMin
	}
	if c.Generation.Temperature > conversation.TemperatureMax {
		c.Generation.Temperature = conversation.TemperatureMax
	}
	if c.Generation.ContextLength < conversation.ContextLengthMin {
		c.Generation.ContextLength = conversation.ContextLengthMin
	}
	if c.Generation.ContextLength > conversation.ContextLengthMax {
		c.Generation.ContextLength = conversation.ContextLengthMax
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Ollama.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ollama.url is not a valid URL: %q", c.Ollama.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ollama.url must use http or https, got %q", u.Scheme)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}

	return nil
}
