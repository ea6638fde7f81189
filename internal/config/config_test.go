// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.DefaultModel != "deepseek-r1:14b" {
		t.Errorf("Ollama.DefaultModel = %q", cfg.Ollama.DefaultModel)
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("Generation.Temperature = %v", cfg.Generation.Temperature)
	}
	if cfg.Generation.ContextLength != 4096 {
		t.Errorf("Generation.ContextLength = %v", cfg.Generation.ContextLength)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSetDefaults_ClampsParameters(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		ctx      int
		wantTemp float64
		wantCtx  int
	}{
		{"below range", -1, 100, 0.0, 512},
		{"above range", 3.0, 100000, 1.0, 8192},
		{"in range untouched", 0.5, 700, 0.5, 700},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Generation.Temperature = tc.temp
			cfg.Generation.ContextLength = tc.ctx
			cfg.SetDefaults()

			if cfg.Generation.Temperature != tc.wantTemp {
				t.Errorf("Temperature = %v, want %v", cfg.Generation.Temperature, tc.wantTemp)
			}
			if cfg.Generation.ContextLength != tc.wantCtx {
				t.Errorf("ContextLength = %v, want %v", cfg.Generation.ContextLength, tc.wantCtx)
			}
		})
	}
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Ollama.URL == "" || cfg.Ollama.DefaultModel == "" {
		t.Errorf("backend defaults not filled: %+v", cfg.Ollama)
	}
	if cfg.UI.FenceTag != "python" {
		t.Errorf("UI.FenceTag = %q, want python", cfg.UI.FenceTag)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DEEPCHAT_OLLAMA_URL", "http://10.0.0.5:11434")
	t.Setenv("DEEPCHAT_MODEL", "llama3.2:3b")
	t.Setenv("DEEPCHAT_TEMPERATURE", "0.2")
	t.Setenv("DEEPCHAT_CONTEXT_LENGTH", "1024")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Ollama.URL != "http://10.0.0.5:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.DefaultModel != "llama3.2:3b" {
		t.Errorf("Ollama.DefaultModel = %q", cfg.Ollama.DefaultModel)
	}
	if cfg.Generation.Temperature != 0.2 {
		t.Errorf("Generation.Temperature = %v", cfg.Generation.Temperature)
	}
	if cfg.Generation.ContextLength != 1024 {
		t.Errorf("Generation.ContextLength = %v", cfg.Generation.ContextLength)
	}
}

func TestApplyEnvOverrides_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DEEPCHAT_TEMPERATURE", "warm")
	t.Setenv("DEEPCHAT_CONTEXT_LENGTH", "big")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Generation.Temperature != 0.7 || cfg.Generation.ContextLength != 4096 {
		t.Errorf("malformed env values applied: %+v", cfg.Generation)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad url", func(c *Config) { c.Ollama.URL = "not a url" }, true},
		{"bad scheme", func(c *Config) { c.Ollama.URL = "ftp://host:1" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"https ok", func(c *Config) { c.Ollama.URL = "https://host:11434" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestSaveTOMLLoadTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Ollama.DefaultModel = "qwen3:8b"
	cfg.Generation.Temperature = 0.4
	cfg.UI.Theme = "dark"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	if loaded.Ollama.DefaultModel != "qwen3:8b" {
		t.Errorf("DefaultModel = %q", loaded.Ollama.DefaultModel)
	}
	if loaded.Generation.Temperature != 0.4 {
		t.Errorf("Temperature = %v", loaded.Generation.Temperature)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("Theme = %q", loaded.UI.Theme)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"ollama": {"default_model": "mistral:7b"}, "generation": {"context_length": 99999}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Ollama.DefaultModel != "mistral:7b" {
		t.Errorf("DefaultModel = %q", cfg.Ollama.DefaultModel)
	}
	// Out-of-range values from disk are clamped, not rejected
	if cfg.Generation.ContextLength != 8192 {
		t.Errorf("ContextLength = %d, want clamped to 8192", cfg.Generation.ContextLength)
	}
}

func TestLoadFromPath_UnsupportedFormat(t *testing.T) {
	if _, err := LoadFromPath("/tmp/config.yaml"); err == nil {
		t.Error("LoadFromPath() = nil error for unsupported format")
	}
}
