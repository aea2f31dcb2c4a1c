// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.Unit != "ollama" {
		t.Errorf("Ollama.Unit = %q, want ollama", cfg.Ollama.Unit)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	cfg := Default()
	if got := cfg.Endpoint(); got != "http://127.0.0.1:8080" {
		t.Errorf("Endpoint() = %q, want http://127.0.0.1:8080", got)
	}

	cfg.Server.Port = 5000
	if got := cfg.Endpoint(); got != "http://127.0.0.1:5000" {
		t.Errorf("Endpoint() = %q, want http://127.0.0.1:5000", got)
	}
}

func TestVenvDir_Fallback(t *testing.T) {
	cfg := Default()
	cfg.App.Dir = "/srv/webapp"

	want := filepath.Join("/srv/webapp", ".venv")
	if got := cfg.VenvDir(); got != want {
		t.Errorf("VenvDir() = %q, want %q", got, want)
	}

	cfg.App.VenvDir = "/opt/venvs/webapp"
	if got := cfg.VenvDir(); got != "/opt/venvs/webapp" {
		t.Errorf("VenvDir() = %q, want explicit override", got)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0.0"

[server]
host = "127.0.0.1"
port = 5000

[ollama]
url = "http://127.0.0.1:11434"
model = "qwen2.5:7b"

[app]
dir = "/srv/webapp"
entrypoint = "server.py"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Ollama.Model = %q, want qwen2.5:7b", cfg.Ollama.Model)
	}
	if cfg.App.Entrypoint != "server.py" {
		t.Errorf("App.Entrypoint = %q, want server.py", cfg.App.Entrypoint)
	}

	// Unset fields fall back to defaults
	if cfg.Ollama.Unit != "ollama" {
		t.Errorf("Ollama.Unit = %q, want default ollama", cfg.Ollama.Unit)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{"server":{"host":"127.0.0.1","port":3000},"ollama":{"model":"llama3.2:3b"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
}

func TestLoadFromPath_BadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() = nil error for malformed TOML")
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.Port = 9000
	cfg.App.Dir = "/srv/webapp"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("round-trip Server.Port = %d, want 9000", loaded.Server.Port)
	}
	if loaded.App.Dir != "/srv/webapp" {
		t.Errorf("round-trip App.Dir = %q", loaded.App.Dir)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WEBLLAMA_OLLAMA_URL", "http://127.0.0.1:11435")
	t.Setenv("WEBLLAMA_MODEL", "mistral:7b")
	t.Setenv("WEBLLAMA_PORT", "4242")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Ollama.URL != "http://127.0.0.1:11435" {
		t.Errorf("Ollama.URL = %q, want env override", cfg.Ollama.URL)
	}
	if cfg.Ollama.Model != "mistral:7b" {
		t.Errorf("Ollama.Model = %q, want env override", cfg.Ollama.Model)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("Server.Port = %d, want env override", cfg.Server.Port)
	}
}

func TestApplyEnvOverrides_BadPort(t *testing.T) {
	t.Setenv("WEBLLAMA_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default kept on bad env value", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad url", func(c *Config) { c.Ollama.URL = "://nope" }, "ollama.url"},
		{"empty model", func(c *Config) { c.Ollama.Model = "" }, "ollama.model"},
		{"empty entrypoint", func(c *Config) { c.App.Entrypoint = "" }, "app.entrypoint"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tc.wantErr)
			}
		})
	}
}
