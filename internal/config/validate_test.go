// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 99999

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "server.port")
	require.Contains(t, err.Error(), "out of range")
}

func TestValidate_BadOllamaURL(t *testing.T) {
	cfg := Default()
	cfg.Ollama.URL = "not a url"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ollama.url")
}

func TestValidate_EmptyModel(t *testing.T) {
	cfg := Default()
	cfg.Ollama.Model = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ollama.model")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Ollama.Model = ""
	cfg.App.Entrypoint = ""

	err := cfg.Validate()
	require.Error(t, err)

	errs, ok := err.(ValidateErrors)
	require.True(t, ok, "expected ValidateErrors, got %T", err)
	require.Len(t, errs, 3)
}

func TestSaveTOML_PreservesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.Port = 5000
	cfg.Ollama.Model = "mistral:7b"
	cfg.App.Dir = "/srv/webapp"

	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 5000, loaded.Server.Port)
	require.Equal(t, "mistral:7b", loaded.Ollama.Model)
	require.Equal(t, "/srv/webapp", loaded.App.Dir)
}

func TestSaveTOML_WritesRestrictedPerms(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not meaningful as root")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
