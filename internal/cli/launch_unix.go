//go:build !windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/python"
)

// runApp replaces the current process with the Python application, so
// signals and the exit code flow straight through to the shell.
func runApp(cfg *config.Config, venv *python.Venv) error {
	argv, env := appCommand(cfg, venv)

	if err := os.Chdir(cfg.App.Dir); err != nil {
		return fmt.Errorf("could not enter app directory %s: %w", cfg.App.Dir, err)
	}

	if err := syscall.Exec(argv[0], argv, env); err != nil {
		return fmt.Errorf("failed to exec %s: %w", argv[0], err)
	}
	return nil
}
