//go:build windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/python"
)

// runApp runs the Python application as a child process. Windows has no
// exec, so the launcher stays alive and forwards the app's exit code.
func runApp(cfg *config.Config, venv *python.Venv) error {
	argv, env := appCommand(cfg, venv)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = cfg.App.Dir
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return nil
}
