// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// launch.go - Launch command implementation for webllama.
//
// Command: launch
// Short:   Start the Ollama daemon, verify the model, and run the web app
// Aliases: run, start
//
// Examples:
//   webllama                      Launch with the configured defaults
//   webllama launch --model llama3.2:3b
//   webllama launch -q            Suppress progress output
//
// Launch sequence:
//   1. Refuse to run as root
//   2. Ensure the Ollama daemon is running (probe, systemd, spawn)
//   3. Wait for the daemon to answer on its health endpoint
//   4. Ensure the configured model is present (pull when absent)
//   5. Ensure the virtual environment exists
//   6. Hand the process over to the Python application
//
// Every step is a no-op when its condition is already satisfied, so
// repeated launches converge to just the process handoff.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jeranaias/webllama/internal/bootstrap"
	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
)

// HandleLaunch handles the "launch" command.
func HandleLaunch(args Args) error {
	if runningAsRoot() {
		return fmt.Errorf("refusing to run as root; launch webllama as a regular user")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnvOverrides()

	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}

	if cfg.App.Dir == "" {
		return fmt.Errorf("no application directory configured (run: webllama setup)")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	logf := func(format string, v ...interface{}) {
		if !args.Quiet {
			fmt.Printf(format+"\n", v...)
		}
	}

	// Dependency readiness: daemon, health, model
	var progress ollama.PullCallback
	if !args.Quiet {
		progress = renderPullProgress
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
	})

	b := bootstrap.NewWithOptions(client, bootstrap.Options{
		Model:        cfg.Ollama.Model,
		Unit:         cfg.Ollama.Unit,
		Logf:         logf,
		PullProgress: progress,
	})

	if err := b.Run(context.Background()); err != nil {
		return err
	}

	// Virtual environment
	venv := python.NewVenv(cfg.VenvDir())
	if !venv.Exists() {
		logf("Creating virtual environment at %s", cfg.VenvDir())
		interp, err := python.FindInterpreter()
		if err != nil {
			return fmt.Errorf("python not found: %w", err)
		}
		if err := venv.Create(context.Background(), interp); err != nil {
			return fmt.Errorf("failed to create virtual environment: %w", err)
		}
		if reqs := cfg.RequirementsPath(); fileExists(reqs) {
			logf("Installing requirements from %s", reqs)
			var out *os.File
			if !args.Quiet {
				out = os.Stdout
			}
			if err := venv.PipInstall(context.Background(), reqs, out); err != nil {
				return fmt.Errorf("pip install failed: %w", err)
			}
		}
	}

	logf("")
	logf("Starting %s", cfg.App.Entrypoint)
	logf("Web app: %s", cfg.Endpoint())
	logf("")

	return runApp(cfg, venv)
}

// appCommand builds the argv and environment for the Python application.
// Entrypoints ending in .py run as scripts relative to the app directory;
// anything else runs as a module via -m.
func appCommand(cfg *config.Config, venv *python.Venv) (argv []string, env []string) {
	py := venv.Python()

	if filepath.Ext(cfg.App.Entrypoint) == ".py" {
		script := cfg.App.Entrypoint
		if !filepath.IsAbs(script) {
			script = filepath.Join(cfg.App.Dir, script)
		}
		argv = []string{py, script}
	} else {
		argv = []string{py, "-m", cfg.App.Entrypoint}
	}

	env = append(os.Environ(),
		"WEBLLAMA_OLLAMA_URL="+cfg.Ollama.URL,
		"WEBLLAMA_MODEL="+cfg.Ollama.Model,
		"WEBLLAMA_HOST="+cfg.Server.Host,
		"WEBLLAMA_PORT="+strconv.Itoa(cfg.Server.Port),
	)
	return argv, env
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
