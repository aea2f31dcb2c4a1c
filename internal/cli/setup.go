// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run wizard and setup commands for webllama.
//
// Command: setup
// Short:   First-run setup wizard
//
// Examples:
//   webllama setup                Run interactive setup wizard
//   webllama setup quick          Minimal setup with defaults
//   webllama setup venv           Rebuild the virtual environment only
//
// The setup wizard walks through:
//   1. System check (Python, Ollama binary, daemon)
//   2. Application directory and entrypoint
//   3. Model selection and optional download
//   4. Server port
//   5. Virtual environment creation and pip install
//   6. Optional desktop entry

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
)

// =============================================================================
// SETUP COMMAND HANDLER
// =============================================================================

// HandleSetup handles the "setup" command with various subcommands.
// Modes:
//   - setup: Full interactive wizard
//   - setup quick: Minimal setup with defaults
//   - setup venv: Rebuild the virtual environment only
//   - setup model: Model selection and download only
func HandleSetup(args Args) error {
	if runningAsRoot() {
		return fmt.Errorf("refusing to run setup as root")
	}

	switch args.Subcommand {
	case "":
		return runFullWizard()
	case "quick":
		return runQuickSetup()
	case "venv":
		return runVenvSetup()
	case "model":
		return runModelSetup(args.Model)
	default:
		return fmt.Errorf("unknown setup subcommand: %s", args.Subcommand)
	}
}

// =============================================================================
// FULL WIZARD
// =============================================================================

// runFullWizard runs the complete interactive setup wizard.
func runFullWizard() error {
	if err := RequiresTTY("run the setup wizard"); err != nil {
		return fmt.Errorf("%w (use: webllama setup quick)", err)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	fmt.Println()
	fmt.Println("webllama Setup Wizard")
	fmt.Println(strings.Repeat("=", 39))
	fmt.Println()

	// Step 1: System check
	fmt.Println("Step 1: System Check")
	fmt.Println(strings.Repeat("-", 20))

	interp, err := checkPythonWithSpinner()
	if err != nil {
		return err
	}
	checkOllamaWithSpinner(cfg)
	fmt.Println()

	// Step 2: Application
	fmt.Println("Step 2: Application")
	fmt.Println(strings.Repeat("-", 19))

	defaultDir := cfg.App.Dir
	if defaultDir == "" {
		if wd, err := os.Getwd(); err == nil {
			defaultDir = wd
		}
	}
	cfg.App.Dir = promptString("Application directory", defaultDir)
	cfg.App.Entrypoint = promptString("Entrypoint", cfg.App.Entrypoint)
	fmt.Println()

	// Step 3: Model
	fmt.Println("Step 3: Model Selection")
	fmt.Println(strings.Repeat("-", 23))
	cfg.Ollama.Model = promptString("Model", cfg.Ollama.Model)

	if promptYesNo("Download the model now if missing?", true) {
		if err := ensureModelWithProgress(cfg); err != nil {
			fmt.Printf("  Could not download model: %s\n", err)
			fmt.Println("  It will be pulled automatically on first launch.")
		}
	}
	fmt.Println()

	// Step 4: Server
	fmt.Println("Step 4: Web Server")
	fmt.Println(strings.Repeat("-", 18))
	portStr := promptString("Port", strconv.Itoa(cfg.Server.Port))
	if port, err := strconv.Atoi(portStr); err == nil && port >= 1 && port <= 65535 {
		cfg.Server.Port = port
	} else {
		fmt.Printf("  Invalid port %q, keeping %d\n", portStr, cfg.Server.Port)
	}
	fmt.Println()

	// Step 5: Virtual environment
	fmt.Println("Step 5: Virtual Environment")
	fmt.Println(strings.Repeat("-", 27))
	if err := buildVenv(cfg, interp); err != nil {
		return err
	}
	fmt.Println()

	// Step 6: Desktop entry
	if DesktopEntrySupported() {
		fmt.Println("Step 6: Desktop Entry")
		fmt.Println(strings.Repeat("-", 21))
		if promptYesNo("Install a desktop entry?", false) {
			if path, err := InstallDesktopEntry(cfg); err != nil {
				fmt.Printf("  Could not install desktop entry: %s\n", err)
			} else {
				fmt.Printf("  Installed %s\n", path)
			}
		}
		fmt.Println()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if err := MarkSetupComplete(); err != nil {
		return err
	}

	fmt.Println(strings.Repeat("=", 39))
	fmt.Println("Setup complete.")
	fmt.Printf("Config: %s\n", ConfigPath())
	fmt.Println()
	fmt.Println("Start the app with: webllama launch")
	fmt.Println()

	return nil
}

// =============================================================================
// QUICK SETUP
// =============================================================================

// runQuickSetup performs a non-interactive setup with defaults. The
// application directory defaults to the current working directory.
func runQuickSetup() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	if cfg.App.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not determine working directory: %w", err)
		}
		cfg.App.Dir = wd
	}

	fmt.Println("webllama quick setup")
	fmt.Println()

	interp, err := checkPythonWithSpinner()
	if err != nil {
		return err
	}

	if err := buildVenv(cfg, interp); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if err := MarkSetupComplete(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Config written to %s\n", ConfigPath())
	return nil
}

// =============================================================================
// PARTIAL SETUP MODES
// =============================================================================

// runVenvSetup rebuilds the virtual environment from the current config.
func runVenvSetup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Dir == "" {
		return fmt.Errorf("no application directory configured (run: webllama setup)")
	}

	interp, err := checkPythonWithSpinner()
	if err != nil {
		return err
	}

	return buildVenv(cfg, interp)
}

// runModelSetup downloads the configured (or given) model.
func runModelSetup(model string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if model != "" {
		cfg.Ollama.Model = model
	}
	return ensureModelWithProgress(cfg)
}

// =============================================================================
// SETUP STEPS
// =============================================================================

// checkPythonWithSpinner locates a Python interpreter and verifies its
// version.
func checkPythonWithSpinner() (string, error) {
	var interp string

	err := runWithSpinner("Checking Python", func() error {
		found, err := python.FindInterpreter()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := python.CheckVersion(ctx, found); err != nil {
			return err
		}
		interp = found
		return nil
	})
	if err != nil {
		fmt.Println("  Python 3.9 or newer is required.")
		return "", fmt.Errorf("python check failed: %w", err)
	}

	fmt.Printf("  Using %s\n", interp)
	return interp, nil
}

// checkOllamaWithSpinner reports Ollama daemon state. A stopped daemon is
// not fatal here: launch starts it on demand.
func checkOllamaWithSpinner(cfg *config.Config) bool {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Timeout: 3 * time.Second,
	})

	running := false
	runWithSpinner("Checking Ollama", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := client.CheckRunning(ctx); err != nil {
			return err
		}
		running = true
		return nil
	})

	if running {
		fmt.Println("  Ollama is running")
	} else {
		fmt.Println("  Ollama is not running (it will be started on launch)")
	}

	return running
}

// buildVenv creates the virtual environment and installs requirements.
// Both steps are no-ops when already satisfied.
func buildVenv(cfg *config.Config, interp string) error {
	venv := python.NewVenv(cfg.VenvDir())

	if venv.Exists() {
		fmt.Printf("  Virtual environment already present: %s\n", cfg.VenvDir())
	} else {
		err := runWithSpinner("Creating virtual environment", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			return venv.Create(ctx, interp)
		})
		if err != nil {
			return fmt.Errorf("failed to create virtual environment: %w", err)
		}
	}

	reqs := cfg.RequirementsPath()
	if _, err := os.Stat(reqs); os.IsNotExist(err) {
		fmt.Printf("  No requirements file at %s, skipping pip install\n", reqs)
		return nil
	}

	fmt.Println("  Installing requirements...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	if err := venv.PipInstall(ctx, reqs, os.Stdout); err != nil {
		return fmt.Errorf("pip install failed: %w", err)
	}

	return nil
}

// ensureModelWithProgress pulls the configured model when absent,
// rendering progress lines.
func ensureModelWithProgress(cfg *config.Config) error {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if ok, err := client.HasModel(ctx, cfg.Ollama.Model); err == nil && ok {
		fmt.Printf("  Model already available: %s\n", cfg.Ollama.Model)
		return nil
	}

	fmt.Printf("  Pulling %s...\n", cfg.Ollama.Model)
	return client.Pull(context.Background(), cfg.Ollama.Model, renderPullProgress)
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

var (
	inputReader = bufio.NewReader(os.Stdin)
	inputMutex  sync.Mutex
)

// setupPromptInput prints prompt and reads one trimmed line from stdin.
func setupPromptInput(prompt string) string {
	inputMutex.Lock()
	defer inputMutex.Unlock()

	fmt.Print(prompt)
	line, err := inputReader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// promptString asks for a value, falling back to defaultVal on empty input.
func promptString(prompt string, defaultVal string) string {
	if defaultVal != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, defaultVal)
	} else {
		prompt += ": "
	}
	if input := setupPromptInput(prompt); input != "" {
		return input
	}
	return defaultVal
}

// promptYesNo prompts for a yes/no answer.
func promptYesNo(prompt string, defaultYes bool) bool {
	suffix := "[Y/n]"
	if !defaultYes {
		suffix = "[y/N]"
	}

	input := setupPromptInput(fmt.Sprintf("%s %s: ", prompt, suffix))
	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes
	}

	return input == "y" || input == "yes"
}

// =============================================================================
// SPINNER HELPERS
// =============================================================================

// runWithSpinner runs fn with a text spinner on the prompt line.
func runWithSpinner(msg string, fn func() error) error {
	errChan := make(chan error, 1)
	go func() { errChan <- fn() }()

	frames := []rune{'|', '/', '-', '\\'}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	fmt.Printf("  %s... ", msg)
	for i := 0; ; i++ {
		select {
		case err := <-errChan:
			if err != nil {
				fmt.Println("X")
			} else {
				fmt.Println("Done")
			}
			return err
		case <-ticker.C:
			fmt.Printf("\r  %s... %c", msg, frames[i%len(frames)])
		}
	}
}

// =============================================================================
// FIRST-RUN DETECTION
// =============================================================================

// IsFirstRun reports whether setup has never been completed.
func IsFirstRun() bool {
	dir, err := config.ConfigDir()
	if err != nil {
		return true
	}

	_, markerErr := os.Stat(filepath.Join(dir, ".setup_complete"))
	return os.IsNotExist(markerErr)
}

// MarkSetupComplete records that setup finished.
func MarkSetupComplete() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	markerPath := filepath.Join(dir, ".setup_complete")
	return os.WriteFile(markerPath, []byte(time.Now().Format(time.RFC3339)), 0644)
}
