// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main provides the webllama installer - a guided setup for the
// local-LLM web application host.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/webllama/internal/bootstrap"
	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
)

const version = "1.0.0"

func main() {
	// Check for --text flag for copy/paste friendly output
	for _, arg := range os.Args[1:] {
		if arg == "--text" || arg == "-t" || arg == "--simple" {
			if refuseRoot() {
				os.Exit(1)
			}
			runTextInstaller()
			return
		}
		if arg == "--help" || arg == "-h" {
			printHelp()
			return
		}
		if arg == "--version" || arg == "-v" {
			fmt.Printf("webllama installer v%s\n", version)
			return
		}
	}

	if refuseRoot() {
		os.Exit(1)
	}

	// Check if running in a terminal
	if !isTerminal() {
		fmt.Println("The webllama installer requires an interactive terminal.")
		fmt.Println("Run with --text for a simple text-based install.")
		os.Exit(1)
	}

	// Create and run the TUI installer
	// Mouse capture disabled to allow terminal text selection/copy
	p := tea.NewProgram(
		NewInstaller(),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running installer: %v\n", err)
		os.Exit(1)
	}
}

// refuseRoot reports whether the installer was started as root. Installing
// as root would leave the venv, model cache, and config owned by the wrong
// user, so the installer stops before doing anything.
func refuseRoot() bool {
	if os.Geteuid() == 0 {
		fmt.Fprintln(os.Stderr, "Do not run the webllama installer as root.")
		fmt.Fprintln(os.Stderr, "Run it as the user who will use the application.")
		return true
	}
	return false
}

// printHelp shows usage information
func printHelp() {
	fmt.Println(`webllama installer v` + version + `

Usage: webllama-installer [OPTIONS]

Options:
  --text, -t     Run in text mode (copy/paste friendly)
  --help, -h     Show this help
  --version, -v  Show version

The default mode is an interactive TUI installer.
Use --text for a simple text-based installer that's easy to copy/paste.`)
}

// isTerminal reports whether stdin looks interactive. Windows console
// detection through stat is unreliable, so assume yes there.
func isTerminal() bool {
	if runtime.GOOS == "windows" {
		return true
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// =============================================================================
// TEXT MODE INSTALLER (Copy/Paste Friendly)
// =============================================================================

func runTextInstaller() {
	reader := bufio.NewReader(os.Stdin)

	// Header
	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println("                             WEBLLAMA INSTALLER")
	fmt.Println("              A local-LLM web application, installed in minutes")
	fmt.Println("================================================================================")
	fmt.Println()

	// Welcome
	fmt.Println("This installer will:")
	fmt.Println("  [1] Check your system requirements")
	fmt.Println("  [2] Bring up the Ollama daemon")
	fmt.Println("  [3] Download the language model")
	fmt.Println("  [4] Create the Python environment")
	fmt.Println("  [5] Write your configuration and launcher")
	fmt.Println()
	fmt.Print("Press Enter to continue (or 'q' to quit): ")
	input, _ := reader.ReadString('\n')
	if strings.TrimSpace(input) == "q" {
		fmt.Println("Installation cancelled.")
		return
	}

	fmt.Println()
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println("                           SYSTEM REQUIREMENTS CHECK")
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println()

	ctx := context.Background()

	// OS Check
	fmt.Printf("  [OK] Operating System: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// Python Check
	pythonOK := false
	interp, err := python.FindInterpreter()
	if err != nil {
		fmt.Println("  [!!] Python: Not found")
		fmt.Println("       -> Install Python 3.9 or newer")
	} else {
		major, minor, verr := python.Version(ctx, interp)
		if verr != nil {
			fmt.Printf("  [!!] Python: %s (version unknown)\n", interp)
		} else if major < python.MinMajor || (major == python.MinMajor && minor < python.MinMinor) {
			fmt.Printf("  [!!] Python: %d.%d (need %d.%d or newer)\n", major, minor, python.MinMajor, python.MinMinor)
		} else {
			fmt.Printf("  [OK] Python: %d.%d (%s)\n", major, minor, interp)
			pythonOK = true
		}
	}

	// Ollama Check
	ollamaInstalled := false
	client := ollama.NewClient()
	if _, err := ollama.FindExecutable(); err != nil {
		fmt.Println("  [!!] Ollama: Not installed")
		fmt.Println("       -> Visit https://ollama.com to install")
	} else {
		ollamaInstalled = true
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.CheckRunning(checkCtx); err != nil {
			fmt.Println("  [OK] Ollama: Installed (daemon will be started)")
		} else {
			fmt.Println("  [OK] Ollama: Running")
		}
		cancel()
	}

	// Disk Check
	home, _ := os.UserHomeDir()
	if free, err := getFreeDiskSpace(home); err == nil {
		if free < minDiskBytes {
			fmt.Printf("  [!!] Disk Space: %s free (models need several GB)\n", ollama.FormatBytes(int64(free)))
		} else {
			fmt.Printf("  [OK] Disk Space: %s free\n", ollama.FormatBytes(int64(free)))
		}
	} else {
		fmt.Println("  [!!] Disk Space: Could not check")
	}

	fmt.Println()

	if !ollamaInstalled {
		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Println("                              OLLAMA SETUP")
		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Println()
		fmt.Println("Ollama is required to run the local language model.")
		fmt.Println()
		fmt.Println("Please install Ollama from: https://ollama.com")
		fmt.Println()
		fmt.Print("Press Enter when Ollama is installed (or 's' to skip): ")
		input, _ := reader.ReadString('\n')
		if strings.TrimSpace(input) == "s" {
			fmt.Println("Skipping Ollama setup...")
		} else if _, err := ollama.FindExecutable(); err == nil {
			ollamaInstalled = true
		}
		fmt.Println()
	}

	// Daemon + health
	if ollamaInstalled {
		fmt.Println("Starting the Ollama daemon...")
		b := bootstrap.NewWithOptions(client, bootstrap.Options{
			Logf: func(format string, args ...any) {
				fmt.Printf("  "+format+"\n", args...)
			},
		})
		if err := b.EnsureDaemon(ctx); err != nil {
			fmt.Printf("  [!!] Could not start the daemon: %v\n", err)
			ollamaInstalled = false
		} else if err := b.WaitHealthy(ctx); err != nil {
			fmt.Printf("  [!!] %v\n", err)
			ollamaInstalled = false
		} else {
			fmt.Println("  [OK] Daemon is healthy")
		}
		fmt.Println()
	}

	// Model Selection
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println("                          CHOOSE YOUR LANGUAGE MODEL")
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println()
	fmt.Println("  [1] llama3.2:3b   (Recommended - fast, low memory)")
	fmt.Println("  [2] llama3.1:8b   (Better quality)")
	fmt.Println("  [3] qwen2.5:7b    (Strong general model)")
	fmt.Println("  [4] mistral:7b    (Good balance)")
	fmt.Println("  [5] Skip model download")
	fmt.Println()
	fmt.Print("Enter choice [1-5]: ")
	input, _ = reader.ReadString('\n')
	choice := strings.TrimSpace(input)

	var modelName string
	switch choice {
	case "1", "":
		modelName = "llama3.2:3b"
	case "2":
		modelName = "llama3.1:8b"
	case "3":
		modelName = "qwen2.5:7b"
	case "4":
		modelName = "mistral:7b"
	case "5":
		modelName = ""
	default:
		modelName = "llama3.2:3b"
	}

	if modelName != "" && ollamaInstalled {
		present, _ := client.HasModel(ctx, modelName)
		if present {
			fmt.Printf("\n%s is already present, skipping download.\n", modelName)
		} else {
			fmt.Printf("\nDownloading %s... (this may take a few minutes)\n", modelName)
			err := client.Pull(ctx, modelName, func(p ollama.PullProgress) {
				if p.Total > 0 {
					fmt.Printf("\r  %-20s %5.1f%%", p.Status, p.Percent())
				}
			})
			fmt.Println()
			if err != nil {
				fmt.Printf("  [!!] Download failed: %v\n", err)
			}
		}
	}

	// Application environment
	fmt.Println()
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println("                          APPLICATION ENVIRONMENT")
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println()

	cwd, _ := os.Getwd()
	fmt.Printf("Web app directory [%s]: ", cwd)
	input, _ = reader.ReadString('\n')
	appDir := strings.TrimSpace(input)
	if appDir == "" {
		appDir = cwd
	}

	fmt.Print("Entrypoint (script or module) [app.py]: ")
	input, _ = reader.ReadString('\n')
	entrypoint := strings.TrimSpace(input)
	if entrypoint == "" {
		entrypoint = "app.py"
	}

	fmt.Print("Web app port [8080]: ")
	input, _ = reader.ReadString('\n')
	port := 8080
	if s := strings.TrimSpace(input); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 && p < 65536 {
			port = p
		}
	}

	if pythonOK {
		venv := python.NewVenv(filepath.Join(appDir, ".venv"))
		if venv.Exists() {
			fmt.Println("\n  [OK] Virtual environment already exists")
		} else {
			fmt.Println("\nCreating virtual environment...")
			if err := venv.Create(ctx, interp); err != nil {
				fmt.Printf("  [!!] venv creation failed: %v\n", err)
			} else {
				fmt.Println("  [OK] Virtual environment created")
				requirements := filepath.Join(appDir, "requirements.txt")
				if _, err := os.Stat(requirements); err == nil {
					fmt.Println("Installing Python dependencies...")
					if err := venv.PipInstall(ctx, requirements, os.Stdout); err != nil {
						fmt.Printf("  [!!] pip install failed: %v\n", err)
					} else {
						fmt.Println("  [OK] Dependencies installed")
					}
				}
			}
		}
	}

	fmt.Println()
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println("                            CREATING CONFIGURATION")
	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Println()

	cfg := config.Default()
	cfg.Server.Port = port
	cfg.App.Dir = appDir
	cfg.App.Entrypoint = entrypoint
	if modelName != "" {
		cfg.Ollama.Model = modelName
	}

	cfgPath, _ := config.ConfigPathTOML()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("  [!!] Config already exists: %s\n", cfgPath)
	} else if err := config.Save(cfg); err != nil {
		fmt.Printf("  [!!] Could not write config: %v\n", err)
	} else {
		fmt.Printf("  [OK] Created config: %s\n", cfgPath)
	}

	// Launcher binary
	installPath := filepath.Join(home, ".local", "bin")
	if launcherInstalled(installPath) {
		fmt.Println("  [OK] Launcher already installed")
	} else if err := installLauncherBinary(installPath); err != nil {
		fmt.Printf("  [!!] Could not install the launcher: %v\n", err)
		fmt.Println("       -> Download it from https://github.com/jeranaias/webllama/releases")
	} else {
		fmt.Printf("  [OK] Installed launcher: %s\n", filepath.Join(installPath, launcherName()))
	}

	// Desktop entry (Linux only)
	if runtime.GOOS == "linux" {
		fmt.Print("\nCreate a desktop entry? [Y/n]: ")
		input, _ = reader.ReadString('\n')
		if ans := strings.ToLower(strings.TrimSpace(input)); ans == "" || ans == "y" || ans == "yes" {
			if err := writeDesktopEntry(installPath, cfg); err != nil {
				fmt.Printf("  [!!] Could not write desktop entry: %v\n", err)
			} else {
				fmt.Println("  [OK] Desktop entry created")
			}
		}
	}

	// Done!
	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println("                         INSTALLATION COMPLETE!")
	fmt.Println("================================================================================")
	fmt.Println()
	fmt.Println("What you got:")
	fmt.Printf("  * Local web app        - http://127.0.0.1:%d\n", port)
	fmt.Println("  * Private inference    - Everything stays on this machine")
	fmt.Println("  * Health-checked boot  - The daemon is verified before launch")
	fmt.Println("  * Idempotent installs  - Re-run anytime, nothing is redone")
	fmt.Println()
	fmt.Println("To start the web app, run:")
	fmt.Println()
	fmt.Println("    webllama")
	fmt.Println()
	fmt.Println("Quick tips:")
	fmt.Println("    webllama status     - Check daemon, model, and app state")
	fmt.Println("    webllama doctor     - Diagnose problems")
	fmt.Println("    webllama config     - Inspect or change settings")
	fmt.Println()
}
