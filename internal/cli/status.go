// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for webllama.
//
// Command: status
// Short:   Display comprehensive system status
// Aliases: s
//
// Examples:
//   webllama status               Show system status
//   webllama s                    Show status (short alias)
//   webllama status --json        Status in JSON format
//
// Status Sections:
//   System:      Ollama install/daemon state, model, Python
//   Application: App directory, entrypoint, venv, endpoint
//   Config:      Config file path and presence

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
	"github.com/jeranaias/webllama/internal/service"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")). // White
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	valueGreenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")) // Green

	valueYellowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")) // Yellow

	valueRedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	valueDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim

	statusSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
// Displays Ollama, model, Python, and application status.
func HandleStatus(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnvOverrides()

	if args.JSON {
		data := StatusData{
			System: collectSystemInfo(cfg),
			App:    collectAppInfo(cfg),
			Config: collectConfigInfo(),
		}
		resp := NewJSONResponse("status", data)
		return resp.Print()
	}

	sys := collectSystemInfo(cfg)
	app := collectAppInfo(cfg)
	cfgInfo := collectConfigInfo()

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(statusTitleStyle.Render("webllama Status"))
	fmt.Println(statusSeparatorStyle.Render(separator))
	fmt.Println()

	fmt.Println(sectionStyle.Render("System"))
	printField("Ollama", renderInstallState(sys.Ollama, sys.OllamaPath))
	printField("Daemon", renderDaemonState(sys.Daemon, sys.ServiceScope))
	printField("Model", renderModelState(sys.Model, sys.ModelStatus))
	printField("Python", renderPythonState(sys.Python, sys.PythonVer))
	fmt.Println()

	fmt.Println(sectionStyle.Render("Application"))
	printField("Directory", renderOrDim(app.Dir, "not configured"))
	printField("Entrypoint", valueStyle.Render(app.Entrypoint))
	printField("Venv", renderVenvState(app.Venv))
	printField("Endpoint", valueStyle.Render(app.Endpoint))
	fmt.Println()

	fmt.Println(sectionStyle.Render("Config"))
	if cfgInfo.Exists {
		printField("File", valueStyle.Render(cfgInfo.Path))
	} else {
		printField("File", valueDimStyle.Render(cfgInfo.Path+" (defaults)"))
	}
	fmt.Println()

	return nil
}

func printField(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label), value)
}

func renderOrDim(value, fallback string) string {
	if value == "" {
		return valueDimStyle.Render(fallback)
	}
	return valueStyle.Render(value)
}

func renderInstallState(state, path string) string {
	if state == "installed" {
		if path != "" {
			return valueGreenStyle.Render("installed") + valueDimStyle.Render(" ("+path+")")
		}
		return valueGreenStyle.Render("installed")
	}
	return valueRedStyle.Render("not installed")
}

func renderDaemonState(state, scope string) string {
	if state == "running" {
		if scope != "" {
			return valueGreenStyle.Render("running") + valueDimStyle.Render(" (systemd "+scope+")")
		}
		return valueGreenStyle.Render("running")
	}
	return valueRedStyle.Render("not running")
}

func renderModelState(model, status string) string {
	switch status {
	case "available":
		return valueStyle.Render(model) + " " + valueGreenStyle.Render("[available]")
	case "not_downloaded":
		return valueStyle.Render(model) + " " + valueYellowStyle.Render("[not downloaded]")
	default:
		return valueStyle.Render(model) + " " + valueDimStyle.Render("[unknown]")
	}
}

func renderPythonState(state, version string) string {
	if state == "installed" {
		return valueGreenStyle.Render("installed") + valueDimStyle.Render(" ("+version+")")
	}
	return valueRedStyle.Render("not found")
}

func renderVenvState(state string) string {
	if state == "present" {
		return valueGreenStyle.Render("present")
	}
	return valueYellowStyle.Render("missing")
}

// =============================================================================
// DATA COLLECTION
// =============================================================================

// collectSystemInfo gathers Ollama, daemon, model, and Python state.
func collectSystemInfo(cfg *config.Config) StatusSystemInfo {
	info := StatusSystemInfo{
		Model: cfg.Ollama.Model,
	}

	// Ollama binary
	if path, err := ollama.FindExecutable(); err == nil {
		info.Ollama = "installed"
		info.OllamaPath = path
	} else {
		info.Ollama = "not_installed"
	}

	// Daemon state
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Timeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		info.Daemon = "not_running"
	} else {
		info.Daemon = "running"
		// Report which systemd scope manages the unit, if any
		mgr := service.New()
		if mgr.Available() {
			if scope, ok := mgr.ResolveScope(ctx, cfg.Ollama.Unit); ok {
				info.ServiceScope = string(scope)
			}
		}
	}

	// Model availability
	if info.Daemon == "running" {
		if ok, err := client.HasModel(ctx, cfg.Ollama.Model); err != nil {
			info.ModelStatus = "unknown"
		} else if ok {
			info.ModelStatus = "available"
		} else {
			info.ModelStatus = "not_downloaded"
		}
	} else {
		info.ModelStatus = "unknown"
	}

	// Python
	if interp, err := python.FindInterpreter(); err == nil {
		info.Python = "installed"
		if major, minor, verr := python.Version(ctx, interp); verr == nil {
			info.PythonVer = fmt.Sprintf("%d.%d", major, minor)
		}
	} else {
		info.Python = "not_found"
	}

	return info
}

// collectAppInfo gathers application configuration state.
func collectAppInfo(cfg *config.Config) StatusAppInfo {
	info := StatusAppInfo{
		Dir:        cfg.App.Dir,
		Entrypoint: cfg.App.Entrypoint,
		Endpoint:   cfg.Endpoint(),
	}

	if python.NewVenv(cfg.VenvDir()).Exists() {
		info.Venv = "present"
	} else {
		info.Venv = "missing"
	}

	return info
}

// collectConfigInfo gathers config file state.
func collectConfigInfo() StatusConfigInfo {
	info := StatusConfigInfo{}

	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return info
	}
	info.Path = tomlPath
	if _, err := os.Stat(tomlPath); err == nil {
		info.Exists = true
		return info
	}

	// Fall back to the JSON config if present
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			info.Path = jsonPath
			info.Exists = true
		}
	}

	return info
}
