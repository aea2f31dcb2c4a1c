// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for webllama.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display current configuration
//   set <key> <value>   Set a configuration value
//   reset               Reset to default configuration
//   path                Show configuration file path
//
// Examples:
//   webllama config                      Show current config (default)
//   webllama config show --json          Config in JSON format
//   webllama config set ollama.model llama3.2:3b
//   webllama config set server.port 8081
//   webllama config set app.dir ~/myapp
//   webllama config reset                Reset to defaults
//   webllama config path                 Show config file location
//
// Configuration Keys:
//   server.host         Web app bind host
//   server.port         Web app port
//   ollama.url          Ollama server URL
//   ollama.model        Model to ensure before launch
//   ollama.unit         systemd unit name for the Ollama daemon
//   app.dir             Python application directory
//   app.entrypoint      Application entry script
//   app.venv_dir        Virtual environment directory
//   app.requirements    Requirements file path

package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/webllama/internal/config"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	configTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	configSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")). // White
				MarginTop(1)

	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(20)

	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")) // Green

	configDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim

	configSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// CONFIG WRAPPER FUNCTIONS
// =============================================================================

// ConfigPath returns the path to the primary (TOML) config file.
func ConfigPath() string {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return path
}

// LoadConfig loads the configuration, falling back to defaults when no
// config file exists.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig dispatches the "config" subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return handleConfigShowJSON()
		}
		return handleConfigShow()
	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)
	case "reset":
		return handleConfigReset()
	case "path":
		if args.JSON {
			return handleConfigPathJSON()
		}
		return handleConfigPath()
	}
	return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
}

// handleConfigShowJSON outputs configuration in JSON format.
func handleConfigShowJSON() error {
	cfg, err := LoadConfig()
	if err != nil {
		cfg = config.Default()
	}

	data := ConfigShowData{
		Server: ConfigServerInfo{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		},
		Ollama: ConfigOllamaInfo{
			URL:   cfg.Ollama.URL,
			Model: cfg.Ollama.Model,
			Unit:  cfg.Ollama.Unit,
		},
		App: ConfigAppInfo{
			Dir:        cfg.App.Dir,
			Entrypoint: cfg.App.Entrypoint,
			VenvDir:    cfg.VenvDir(),
		},
		Path: ConfigPath(),
	}

	resp := NewJSONResponse("config show", data)
	return resp.Print()
}

// handleConfigPathJSON reports the config file location and whether the
// file exists yet.
func handleConfigPathJSON() error {
	path := ConfigPath()
	_, err := os.Stat(path)

	return NewJSONResponse("config path", map[string]interface{}{
		"path":   path,
		"exists": !os.IsNotExist(err),
	}).Print()
}

// handleConfigShow displays the current configuration.
func handleConfigShow() error {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = config.Default()
	}

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(configTitleStyle.Render("webllama Configuration"))
	fmt.Println(SeparatorStyle.Render(separator))
	fmt.Println()

	fmt.Println(configSectionStyle.Render("[server]"))
	printConfigKV("host:", cfg.Server.Host)
	printConfigKV("port:", strconv.Itoa(cfg.Server.Port))
	fmt.Println()

	fmt.Println(configSectionStyle.Render("[ollama]"))
	printConfigKV("url:", cfg.Ollama.URL)
	printConfigKV("model:", cfg.Ollama.Model)
	printConfigKV("unit:", cfg.Ollama.Unit)
	fmt.Println()

	fmt.Println(configSectionStyle.Render("[app]"))
	if cfg.App.Dir == "" {
		fmt.Printf("  %s%s\n",
			configKeyStyle.Render("dir:"),
			configDimStyle.Render("(not configured)"))
	} else {
		printConfigKV("dir:", cfg.App.Dir)
	}
	printConfigKV("entrypoint:", cfg.App.Entrypoint)
	printConfigKV("venv_dir:", cfg.VenvDir())
	printConfigKV("requirements:", cfg.RequirementsPath())
	fmt.Println()

	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))
	fmt.Println()

	return nil
}

func printConfigKV(key, value string) {
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render(key),
		configValueStyle.Render(value))
}

// handleConfigSet sets a configuration value.
func handleConfigSet(key, value string) error {
	if key == "" {
		return fmt.Errorf("no config key provided\nUsage: webllama config set <key> <value>")
	}
	if value == "" {
		return fmt.Errorf("no config value provided\nUsage: webllama config set %s <value>", key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = config.Default()
	}

	// Accept both dot and underscore separators
	key = strings.ToLower(key)
	keyNorm := strings.ReplaceAll(key, "_", ".")

	switch keyNorm {
	case "server.host", "host":
		cfg.Server.Host = value

	case "server.port", "port":
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %s (must be 1-65535)", value)
		}
		cfg.Server.Port = port

	case "ollama.url":
		cfg.Ollama.URL = value

	case "ollama.model", "model":
		cfg.Ollama.Model = value

	case "ollama.unit", "unit":
		cfg.Ollama.Unit = value

	case "app.dir":
		cfg.App.Dir = value

	case "app.entrypoint", "entrypoint":
		cfg.App.Entrypoint = value

	case "app.venv.dir", "app.venvdir":
		cfg.App.VenvDir = value

	case "app.requirements", "requirements":
		cfg.App.Requirements = value

	default:
		return fmt.Errorf("unknown config key: %s\n\nValid keys:\n"+
			"  server.host        - Web app bind host\n"+
			"  server.port        - Web app port\n"+
			"  ollama.url         - Ollama server URL\n"+
			"  ollama.model       - Model to ensure before launch\n"+
			"  ollama.unit        - systemd unit name for the daemon\n"+
			"  app.dir            - Python application directory\n"+
			"  app.entrypoint     - Application entry script\n"+
			"  app.venv_dir       - Virtual environment directory\n"+
			"  app.requirements   - Requirements file path", key)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration value: %w", err)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s %s = %s\n",
		configSuccessStyle.Render("[OK]"),
		keyNorm,
		value)

	return nil
}

// handleConfigReset resets configuration to defaults.
func handleConfigReset() error {
	cfg := config.Default()

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Configuration reset to defaults\n", configSuccessStyle.Render("[OK]"))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))

	return nil
}

// handleConfigPath shows the config file path.
func handleConfigPath() error {
	path := ConfigPath()
	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "%s (file does not exist - will be created on first use)\n",
			configDimStyle.Render("Note"))
	}

	return nil
}
