// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for webllama.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdLaunch Command = iota
	CmdStatus
	CmdDoctor
	CmdSetup
	CmdConfig
	CmdPull
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	JSON    bool // Output in JSON format

	// Command-specific
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `webllama - launcher for a local-LLM web application

Webllama installs and launches a Python web application backed by a local
Ollama model.

It provides:
  - Dependency bootstrap (Ollama daemon, model artifact, Python venv)
  - Health-checked launch of the web application
  - System diagnostics and status reporting

Usage:
  webllama                   Launch the web application (default)
  webllama launch            Same as above
  webllama status, s         Show system status
  webllama doctor [--fix]    System diagnostics
  webllama setup             First-run wizard
  webllama config [show|set|reset|path]  Configuration
  webllama pull [model]      Download a model ahead of time
  webllama version           Show version
  webllama help              Show this help

Config Commands:
  webllama config show              Show current configuration
  webllama config set KEY VALUE     Set a configuration value
  webllama config reset             Reset configuration to defaults
  webllama config path              Print the config file path

  Settable keys: server.host, server.port, ollama.url, ollama.model,
                 ollama.unit, app.dir, app.entrypoint

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --model NAME    Override configured model
  --json          Output in JSON format

Examples:
  webllama                            Bring dependencies up and launch
  webllama status                     Check daemon, model, and app state
  webllama doctor --fix               Diagnose and attempt auto-fixes
  webllama pull llama3.2:3b           Pre-download a model
  webllama config set server.port 5000
  webllama --model mistral:7b         Launch with a different model

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("webllama version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No arguments: launch the app
	if len(remaining) == 0 {
		return CmdLaunch, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "launch", "run", "start":
		return CmdLaunch, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "doctor":
		parseDoctorArgs(&parsedArgs, remaining)
		return CmdDoctor, parsedArgs

	case "setup":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSetup, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "pull":
		if len(remaining) > 0 {
			parsedArgs.Model = remaining[0]
		}
		return CmdPull, parsedArgs

	// -v is taken by --verbose, so only the long form reaches here
	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: show help rather than guessing
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			// --model=value form
			if v, ok := strings.CutPrefix(arg, "--model="); ok {
				parsedArgs.Model = v
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// parseDoctorArgs parses doctor command specific arguments.
func parseDoctorArgs(args *Args, remaining []string) {
	for _, arg := range remaining {
		if arg == "--fix" || arg == "fix" {
			args.Subcommand = "fix"
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// NOTE: HandleLaunch is implemented in launch.go
// NOTE: HandleStatus is implemented in status.go
// NOTE: HandleConfig is implemented in config.go
// NOTE: HandleSetup is implemented in setup.go
// NOTE: HandleDoctor is implemented in doctor.go
// NOTE: HandlePull is implemented in pull.go

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
