// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// webllama.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - JSONResponse: Machine-readable output envelope for --json mode
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdLaunch:
//	    return cli.HandleLaunch(args)
//	case cli.CmdStatus:
//	    return cli.HandleStatus(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - launch: Bring up the Ollama daemon and model, then run the web app
//   - status: System status display
//   - doctor: Health checks and diagnostics
//   - setup: First-run wizard (venv, model, config)
//   - config: Configuration management
//   - pull: Model download
//
// All informational commands support the --json flag for scripting.
package cli
