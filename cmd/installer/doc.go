// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package main implements the webllama interactive installer - a guided setup
for the local-LLM web application host.

# Overview

The installer is a terminal application built with Bubble Tea that walks a
user through the complete webllama setup. It provides an interactive TUI
mode and a text-based mode for copy/paste friendly installation. Running as
root aborts immediately with status 1.

# Features

  - System checks (OS, Python interpreter and version, Ollama, disk space)
  - Ollama daemon startup with health verification
  - Model selection and download (skipped when the model is present)
  - Python virtual environment creation and pip install
  - Configuration file generation (~/.webllama/config.toml)
  - Launcher binary install into ~/.local/bin
  - Desktop entry creation on Linux

Every step is idempotent: re-running the installer on a satisfied host
performs no redundant work.

# Command Line Options

	--text, -t     Run in text mode (copy/paste friendly, no TUI)
	--help, -h     Show help information
	--version, -v  Show version number

# Files Created

	~/.webllama/
	    config.toml      # Main configuration file

	~/.local/bin/
	    webllama         # Launcher binary (webllama.exe on Windows)

	~/.local/share/applications/
	    webllama.desktop # Desktop entry (Linux only)

# Architecture

  - main.go: Entry point, argument parsing, root refusal, text mode flow
  - installer.go: TUI phase machine, checks, install steps, binary install
  - welcome.go: Post-install command tour
  - disk_unix.go / disk_windows.go: Free disk space probes

The TUI uses a phase-based state machine:

  - PhaseWelcome: Introduction
  - PhaseSystemCheck: Verifies host requirements
  - PhaseOllamaSetup: Guides Ollama installation when missing
  - PhaseModelSelect: Language model selection
  - PhaseInstall: Daemon, model, venv, config, launcher, desktop entry
  - PhaseComplete: Summary with an optional command tour
*/
package main
