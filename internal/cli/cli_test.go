// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for argument parsing and the exit-code taxonomy.
package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jeranaias/webllama/internal/bootstrap"
)

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParse_DefaultIsLaunch(t *testing.T) {
	cmd, _ := parse(nil)
	if cmd != CmdLaunch {
		t.Errorf("parse(nil) = %v, want CmdLaunch", cmd)
	}
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"launch", []string{"launch"}, CmdLaunch},
		{"run alias", []string{"run"}, CmdLaunch},
		{"start alias", []string{"start"}, CmdLaunch},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"doctor", []string{"doctor"}, CmdDoctor},
		{"setup", []string{"setup"}, CmdSetup},
		{"config", []string{"config"}, CmdConfig},
		{"pull", []string{"pull"}, CmdPull},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"--help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
		{"case insensitive", []string{"STATUS"}, CmdStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, _ := parse(tc.argv)
			if cmd != tc.want {
				t.Errorf("parse(%v) = %v, want %v", tc.argv, cmd, tc.want)
			}
		})
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parse([]string{"-q", "--json", "status"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v, want CmdStatus", cmd)
	}
	if !args.Quiet {
		t.Error("Quiet should be true")
	}
	if !args.JSON {
		t.Error("JSON should be true")
	}
	if args.Verbose {
		t.Error("Verbose should be false")
	}
}

func TestParse_ShortVIsVerbose(t *testing.T) {
	// -v belongs to --verbose; the version command only has a long form
	cmd, args := parse([]string{"-v"})
	if cmd != CmdLaunch {
		t.Errorf("cmd = %v, want CmdLaunch", cmd)
	}
	if !args.Verbose {
		t.Error("Verbose should be true")
	}

	if cmd, _ := parse([]string{"--version"}); cmd != CmdVersion {
		t.Errorf("parse(--version) = %v, want CmdVersion", cmd)
	}
}

func TestParse_ModelFlag(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"separate value", []string{"--model", "mistral:7b"}, "mistral:7b"},
		{"equals form", []string{"--model=mistral:7b"}, "mistral:7b"},
		{"flag after command", []string{"launch", "--model", "llama3.2:3b"}, "llama3.2:3b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, args := parse(tc.argv)
			if args.Model != tc.want {
				t.Errorf("Model = %q, want %q", args.Model, tc.want)
			}
		})
	}
}

func TestParse_PullModel(t *testing.T) {
	cmd, args := parse([]string{"pull", "llama3.2:3b"})
	if cmd != CmdPull {
		t.Fatalf("cmd = %v, want CmdPull", cmd)
	}
	if args.Model != "llama3.2:3b" {
		t.Errorf("Model = %q, want llama3.2:3b", args.Model)
	}
}

func TestParse_ConfigSet(t *testing.T) {
	cmd, args := parse([]string{"config", "set", "server.port", "5000"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want set", args.Subcommand)
	}
	if args.ConfigKey != "server.port" {
		t.Errorf("ConfigKey = %q, want server.port", args.ConfigKey)
	}
	if args.ConfigVal != "5000" {
		t.Errorf("ConfigVal = %q, want 5000", args.ConfigVal)
	}
}

func TestParse_DoctorFix(t *testing.T) {
	for _, argv := range [][]string{
		{"doctor", "--fix"},
		{"doctor", "fix"},
	} {
		_, args := parse(argv)
		if args.Subcommand != "fix" {
			t.Errorf("parse(%v) Subcommand = %q, want fix", argv, args.Subcommand)
		}
	}
}

func TestParse_SetupSubcommand(t *testing.T) {
	_, args := parse([]string{"setup", "venv"})
	if args.Subcommand != "venv" {
		t.Errorf("Subcommand = %q, want venv", args.Subcommand)
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"validation error", NewValidationError("port", "99999", "out of range"), ExitUsageError},
		{"not found error", NewNotFoundError("model", "llama3.2:3b"), ExitNotFoundError},
		{"config error", errors.New("failed to load config file"), ExitConfigError},
		{"timeout error", errors.New("request timed out"), ExitTimeoutError},
		{"deadline error", errors.New("context deadline exceeded"), ExitTimeoutError},
		{"health window exhausted", &bootstrap.UnreachableError{URL: "http://127.0.0.1:11434", Window: 30 * time.Second}, ExitGeneralError},
		{"wrapped health failure", fmt.Errorf("launch: %w", &bootstrap.UnreachableError{URL: "http://127.0.0.1:11434", Window: 30 * time.Second}), ExitGeneralError},
		{"unreachable daemon text", errors.New("daemon unreachable at http://127.0.0.1:11434"), ExitNetworkError},
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connection refused"), ExitNetworkError},
		{"generic error", errors.New("something broke"), ExitGeneralError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetExitCode(tc.err); got != tc.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

type hintedError struct{ msg string }

func (e *hintedError) Error() string       { return e.msg }
func (e *hintedError) Remediation() string { return "try turning it off and on again" }

func TestRemediation(t *testing.T) {
	if got := remediation(errors.New("plain")); got != "" {
		t.Errorf("remediation(plain error) = %q, want empty", got)
	}

	// Guidance survives wrapping
	err := fmt.Errorf("launch failed: %w", &hintedError{msg: "daemon down"})
	if got := remediation(err); got == "" {
		t.Error("remediation(wrapped hinted error) should return guidance")
	}
}

// =============================================================================
// FIX COMMAND WHITELIST TESTS (doctor.go)
// =============================================================================

func TestIsAllowedFixCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		allowed bool
	}{
		{"ollama serve", "ollama serve", true},
		{"brew install", "brew install ollama", true},
		{"pull valid model", "ollama pull llama3.2:3b", true},
		{"pull injection attempt", "ollama pull foo; rm -rf /", false},
		{"config reset", "webllama config reset", true},
		{"arbitrary command", "rm -rf /", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := isAllowedFixCommand(tc.cmd)
			if (got != nil) != tc.allowed {
				t.Errorf("isAllowedFixCommand(%q) allowed = %v, want %v", tc.cmd, got != nil, tc.allowed)
			}
		})
	}
}

// =============================================================================
// RENDER HELPERS (styles.go)
// =============================================================================

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ok", "[OK]"},
		{"pass", "[OK]"},
		{"fail", "[FAIL]"},
		{"warning", "[WARN]"},
		{"weird", "[WEIRD]"},
	}

	for _, tc := range tests {
		got := RenderStatus(tc.in)
		if got != tc.want {
			// Styled output may carry escape codes in a TTY; tests run
			// without one so plain text is expected
			t.Errorf("RenderStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
