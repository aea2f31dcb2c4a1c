// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for webllama.
//
// Command: doctor [subcommand]
// Short:   Run system health checks and diagnostics
//
// Subcommands:
//   (default)           Run all health checks
//   fix                 Run checks and attempt auto-fixes
//
// Examples:
//   webllama doctor              Run all health checks
//   webllama doctor --json       Health check results in JSON
//   webllama doctor fix          Run checks and attempt auto-fixes
//
// Health Checks Performed:
//   1. Not Root           - Refuses to diagnose a root environment
//   2. Python Installed   - Checks for a usable Python interpreter
//   3. Ollama Installed   - Checks if the Ollama binary is available
//   4. Ollama Running     - Checks if the Ollama server is responding
//   5. Model Available    - Checks if the configured model is downloaded
//   6. Venv Present       - Checks the application virtual environment
//   7. Config Valid       - Validates the configuration file
//   8. Data Dir Writable  - Checks ~/.webllama permissions
//
// Exit Codes:
//   0   All checks passed
//   1   One or more checks failed

package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/python"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	doctorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	checkMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus is the outcome of one health check.
type CheckStatus int

const (
	CheckPass CheckStatus = iota
	CheckWarn
	CheckFail
)

func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	}
	return "Unknown"
}

// Symbol returns the styled indicator for the status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	}
	return "?"
}

// HealthCheck is one check result with an optional suggested fix.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

// Render formats the check for the human report.
func (c *HealthCheck) Render() string {
	result := c.Status.Symbol() + " " + checkMsgStyle.Render(c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// allowedFixCommands defines a whitelist of permitted fix commands.
// Each key is a fix pattern, and the value is the safe command to execute.
// This prevents command injection by only allowing predefined commands.
var allowedFixCommands = map[string][]string{
	"brew install ollama": {"brew", "install", "ollama"},
	"ollama serve":        {"ollama", "serve"},

	// Ollama install script (Linux/macOS)
	"curl -fsSL https://ollama.ai/install.sh | sh": {"sh", "-c", "curl -fsSL https://ollama.ai/install.sh | sh"},
}

// isAllowedFixCommand checks if a fix command matches a whitelisted pattern.
// Returns the safe command arguments if allowed, nil otherwise.
func isAllowedFixCommand(fixCmd string) []string {
	normalized := strings.TrimSpace(fixCmd)

	if args, ok := allowedFixCommands[normalized]; ok {
		return args
	}

	// ollama pull with a dynamic model name. Model names are restricted
	// to alphanumerics plus - _ : . to rule out injection.
	if strings.HasPrefix(normalized, "ollama pull ") {
		modelName := strings.TrimSpace(strings.TrimPrefix(normalized, "ollama pull "))
		for _, ch := range modelName {
			if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
				(ch >= '0' && ch <= '9') || ch == '-' || ch == '_' ||
				ch == ':' || ch == '.') {
				return nil
			}
		}
		return []string{"ollama", "pull", modelName}
	}

	if normalized == "webllama config reset" {
		return []string{"webllama", "config", "reset"}
	}

	return nil
}

// TryFix attempts to automatically fix the issue if possible.
// Uses a whitelist approach to prevent command injection vulnerabilities.
func (c *HealthCheck) TryFix() error {
	if c.Fix == "" || c.Status == CheckPass {
		return nil
	}

	fixCmd := c.Fix
	if strings.HasPrefix(fixCmd, "Run: ") {
		fixCmd = strings.TrimPrefix(fixCmd, "Run: ")
	} else {
		// Not an auto-fixable command (manual instructions only)
		return fmt.Errorf("manual fix required: %s", c.Fix)
	}

	fixCmd = strings.TrimSpace(fixCmd)

	args := isAllowedFixCommand(fixCmd)
	if args == nil {
		return fmt.Errorf("fix command not permitted by security policy: %s", fixCmd)
	}

	fmt.Printf("  Attempting fix: %s\n", fixCmd)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("fix failed: %w", err)
	}

	return nil
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command.
// Runs system health checks and optionally attempts auto-fixes.
func HandleDoctor(args Args) error {
	checks := runAllChecks()

	passed := 0
	warned := 0
	failed := 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	if args.JSON {
		return handleDoctorJSON(checks, passed, warned, failed)
	}

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(doctorTitleStyle.Render("webllama Doctor"))
	fmt.Println(SeparatorStyle.Render(separator))
	fmt.Println()

	for _, check := range checks {
		fmt.Println(check.Render())
	}

	fmt.Println()
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))

	summaryParts := []string{
		fmt.Sprintf("%d passed", passed),
	}
	if warned > 0 {
		summaryParts = append(summaryParts, checkWarnStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summaryParts = append(summaryParts, checkFailStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	fmt.Println(summaryStyle.Render(strings.Join(summaryParts, ", ")))
	fmt.Println()

	if args.Subcommand == "fix" && (warned > 0 || failed > 0) {
		fmt.Println(doctorTitleStyle.Render("Attempting Auto-Fix..."))
		fmt.Println()

		for _, check := range checks {
			if check.Status == CheckPass || check.Fix == "" {
				continue
			}
			if err := check.TryFix(); err != nil {
				fmt.Printf("  %s Could not fix %s: %s\n", checkWarnStyle.Render("[!!]"), check.Name, err)
				continue
			}
			fmt.Printf("  %s Fixed %s\n", checkPassStyle.Render("[OK]"), check.Name)
		}
		fmt.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}

	return nil
}

// handleDoctorJSON emits the machine-readable report. Failures flip the
// envelope to unsuccessful but the per-check data still goes out.
func handleDoctorJSON(checks []*HealthCheck, passed, warned, failed int) error {
	jsonChecks := make([]DoctorCheck, 0, len(checks))
	for _, check := range checks {
		jsonChecks = append(jsonChecks, DoctorCheck{
			Name:    check.Name,
			Status:  strings.ToLower(check.Status.String()),
			Message: check.Message,
			Fix:     check.Fix,
		})
	}

	resp := NewJSONResponse("doctor", DoctorData{
		Checks: jsonChecks,
		Summary: DoctorSummary{
			Passed:  passed,
			Warned:  warned,
			Failed:  failed,
			Healthy: failed == 0,
		},
	})
	if failed > 0 {
		errMsg := fmt.Sprintf("%d health check(s) failed", failed)
		resp.Success = false
		resp.Error = &errMsg
	}
	return resp.Print()
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks runs all health checks and returns the results.
func runAllChecks() []*HealthCheck {
	cfg, cfgErr := config.Load()
	if cfg == nil {
		cfg = config.Default()
	}

	var checks []*HealthCheck
	checks = append(checks, checkNotRoot())
	checks = append(checks, checkPythonInstalled())
	checks = append(checks, checkOllamaInstalled())
	checks = append(checks, checkOllamaRunning(cfg))
	checks = append(checks, checkModelAvailable(cfg))
	checks = append(checks, checkVenvPresent(cfg))
	checks = append(checks, checkConfigValid(cfg, cfgErr))
	checks = append(checks, checkDataDirWritable())
	return checks
}

// checkNotRoot verifies the process is not running with root privileges.
func checkNotRoot() *HealthCheck {
	check := &HealthCheck{
		Name: "Not Root",
	}

	if runningAsRoot() {
		check.Status = CheckFail
		check.Message = "Running as root"
		check.Fix = "Re-run webllama as a regular user"
		return check
	}

	check.Status = CheckPass
	check.Message = "Running as a regular user"
	return check
}

// checkPythonInstalled checks for a usable Python interpreter.
func checkPythonInstalled() *HealthCheck {
	check := &HealthCheck{
		Name: "Python Installed",
	}

	interp, err := python.FindInterpreter()
	if err != nil {
		check.Status = CheckFail
		check.Message = "Python not found"
		if runtime.GOOS == "darwin" {
			check.Fix = "Run: brew install python3"
		} else {
			check.Fix = "Install python3 with your system package manager"
		}
		return check
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	major, minor, err := python.Version(ctx, interp)
	if err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Python found at %s but version check failed: %s", interp, err)
		return check
	}

	if major < python.MinMajor || (major == python.MinMajor && minor < python.MinMinor) {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Python %d.%d is too old (need %d.%d+)", major, minor, python.MinMajor, python.MinMinor)
		check.Fix = "Install a newer Python with your system package manager"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Python %d.%d (%s)", major, minor, interp)
	return check
}

// checkOllamaInstalled checks if the Ollama binary is installed.
func checkOllamaInstalled() *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Installed",
	}

	path, err := ollama.FindExecutable()
	if err != nil {
		check.Status = CheckFail
		check.Message = "Ollama not installed"
		if runtime.GOOS == "windows" {
			check.Fix = "Download from https://ollama.ai/download"
		} else if runtime.GOOS == "darwin" {
			check.Fix = "Run: brew install ollama"
		} else {
			check.Fix = "Run: curl -fsSL https://ollama.ai/install.sh | sh"
		}
		return check
	}

	// Version is informational only
	version := "unknown"
	if v, err := ollama.Version(context.Background(), path); err == nil {
		version = v
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama installed (v%s)", version)
	return check
}

// checkOllamaRunning checks if the Ollama server is responding.
func checkOllamaRunning(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Running",
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Timeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		check.Status = CheckFail
		check.Message = "Ollama server not running"
		check.Fix = "Run: ollama serve"
		return check
	}

	check.Status = CheckPass
	check.Message = "Ollama running"
	return check
}

// checkModelAvailable checks if the configured model is downloaded.
func checkModelAvailable(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Model Available",
	}

	modelName := cfg.Ollama.Model

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, err := client.HasModel(ctx, modelName)
	if err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Could not check model: %s", err)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	if !ok {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model not downloaded: %s", modelName)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Model available: %s", modelName)
	return check
}

// checkVenvPresent checks the application virtual environment.
func checkVenvPresent(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Venv Present",
	}

	if cfg.App.Dir == "" {
		check.Status = CheckWarn
		check.Message = "No application directory configured"
		check.Fix = "Run: webllama setup"
		return check
	}

	venv := python.NewVenv(cfg.VenvDir())
	if !venv.Exists() {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Virtual environment missing: %s", cfg.VenvDir())
		check.Fix = "Run: webllama setup"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Virtual environment present: %s", cfg.VenvDir())
	return check
}

// checkConfigValid validates the configuration file.
func checkConfigValid(cfg *config.Config, loadErr error) *HealthCheck {
	check := &HealthCheck{
		Name: "Config Valid",
	}

	if loadErr != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", loadErr)
		check.Fix = "Run: webllama config reset"
		return check
	}

	if err := cfg.Validate(); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = "Run: webllama config reset"
		return check
	}

	check.Status = CheckPass
	check.Message = "Config valid"
	return check
}

// checkDataDirWritable checks if the data directory is writable.
func checkDataDirWritable() *HealthCheck {
	check := &HealthCheck{
		Name: "Data Dir Writable",
	}

	dataDir, err := config.ConfigDir()
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not determine data directory: %s", err)
		return check
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not create data directory: %s", err)
		check.Fix = fmt.Sprintf("Create manually: mkdir -p %s", dataDir)
		return check
	}

	testFile := filepath.Join(dataDir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Data directory not writable: %s", err)
		check.Fix = fmt.Sprintf("Check permissions: chmod 755 %s", dataDir)
		return check
	}
	os.Remove(testFile)

	check.Status = CheckPass
	check.Message = "Data directory writable"
	return check
}
