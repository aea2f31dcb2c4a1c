// json_output.go - JSON output support for scripting and monitoring.
//
// Provides a standardized JSON output format for all CLI commands so
// that status, doctor, and version output can be consumed by scripts
// and log aggregation tooling.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse wraps data in a successful envelope.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// StderrPrintln prints a line to stderr (for human-readable output in JSON mode).
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	System StatusSystemInfo `json:"system"`
	App    StatusAppInfo    `json:"app"`
	Config StatusConfigInfo `json:"config"`
}

// StatusSystemInfo contains runtime information for the status command.
type StatusSystemInfo struct {
	Ollama       string `json:"ollama"`
	OllamaPath   string `json:"ollama_path,omitempty"`
	Daemon       string `json:"daemon"`
	ServiceScope string `json:"service_scope,omitempty"`
	Model        string `json:"model"`
	ModelStatus  string `json:"model_status"`
	Python       string `json:"python"`
	PythonVer    string `json:"python_version,omitempty"`
}

// StatusAppInfo contains application information for the status command.
type StatusAppInfo struct {
	Dir        string `json:"dir"`
	Entrypoint string `json:"entrypoint"`
	Venv       string `json:"venv"`
	Endpoint   string `json:"endpoint"`
}

// StatusConfigInfo contains configuration file information.
type StatusConfigInfo struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// DoctorData is the doctor command's JSON payload.
type DoctorData struct {
	Checks  []DoctorCheck `json:"checks"`
	Summary DoctorSummary `json:"summary"`
}

// DoctorCheck mirrors one HealthCheck result.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // pass, warn, fail
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// DoctorSummary aggregates check outcomes.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// ConfigShowData represents the data returned by the config show command.
type ConfigShowData struct {
	Server ConfigServerInfo `json:"server"`
	Ollama ConfigOllamaInfo `json:"ollama"`
	App    ConfigAppInfo    `json:"app"`
	Path   string           `json:"config_path"`
}

// ConfigServerInfo contains web server configuration.
type ConfigServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ConfigOllamaInfo contains model runtime configuration.
type ConfigOllamaInfo struct {
	URL   string `json:"url"`
	Model string `json:"model"`
	Unit  string `json:"unit"`
}

// ConfigAppInfo contains application configuration.
type ConfigAppInfo struct {
	Dir        string `json:"dir"`
	Entrypoint string `json:"entrypoint"`
	VenvDir    string `json:"venv_dir"`
}

// PullData represents the data returned by the pull command.
type PullData struct {
	Model          string `json:"model"`
	AlreadyPresent bool   `json:"already_present"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
