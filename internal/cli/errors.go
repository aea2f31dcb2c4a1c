// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - error types and exit-code mapping shared by every command.
//
// Handlers return errors instead of printing them; main maps the returned
// error to an exit code through HandleErrorAndExit.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/webllama/internal/bootstrap"
)

// Exit codes. Scripts driving webllama can branch on these; anything
// fatal is non-zero.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2 // bad arguments or flags
	ExitConfigError   = 3 // config file unreadable or invalid
	ExitNetworkError  = 5 // daemon unreachable
	ExitNotFoundError = 7 // model, venv, or interpreter missing
	ExitTimeoutError  = 8 // readiness window or request deadline elapsed
)

// ValidationError reports user input that a command rejected.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s: %s (got: %s)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NotFoundError reports a missing resource, like a model that has not
// been pulled or a venv that was never created.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// DisplayError prints err for the user, as a styled line or as a JSON
// envelope depending on mode.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		displayErrorJSON(err)
		return
	}
	fmt.Println()
	fmt.Printf("%s %s\n", ErrorStyle.Render("[ERROR]"), WrapText(err.Error(), 0))
	if hint := remediation(err); hint != "" {
		fmt.Printf("%s\n", DimStyle.Render(WrapText(hint, 0)))
	}
	fmt.Println()
}

// remediation extracts operator guidance when the error carries any.
func remediation(err error) string {
	var r interface{ Remediation() string }
	if errors.As(err, &r) {
		return r.Remediation()
	}
	return ""
}

func displayErrorJSON(err error) {
	output := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}

	var valErr *ValidationError
	var nfErr *NotFoundError
	switch {
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
		output["reason"] = valErr.Reason
	case errors.As(err, &nfErr):
		output["error_type"] = "not_found_error"
		output["resource"] = nfErr.Resource
		output["id"] = nfErr.ID
	default:
		output["error_type"] = "generic_error"
	}
	if hint := remediation(err); hint != "" {
		output["remediation"] = hint
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// HandleErrorAndExit displays a fatal error and exits with its mapped
// code. A nil error is a no-op so handlers can be passed through directly.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to an exit code. Typed errors take priority;
// untyped errors are classified by message since the bootstrap and config
// layers wrap causes into plain text.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ExitUsageError
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return ExitNotFoundError
	}
	// A daemon that never answered within the health window is the
	// launcher's primary fatal path and exits with the plain failure
	// status, not the network code
	var unreachable *bootstrap.UnreachableError
	if errors.As(err, &unreachable) {
		return ExitGeneralError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "config") ||
		strings.Contains(msg, "configuration") ||
		strings.Contains(msg, "settings"):
		return ExitConfigError
	case strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded"):
		return ExitTimeoutError
	case strings.Contains(msg, "network") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "did not respond") ||
		strings.Contains(msg, "unreachable") ||
		strings.Contains(msg, "dial"):
		return ExitNetworkError
	}
	return ExitGeneralError
}
