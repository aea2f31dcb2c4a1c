// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package service wraps the systemd service manager for daemon lifecycle
// checks across the system and user scopes.
package service

import (
	"context"
	"os/exec"
	"strings"
)

// =============================================================================
// SCOPE
// =============================================================================

// Scope selects which systemd instance a unit belongs to.
type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeUser   Scope = "user"
)

// Scopes returns the probe order used when resolving a unit: the system
// instance first, then the per-user instance.
func Scopes() []Scope {
	return []Scope{ScopeSystem, ScopeUser}
}

// args returns the scope selector arguments for systemctl.
func (s Scope) args() []string {
	if s == ScopeUser {
		return []string{"--user"}
	}
	return nil
}

// =============================================================================
// MANAGER
// =============================================================================

// Runner executes a command and returns its combined output. The default
// runner shells out to the real binary; tests substitute their own.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Manager talks to systemctl. The zero value is not usable; call New.
type Manager struct {
	run      Runner
	lookPath func(string) (string, error)
}

// New returns a Manager backed by the real systemctl binary.
func New() *Manager {
	return &Manager{run: execRunner, lookPath: exec.LookPath}
}

// NewWithRunner returns a Manager that executes commands through the
// given runner. Availability always reports true since the runner stands
// in for the real binary.
func NewWithRunner(run Runner) *Manager {
	return &Manager{
		run:      run,
		lookPath: func(string) (string, error) { return "systemctl", nil },
	}
}

// Available reports whether systemctl exists on this host. Non-systemd
// hosts (and non-Linux platforms) report false and callers fall back to
// starting daemons directly.
func (m *Manager) Available() bool {
	_, err := m.lookPath("systemctl")
	return err == nil
}

// IsActive reports whether the unit is currently active in the given scope.
func (m *Manager) IsActive(ctx context.Context, unit string, scope Scope) bool {
	args := append(scope.args(), "is-active", "--quiet", unit)
	_, err := m.run(ctx, "systemctl", args...)
	return err == nil
}

// UnitRegistered reports whether a unit file for the service exists in the
// given scope, active or not.
func (m *Manager) UnitRegistered(ctx context.Context, unit string, scope Scope) bool {
	args := append(scope.args(), "cat", unit)
	out, err := m.run(ctx, "systemctl", args...)
	if err != nil {
		return false
	}
	// systemd prints "No files found for <unit>" on some versions
	// without a failing exit status
	return !strings.Contains(string(out), "No files found")
}

// Start starts the unit in the given scope and returns systemctl's output
// on failure.
func (m *Manager) Start(ctx context.Context, unit string, scope Scope) error {
	args := append(scope.args(), "start", unit)
	out, err := m.run(ctx, "systemctl", args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return &StartError{Unit: unit, Scope: scope, Output: msg, Cause: err}
		}
		return &StartError{Unit: unit, Scope: scope, Cause: err}
	}
	return nil
}

// ResolveScope finds the first scope in probe order where the unit is
// registered. Returns false when no scope has the unit.
func (m *Manager) ResolveScope(ctx context.Context, unit string) (Scope, bool) {
	for _, scope := range Scopes() {
		if m.UnitRegistered(ctx, unit, scope) {
			return scope, true
		}
	}
	return "", false
}

// =============================================================================
// ERRORS
// =============================================================================

// StartError reports a failed systemctl start.
type StartError struct {
	Unit   string
	Scope  Scope
	Output string
	Cause  error
}

func (e *StartError) Error() string {
	msg := "failed to start " + e.Unit + " (" + string(e.Scope) + " scope)"
	if e.Output != "" {
		return msg + ": " + e.Output
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *StartError) Unwrap() error {
	return e.Cause
}
