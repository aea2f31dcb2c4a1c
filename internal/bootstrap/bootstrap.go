// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap brings the local Ollama daemon into a ready state and
// ensures the configured model artifact is present. Both the installer and
// the launcher run the same sequence.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/service"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Options configures a bootstrap run.
type Options struct {
	// Model is the model artifact that must be present locally
	// (default: the client's default model)
	Model string

	// Unit is the systemd unit name for the daemon (default: "ollama")
	Unit string

	// HealthInterval between readiness probes (default: 1s)
	HealthInterval time.Duration

	// HealthWindow is the total time to wait for the daemon to answer
	// before giving up (default: 30s)
	HealthWindow time.Duration

	// Logf receives one-line progress messages. Nil disables them.
	Logf func(format string, args ...any)

	// PullProgress receives model download progress. Nil disables it.
	PullProgress ollama.PullCallback
}

func (o *Options) fill(client *ollama.Client) {
	if o.Model == "" {
		o.Model = client.DefaultModel()
	}
	if o.Unit == "" {
		o.Unit = "ollama"
	}
	if o.HealthInterval == 0 {
		o.HealthInterval = 1 * time.Second
	}
	if o.HealthWindow == 0 {
		o.HealthWindow = 30 * time.Second
	}
}

func (o *Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// Bootstrap checks and repairs the daemon/model state the web app needs.
type Bootstrap struct {
	client  *ollama.Client
	manager *service.Manager
	opts    Options
}

// New creates a Bootstrap around the given client with default options.
func New(client *ollama.Client) *Bootstrap {
	return NewWithOptions(client, Options{})
}

// NewWithOptions creates a Bootstrap with explicit options. Zero-value
// option fields get defaults.
func NewWithOptions(client *ollama.Client, opts Options) *Bootstrap {
	if client == nil {
		client = ollama.NewClient()
	}
	opts.fill(client)
	return &Bootstrap{
		client:  client,
		manager: service.New(),
		opts:    opts,
	}
}

// SetManager substitutes the service manager. Used by tests.
func (b *Bootstrap) SetManager(m *service.Manager) {
	b.manager = m
}

// Client returns the underlying Ollama client.
func (b *Bootstrap) Client() *ollama.Client {
	return b.client
}

// Run executes the full sequence: daemon up, endpoint healthy, model
// present. Each step checks current state before acting, so a run on a
// satisfied host does no work.
func (b *Bootstrap) Run(ctx context.Context) error {
	if err := b.EnsureDaemon(ctx); err != nil {
		return err
	}
	if err := b.WaitHealthy(ctx); err != nil {
		return err
	}
	return b.EnsureModel(ctx)
}

// =============================================================================
// STEP 1: DAEMON
// =============================================================================

// EnsureDaemon makes sure the Ollama daemon is running. Resolution order:
// already answering on the API port, a registered systemd unit (system
// scope before user scope), then a directly spawned detached server
// process. EnsureDaemon returns once a start has been issued; readiness
// is WaitHealthy's job.
func (b *Bootstrap) EnsureDaemon(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	err := b.client.CheckRunning(probeCtx)
	cancel()
	if err == nil {
		return nil
	}

	if b.manager.Available() {
		if scope, ok := b.manager.ResolveScope(ctx, b.opts.Unit); ok {
			if b.manager.IsActive(ctx, b.opts.Unit, scope) {
				// Unit says active but the port did not answer yet;
				// leave it to the health wait
				return nil
			}
			b.opts.logf("Starting %s via systemd (%s scope)", b.opts.Unit, scope)
			if err := b.manager.Start(ctx, b.opts.Unit, scope); err != nil {
				// A failed unit start is not fatal: fall through to
				// spawning the server directly
				b.opts.logf("systemd start failed: %v", err)
			} else {
				return nil
			}
		}
	}

	b.opts.logf("Starting Ollama server")
	return b.client.StartServer(ctx)
}

// =============================================================================
// STEP 2: HEALTH
// =============================================================================

// WaitHealthy polls the daemon's API endpoint until it answers, probing
// once per interval for the duration of the window. After the window
// closes one final probe decides the outcome; failure returns an
// UnreachableError.
func (b *Bootstrap) WaitHealthy(ctx context.Context) error {
	deadline := time.Now().Add(b.opts.HealthWindow)

	for time.Now().Before(deadline) {
		probeCtx, cancel := context.WithTimeout(ctx, b.opts.HealthInterval)
		err := b.client.CheckRunning(probeCtx)
		cancel()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.opts.HealthInterval):
		}
	}

	// One last probe after the window closes
	probeCtx, cancel := context.WithTimeout(ctx, b.opts.HealthInterval)
	err := b.client.CheckRunning(probeCtx)
	cancel()
	if err == nil {
		return nil
	}

	return &UnreachableError{
		URL:    b.client.BaseURL(),
		Window: b.opts.HealthWindow,
		Cause:  err,
	}
}

// =============================================================================
// STEP 3: MODEL
// =============================================================================

// EnsureModel makes sure the configured model is present in the local
// store, pulling it when absent. A present model issues no pull request.
func (b *Bootstrap) EnsureModel(ctx context.Context) error {
	ok, err := b.client.HasModel(ctx, b.opts.Model)
	if err != nil {
		return fmt.Errorf("checking model %s: %w", b.opts.Model, err)
	}
	if ok {
		return nil
	}

	b.opts.logf("Model %s not found locally, pulling", b.opts.Model)
	if err := b.client.Pull(ctx, b.opts.Model, b.opts.PullProgress); err != nil {
		return fmt.Errorf("pulling model %s: %w", b.opts.Model, err)
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// UnreachableError reports a daemon that never answered within the
// health window.
type UnreachableError struct {
	URL    string
	Window time.Duration
	Cause  error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("Ollama did not respond at %s within %s", e.URL, e.Window)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// Remediation returns operator guidance for an unreachable daemon.
func (e *UnreachableError) Remediation() string {
	return "Check that Ollama is installed and can start: run 'ollama serve' in a terminal and look for errors, " +
		"or inspect the service with 'systemctl status ollama' / 'systemctl --user status ollama'."
}
