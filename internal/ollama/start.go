// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Version reports the installed binary's version by running
// "ollama --version" at the given path.
func Version(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", path, err)
	}
	v := parseVersionOutput(string(out))
	if v == "" {
		return "", fmt.Errorf("unexpected version output: %q", strings.TrimSpace(string(out)))
	}
	return v, nil
}

// parseVersionOutput extracts the version token from output shaped like
// "ollama version is 0.3.6". Only the first line counts; the binary
// appends a warning line when client and server versions differ.
func parseVersionOutput(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// startServerProcess spawns "ollama serve" detached and polls until the
// API answers. Platform differences live in FindExecutable and
// detachServeCmd (see start_unix.go / start_windows.go).
func (c *Client) startServerProcess(ctx context.Context) error {
	servePath, err := FindExecutable()
	if err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "failed to find Ollama executable",
			Cause:   err,
		}
	}

	cmd := exec.Command(servePath, "serve")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detachServeCmd(cmd)

	if err := cmd.Start(); err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: fmt.Sprintf("failed to start Ollama (path: %s)", servePath),
			Cause:   err,
		}
	}

	// The server must keep running after we exit.
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	return c.awaitServe(ctx, servePath, spawnWindow)
}

// awaitServe polls the API root until it answers or window elapses.
// Spawning is not done until the port accepts, so a fixed sleep after
// Start would race the server's bind.
func (c *Client) awaitServe(ctx context.Context, servePath string, window time.Duration) error {
	deadline := time.Now().Add(window)
	var lastErr error

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return &ClientError{
				Type:    ErrTypeConnection,
				Message: "Ollama startup cancelled",
				Cause:   ctx.Err(),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		lastErr = c.CheckRunning(probeCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return &ClientError{
		Type:    ErrTypeConnection,
		Message: fmt.Sprintf("Ollama started but not responding after %s (path: %s)", window, servePath),
		Cause:   lastErr,
	}
}
