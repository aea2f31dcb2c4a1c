// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// This package implements a client for the Ollama local LLM server,
// covering the surface the installer and launcher need: health checks,
// server startup, model listing, and streaming model pulls.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - ClientConfig: Base URL, timeout and default model settings
//   - ModelInfo: A locally available model as reported by /api/tags
//   - PullProgress: One status line of a streaming /api/pull
//
// # Usage
//
// Create a client and make sure the server is up:
//
//	client := ollama.NewClient()
//	if err := client.EnsureRunning(ctx); err != nil {
//	    return err
//	}
//
// Check for a model and pull it when missing:
//
//	ok, err := client.HasModel(ctx, "llama3.2:3b")
//	if err == nil && !ok {
//	    err = client.Pull(ctx, "llama3.2:3b", func(p ollama.PullProgress) {
//	        fmt.Printf("\r%s %.0f%%", p.Status, p.Percent())
//	    })
//	}
//
// Server startup is platform-specific: the process is spawned detached
// (new process group on Unix, DETACHED_PROCESS on Windows) so it outlives
// the caller, then polled until the API answers.
package ollama
