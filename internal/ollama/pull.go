// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// =============================================================================
// MODEL PULL
// =============================================================================

// PullCallback is called for each progress line received during a pull.
type PullCallback func(progress PullProgress)

// Pull downloads a model through the Ollama registry, streaming progress
// to the callback. Blocks until the pull completes or fails. The callback
// may be nil.
//
// A pull of an already-present model completes quickly with "success";
// callers that want to avoid the request entirely should check HasModel
// first.
func (c *Client) Pull(ctx context.Context, name string, callback PullCallback) error {
	if name == "" {
		name = c.config.DefaultModel
	}

	reqBody := PullRequest{Name: name, Stream: true}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// No client timeout for pulls - large models take minutes to hours.
	// Cancellation is handled via context.
	pullClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pullClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var pullErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&pullErr); err == nil && pullErr.Error != "" {
			return &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: pullErr.Error,
			}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "pull request failed: " + resp.Status,
		}
	}

	return readPullStream(ctx, resp.Body, callback)
}

// readPullStream parses the NDJSON progress stream from /api/pull.
func readPullStream(ctx context.Context, r io.Reader, callback PullCallback) error {
	scanner := bufio.NewScanner(r)
	// Progress lines are small, but leave headroom for manifest status lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		// Error lines share the stream with progress lines
		var pullErr apiError
		if err := json.Unmarshal(line, &pullErr); err == nil && pullErr.Error != "" {
			if strings.Contains(pullErr.Error, "not found") {
				return &ClientError{Type: ErrTypeModelNotFound, Message: pullErr.Error}
			}
			return &ClientError{Type: ErrTypeInvalidResponse, Message: pullErr.Error}
		}

		var progress PullProgress
		if err := json.Unmarshal(line, &progress); err != nil {
			// Skip malformed lines
			continue
		}

		if callback != nil {
			callback(progress)
		}

		if progress.Status == "success" {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "pull stream interrupted", Cause: err}
	}

	// Stream ended without an explicit success line; treat EOF as completion
	return nil
}
