// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(out)
}

func TestHandlePull_JSONFailureEmitsNothingOnStdout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[]}`)
		case "/api/pull":
			fmt.Fprintln(w, `{"error":"pull model manifest: file does not exist"}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	t.Setenv("WEBLLAMA_OLLAMA_URL", server.URL)

	var handleErr error
	out := captureStdout(t, func() {
		handleErr = HandlePull(Args{JSON: true, Model: "nope:1b"})
	})

	if handleErr == nil {
		t.Fatal("HandlePull() = nil, want pull error")
	}

	// The caller prints the single JSON error envelope; a failed pull
	// must not write its own to stdout
	if got := bytes.TrimSpace([]byte(out)); len(got) != 0 {
		t.Errorf("stdout = %q, want empty on pull failure", got)
	}
}
