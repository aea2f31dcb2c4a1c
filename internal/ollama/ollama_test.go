// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q, want http://127.0.0.1:11434", cfg.BaseURL)
	}

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}

	if cfg.DefaultModel == "" {
		t.Error("DefaultModel should not be empty")
	}
}

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:9999"})

	if client.config.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("BaseURL = %q, want override preserved", client.config.BaseURL)
	}

	if client.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", client.config.Timeout)
	}

	if client.config.DefaultModel == "" {
		t.Error("DefaultModel should be filled with default")
	}
}

func TestNewClientWithConfig_NilConfig(t *testing.T) {
	client := NewClientWithConfig(nil)

	if client.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q, want default", client.config.BaseURL)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func testClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
	})
}

func TestCheckRunning_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Ollama is running")
	}))
	defer server.Close()

	client := testClient(server.URL)

	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() = %v, want nil", err)
	}
}

func TestCheckRunning_NotRunning(t *testing.T) {
	// Point at a closed server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := testClient(url)

	err := client.CheckRunning(context.Background())
	if err == nil {
		t.Fatal("CheckRunning() = nil, want error")
	}

	if !IsNotRunning(err) {
		t.Errorf("IsNotRunning(%v) = false, want true", err)
	}
}

func TestCheckRunning_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)

	if err := client.CheckRunning(context.Background()); err == nil {
		t.Error("CheckRunning() = nil, want error on 500")
	}
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func modelListServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[`)
		for i, name := range names {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name":%q,"size":2019393189}`, name)
		}
		fmt.Fprint(w, `]}`)
	}))
}

func TestListModels(t *testing.T) {
	server := modelListServer(t, "llama3.2:3b", "qwen2.5-coder:7b")
	defer server.Close()

	client := testClient(server.URL)

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}

	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}

	if models[0].Name != "llama3.2:3b" {
		t.Errorf("models[0].Name = %q, want llama3.2:3b", models[0].Name)
	}
}

func TestHasModel(t *testing.T) {
	server := modelListServer(t, "llama3.2:3b", "qwen2.5-coder:7b")
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{"exact match", "llama3.2:3b", true},
		{"bare name matches any tag", "llama3.2", true},
		{"bare name other model", "qwen2.5-coder", true},
		{"missing model", "mistral:7b", false},
		{"bare missing", "mistral", false},
		{"wrong tag", "llama3.2:70b", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := client.HasModel(ctx, tc.model)
			if err != nil {
				t.Fatalf("HasModel(%q) error = %v", tc.model, err)
			}
			if got != tc.want {
				t.Errorf("HasModel(%q) = %v, want %v", tc.model, got, tc.want)
			}
		})
	}
}

func TestHasModel_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := testClient(url)

	_, err := client.HasModel(context.Background(), "llama3.2:3b")
	if err == nil {
		t.Fatal("HasModel() = nil error, want error when server is down")
	}
	if !IsNotRunning(err) {
		t.Errorf("IsNotRunning(%v) = false, want true", err)
	}
}

// =============================================================================
// SHOW MODEL TESTS
// =============================================================================

func TestShowModel_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/show" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.ShowModel(context.Background(), "nope:1b")
	if !IsModelNotFound(err) {
		t.Errorf("IsModelNotFound(%v) = false, want true", err)
	}
}

// =============================================================================
// PULL TESTS
// =============================================================================

func TestPull_StreamsProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"downloading","digest":"sha256:abc","total":1000,"completed":500}`)
		fmt.Fprintln(w, `{"status":"downloading","digest":"sha256:abc","total":1000,"completed":1000}`)
		fmt.Fprintln(w, `{"status":"verifying sha256 digest"}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)

	var lines []PullProgress
	err := client.Pull(context.Background(), "llama3.2:3b", func(p PullProgress) {
		lines = append(lines, p)
	})
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if len(lines) != 5 {
		t.Fatalf("callback called %d times, want 5", len(lines))
	}

	if lines[0].Status != "pulling manifest" {
		t.Errorf("first status = %q, want 'pulling manifest'", lines[0].Status)
	}

	if got := lines[1].Percent(); got != 50 {
		t.Errorf("Percent() = %f, want 50", got)
	}

	if lines[4].Status != "success" {
		t.Errorf("last status = %q, want 'success'", lines[4].Status)
	}
}

func TestPull_ErrorLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"error":"pull model manifest: file does not exist"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)

	err := client.Pull(context.Background(), "nope:1b", nil)
	if err == nil {
		t.Fatal("Pull() = nil, want error from error line")
	}
}

func TestPull_NotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model \"nope\" not found"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)

	err := client.Pull(context.Background(), "nope", nil)
	if !IsModelNotFound(err) {
		t.Errorf("IsModelNotFound(%v) = false, want true", err)
	}
}

func TestPull_NoRequestNeeded(t *testing.T) {
	// HasModel followed by Pull skip: verify no pull request is issued
	// when the caller checks presence first
	var pullCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pull":
			pullCount.Add(1)
			fmt.Fprintln(w, `{"status":"success"}`)
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.2:3b","size":1}]}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	ok, err := client.HasModel(ctx, "llama3.2:3b")
	if err != nil {
		t.Fatalf("HasModel() error = %v", err)
	}
	if !ok {
		t.Fatal("HasModel() = false, want true")
	}

	if got := pullCount.Load(); got != 0 {
		t.Errorf("pull requests = %d, want 0", got)
	}
}

// =============================================================================
// ERROR HELPER TESTS
// =============================================================================

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		notRunning bool
		timeout    bool
	}{
		{"sentinel not found", ErrModelNotFound, true, false, false},
		{"sentinel not running", ErrNotRunning, false, true, false},
		{"sentinel timeout", ErrTimeout, false, false, true},
		{"typed not found", &ClientError{Type: ErrTypeModelNotFound, Message: "x"}, true, false, false},
		{"connection error", &ClientError{Type: ErrTypeConnection, Message: "x"}, false, false, false},
		{"plain error", fmt.Errorf("boom"), false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsModelNotFound(tc.err); got != tc.notFound {
				t.Errorf("IsModelNotFound = %v, want %v", got, tc.notFound)
			}
			if got := IsNotRunning(tc.err); got != tc.notRunning {
				t.Errorf("IsNotRunning = %v, want %v", got, tc.notRunning)
			}
			if got := IsTimeout(tc.err); got != tc.timeout {
				t.Errorf("IsTimeout = %v, want %v", got, tc.timeout)
			}
		})
	}
}

func TestClientError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := &ClientError{Type: ErrTypeConnection, Message: "wrapper", Cause: cause}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	if err.Error() != "wrapper: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{5046586573, "4.7 GB"},
	}

	for _, tc := range tests {
		m := &ModelInfo{Size: tc.size}
		if got := m.FormatSize(); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{"ollama version is 0.3.6\n", "0.3.6"},
		{"0.1.48", "0.1.48"},
		{"ollama version is 0.5.1\nWarning: client version is newer than server", "0.5.1"},
		{"", ""},
		{"   \n", ""},
	}

	for _, tc := range tests {
		if got := parseVersionOutput(tc.out); got != tc.want {
			t.Errorf("parseVersionOutput(%q) = %q, want %q", tc.out, got, tc.want)
		}
	}
}
