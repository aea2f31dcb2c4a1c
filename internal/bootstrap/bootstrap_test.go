// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/service"
)

func newTestBootstrap(url string, opts Options) *Bootstrap {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
	})
	return NewWithOptions(client, opts)
}

func TestOptions_Defaults(t *testing.T) {
	b := New(ollama.NewClient())

	if b.opts.Unit != "ollama" {
		t.Errorf("Unit = %q, want ollama", b.opts.Unit)
	}
	if b.opts.HealthInterval != 1*time.Second {
		t.Errorf("HealthInterval = %v, want 1s", b.opts.HealthInterval)
	}
	if b.opts.HealthWindow != 30*time.Second {
		t.Errorf("HealthWindow = %v, want 30s", b.opts.HealthWindow)
	}
	if b.opts.Model == "" {
		t.Error("Model should default to the client's default model")
	}
}

func TestEnsureDaemon_AlreadyRunning(t *testing.T) {
	var starts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{})
	// Any systemctl call would be a redundant action on a healthy daemon
	b.SetManager(service.NewWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		starts.Add(1)
		return nil, nil
	}))

	if err := b.EnsureDaemon(context.Background()); err != nil {
		t.Fatalf("EnsureDaemon() = %v, want nil", err)
	}

	if got := starts.Load(); got != 0 {
		t.Errorf("service manager calls = %d, want 0 when daemon already up", got)
	}
}

func TestEnsureDaemon_StartsRegisteredUnit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // daemon down

	var calls []string
	b := newTestBootstrap(url, Options{Unit: "ollama"})
	b.SetManager(service.NewWithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		key := fmt.Sprint(args)
		calls = append(calls, key)
		switch key {
		case "[cat ollama]":
			return []byte("[Unit]"), nil
		case "[is-active --quiet ollama]":
			return nil, fmt.Errorf("exit status 3")
		case "[start ollama]":
			return nil, nil
		}
		return nil, fmt.Errorf("exit status 1")
	}))

	if err := b.EnsureDaemon(context.Background()); err != nil {
		t.Fatalf("EnsureDaemon() = %v, want nil after unit start", err)
	}

	found := false
	for _, c := range calls {
		if c == "[start ollama]" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a systemctl start call, got %v", calls)
	}
}

func TestWaitHealthy_ImmediateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{
		HealthInterval: 10 * time.Millisecond,
		HealthWindow:   100 * time.Millisecond,
	})

	if err := b.WaitHealthy(context.Background()); err != nil {
		t.Errorf("WaitHealthy() = %v, want nil", err)
	}
}

func TestWaitHealthy_BecomesReady(t *testing.T) {
	var probes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail the first two probes, then answer
		if probes.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{
		HealthInterval: 10 * time.Millisecond,
		HealthWindow:   2 * time.Second,
	})

	if err := b.WaitHealthy(context.Background()); err != nil {
		t.Errorf("WaitHealthy() = %v, want nil once daemon answers", err)
	}

	if probes.Load() < 3 {
		t.Errorf("probes = %d, want at least 3", probes.Load())
	}
}

func TestWaitHealthy_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	b := newTestBootstrap(url, Options{
		HealthInterval: 10 * time.Millisecond,
		HealthWindow:   50 * time.Millisecond,
	})

	err := b.WaitHealthy(context.Background())
	if err == nil {
		t.Fatal("WaitHealthy() = nil, want error after window")
	}

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("error type = %T, want *UnreachableError", err)
	}

	if unreachable.Remediation() == "" {
		t.Error("Remediation() should return guidance")
	}
}

func TestWaitHealthy_FinalProbeRescues(t *testing.T) {
	// Daemon starts answering only after the window has closed; the
	// final probe must still succeed
	start := time.Now()
	window := 60 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if time.Since(start) < window {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{
		HealthInterval: 20 * time.Millisecond,
		HealthWindow:   window,
	})

	if err := b.WaitHealthy(context.Background()); err != nil {
		t.Errorf("WaitHealthy() = %v, want nil from final probe", err)
	}
}

func TestEnsureModel_PresentSkipsPull(t *testing.T) {
	var pulls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.2:3b","size":1}]}`)
		case "/api/pull":
			pulls.Add(1)
			fmt.Fprintln(w, `{"status":"success"}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{Model: "llama3.2:3b"})

	if err := b.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel() = %v, want nil", err)
	}

	if got := pulls.Load(); got != 0 {
		t.Errorf("pull requests = %d, want 0 when model present", got)
	}
}

func TestEnsureModel_PullsWhenMissing(t *testing.T) {
	var pulls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[]}`)
		case "/api/pull":
			pulls.Add(1)
			fmt.Fprintln(w, `{"status":"pulling manifest"}`)
			fmt.Fprintln(w, `{"status":"success"}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	var progress []ollama.PullProgress
	b := newTestBootstrap(server.URL, Options{
		Model: "llama3.2:3b",
		PullProgress: func(p ollama.PullProgress) {
			progress = append(progress, p)
		},
	})

	if err := b.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel() = %v, want nil", err)
	}

	if got := pulls.Load(); got != 1 {
		t.Errorf("pull requests = %d, want 1", got)
	}
	if len(progress) == 0 {
		t.Error("pull progress callback never called")
	}
}

func TestEnsureModel_PullFailurePropagates(t *testing.T) {
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

	b := newTestBootstrap(server.URL, Options{Model: "nope:1b"})

	if err := b.EnsureModel(context.Background()); err == nil {
		t.Error("EnsureModel() = nil, want pull error")
	}
}

func TestRun_SatisfiedHostDoesNoWork(t *testing.T) {
	var pulls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.2:3b","size":1}]}`)
		case "/api/pull":
			pulls.Add(1)
			fmt.Fprintln(w, `{"status":"success"}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	b := newTestBootstrap(server.URL, Options{
		Model:          "llama3.2:3b",
		HealthInterval: 10 * time.Millisecond,
		HealthWindow:   100 * time.Millisecond,
	})

	// Two consecutive runs on a ready host both succeed without pulls
	for i := 0; i < 2; i++ {
		if err := b.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d = %v, want nil", i+1, err)
		}
	}

	if got := pulls.Load(); got != 0 {
		t.Errorf("pull requests = %d, want 0 on satisfied host", got)
	}
}
