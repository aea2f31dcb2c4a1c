// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRunner records calls and answers from a canned table keyed by the
// joined argument list.
type fakeRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	return []byte(f.outputs[key]), f.errs[key]
}

func TestScopeArgs(t *testing.T) {
	if got := ScopeSystem.args(); got != nil {
		t.Errorf("system scope args = %v, want none", got)
	}

	got := ScopeUser.args()
	if len(got) != 1 || got[0] != "--user" {
		t.Errorf("user scope args = %v, want [--user]", got)
	}
}

func TestScopes_ProbeOrder(t *testing.T) {
	order := Scopes()
	if len(order) != 2 || order[0] != ScopeSystem || order[1] != ScopeUser {
		t.Errorf("Scopes() = %v, want [system user]", order)
	}
}

func TestIsActive(t *testing.T) {
	f := &fakeRunner{
		outputs: map[string]string{},
		errs: map[string]error{
			"systemctl --user is-active --quiet ollama": fmt.Errorf("exit status 3"),
		},
	}
	m := NewWithRunner(f.run)
	ctx := context.Background()

	if !m.IsActive(ctx, "ollama", ScopeSystem) {
		t.Error("system scope should report active")
	}
	if m.IsActive(ctx, "ollama", ScopeUser) {
		t.Error("user scope should report inactive")
	}
}

func TestUnitRegistered(t *testing.T) {
	f := &fakeRunner{
		outputs: map[string]string{
			"systemctl cat ollama":        "[Unit]\nDescription=Ollama Service\n",
			"systemctl --user cat ollama": "No files found for ollama.service.\n",
		},
		errs: map[string]error{},
	}
	m := NewWithRunner(f.run)
	ctx := context.Background()

	if !m.UnitRegistered(ctx, "ollama", ScopeSystem) {
		t.Error("system unit should be registered")
	}
	if m.UnitRegistered(ctx, "ollama", ScopeUser) {
		t.Error("user unit should not be registered on 'No files found'")
	}
}

func TestUnitRegistered_CommandError(t *testing.T) {
	f := &fakeRunner{
		outputs: map[string]string{},
		errs: map[string]error{
			"systemctl cat ollama": fmt.Errorf("exit status 1"),
		},
	}
	m := NewWithRunner(f.run)

	if m.UnitRegistered(context.Background(), "ollama", ScopeSystem) {
		t.Error("failed systemctl cat should report not registered")
	}
}

func TestStart_Errors(t *testing.T) {
	f := &fakeRunner{
		outputs: map[string]string{
			"systemctl start ollama": "Failed to start ollama.service: Access denied\n",
		},
		errs: map[string]error{
			"systemctl start ollama": fmt.Errorf("exit status 4"),
		},
	}
	m := NewWithRunner(f.run)

	err := m.Start(context.Background(), "ollama", ScopeSystem)
	if err == nil {
		t.Fatal("Start() = nil, want error")
	}

	var startErr *StartError
	if !strings.Contains(err.Error(), "Access denied") {
		t.Errorf("error should carry systemctl output, got %q", err.Error())
	}
	if !errors.As(err, &startErr) {
		t.Fatal("error should be a *StartError")
	}
	if startErr.Scope != ScopeSystem {
		t.Errorf("Scope = %q, want system", startErr.Scope)
	}
}

func TestStart_Success(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
	m := NewWithRunner(f.run)

	if err := m.Start(context.Background(), "ollama", ScopeUser); err != nil {
		t.Errorf("Start() = %v, want nil", err)
	}

	want := "systemctl --user start ollama"
	if len(f.calls) != 1 || f.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", f.calls, want)
	}
}

func TestResolveScope(t *testing.T) {
	tests := []struct {
		name      string
		outputs   map[string]string
		errs      map[string]error
		wantScope Scope
		wantFound bool
	}{
		{
			name:      "system wins when both registered",
			outputs:   map[string]string{"systemctl cat ollama": "[Unit]", "systemctl --user cat ollama": "[Unit]"},
			errs:      map[string]error{},
			wantScope: ScopeSystem,
			wantFound: true,
		},
		{
			name:    "falls back to user scope",
			outputs: map[string]string{"systemctl --user cat ollama": "[Unit]"},
			errs: map[string]error{
				"systemctl cat ollama": fmt.Errorf("exit status 1"),
			},
			wantScope: ScopeUser,
			wantFound: true,
		},
		{
			name:    "no unit anywhere",
			outputs: map[string]string{},
			errs: map[string]error{
				"systemctl cat ollama":        fmt.Errorf("exit status 1"),
				"systemctl --user cat ollama": fmt.Errorf("exit status 1"),
			},
			wantFound: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeRunner{outputs: tc.outputs, errs: tc.errs}
			m := NewWithRunner(f.run)

			scope, found := m.ResolveScope(context.Background(), "ollama")
			if found != tc.wantFound {
				t.Fatalf("found = %v, want %v", found, tc.wantFound)
			}
			if found && scope != tc.wantScope {
				t.Errorf("scope = %q, want %q", scope, tc.wantScope)
			}
		})
	}
}
