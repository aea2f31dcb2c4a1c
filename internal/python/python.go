// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package python locates a Python interpreter and manages the virtual
// environment the web application runs in.
package python

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Minimum interpreter version the web application supports.
const (
	MinMajor = 3
	MinMinor = 9
)

// =============================================================================
// INTERPRETER
// =============================================================================

// FindInterpreter locates a Python 3 interpreter on PATH. Returns the
// resolved path, preferring "python3" over "python".
func FindInterpreter() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("python3 not found in PATH. " +
		"Install Python 3 from your package manager (e.g. 'apt install python3 python3-venv') or https://www.python.org/downloads/")
}

// Version runs the interpreter and returns its major/minor version.
func Version(ctx context.Context, interpreter string) (major, minor int, err error) {
	out, err := exec.CommandContext(ctx, interpreter, "--version").CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run %s --version: %w", interpreter, err)
	}
	return parseVersion(string(out))
}

// parseVersion extracts major/minor from "Python 3.11.4" style output.
func parseVersion(out string) (major, minor int, err error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("unexpected version output: %q", out)
	}

	parts := strings.Split(fields[len(fields)-1], ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected version string: %q", fields[len(fields)-1])
	}

	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected major version: %q", parts[0])
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected minor version: %q", parts[1])
	}
	return major, minor, nil
}

// CheckVersion verifies the interpreter meets the minimum supported
// version.
func CheckVersion(ctx context.Context, interpreter string) error {
	major, minor, err := Version(ctx, interpreter)
	if err != nil {
		return err
	}
	if major < MinMajor || (major == MinMajor && minor < MinMinor) {
		return fmt.Errorf("python %d.%d is too old, need %d.%d or newer", major, minor, MinMajor, MinMinor)
	}
	return nil
}

// =============================================================================
// VIRTUAL ENVIRONMENT
// =============================================================================

// Venv is a Python virtual environment rooted at a directory.
type Venv struct {
	Dir string
}

// NewVenv returns a Venv rooted at dir. Nothing is created until Create
// is called.
func NewVenv(dir string) *Venv {
	return &Venv{Dir: dir}
}

// Exists reports whether the environment has been created. The presence
// of pyvenv.cfg is the marker the venv module itself uses.
func (v *Venv) Exists() bool {
	_, err := os.Stat(filepath.Join(v.Dir, "pyvenv.cfg"))
	return err == nil
}

// Python returns the path of the interpreter inside the environment.
func (v *Venv) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(v.Dir, "Scripts", "python.exe")
	}
	return filepath.Join(v.Dir, "bin", "python")
}

// Create builds the environment with the given base interpreter. Creating
// an environment that already exists is a no-op.
func (v *Venv) Create(ctx context.Context, interpreter string) error {
	if v.Exists() {
		return nil
	}

	out, err := exec.CommandContext(ctx, interpreter, "-m", "venv", v.Dir).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("venv creation failed: %s: %w", msg, err)
		}
		return fmt.Errorf("venv creation failed: %w", err)
	}
	return nil
}

// PipInstall installs the packages listed in a requirements file into the
// environment, passing pip's output through to the given writer (nil
// discards it).
func (v *Venv) PipInstall(ctx context.Context, requirements string, output *os.File) error {
	if !v.Exists() {
		return fmt.Errorf("virtual environment at %s does not exist", v.Dir)
	}
	if _, err := os.Stat(requirements); err != nil {
		return fmt.Errorf("requirements file %s not found: %w", requirements, err)
	}

	cmd := exec.CommandContext(ctx, v.Python(), "-m", "pip", "install", "-r", requirements)
	if output != nil {
		cmd.Stdout = output
		cmd.Stderr = output
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pip install failed: %w", err)
	}
	return nil
}
