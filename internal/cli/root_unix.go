//go:build !windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "os"

// runningAsRoot reports whether the process has root privileges.
// webllama refuses to run as root: the venv, config, and desktop entry
// all belong in the invoking user's home directory.
func runningAsRoot() bool {
	return os.Geteuid() == 0
}
