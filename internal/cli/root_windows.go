//go:build windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

// runningAsRoot always returns false on Windows. Elevation is handled
// by the installer, not the launcher.
func runningAsRoot() bool {
	return false
}
