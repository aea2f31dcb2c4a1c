// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package main

import (
	"golang.org/x/sys/unix"
)

// getFreeDiskSpace returns the free disk space in bytes for the given path
// on Unix systems.
func getFreeDiskSpace(path string) (uint64, error) {
	var stat unix.Statfs_t

	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}

	// Bavail is the space available to unprivileged users, which is what
	// matters here since the installer refuses to run as root.
	return stat.Bavail * uint64(stat.Bsize), nil
}
