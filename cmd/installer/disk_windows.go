// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package main

import (
	"syscall"
	"unsafe"
)

var (
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	procDiskFreeSpaceEx = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// getFreeDiskSpace returns the bytes available to the calling user under
// path. Uses GetDiskFreeSpaceExW directly; x/sys/unix has no Windows
// counterpart of Statfs. The caller-visible figure respects quotas, which
// matters for a per-user install.
func getFreeDiskSpace(path string) (uint64, error) {
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}

	var availToCaller, totalBytes, totalFree uint64
	ret, _, callErr := procDiskFreeSpaceEx.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&availToCaller)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if ret == 0 {
		return 0, callErr
	}
	return availToCaller, nil
}
