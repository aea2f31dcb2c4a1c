// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across webllama.
//
// String Utilities:
//   - TruncateRunes / TruncateRunesNoEllipsis: UTF-8 safe truncation
//   - StringWidth: display-width aware measurement
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Abbreviate long identifiers for display
//	display := util.TruncateRunesNoEllipsis(digest, 19)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
