// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// desktop.go - XDG desktop entry installation for webllama.
//
// Writes an application launcher to ~/.local/share/applications so the
// web app shows up in desktop menus. Linux only; other platforms report
// the feature as unsupported.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jeranaias/webllama/internal/config"
)

// desktopEntryName is the XDG desktop file name.
const desktopEntryName = "webllama.desktop"

// DesktopEntrySupported reports whether desktop entries can be installed
// on this platform.
func DesktopEntrySupported() bool {
	return runtime.GOOS == "linux"
}

// InstallDesktopEntry writes the desktop entry and returns its path.
// Overwrites any existing entry so repeated installs stay current.
func InstallDesktopEntry(cfg *config.Config) (string, error) {
	if !DesktopEntrySupported() {
		return "", fmt.Errorf("desktop entries are not supported on %s", runtime.GOOS)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("could not determine executable path: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".local", "share", "applications")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create applications directory: %w", err)
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=webllama
Comment=Local LLM web app on %s
Exec=%s launch
Terminal=true
Categories=Development;Utility;
`, cfg.Endpoint(), exe)

	path := filepath.Join(dir, desktopEntryName)
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return "", fmt.Errorf("could not write desktop entry: %w", err)
	}

	return path, nil
}

// RemoveDesktopEntry deletes the desktop entry if present.
func RemoveDesktopEntry() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".local", "share", "applications", desktopEntryName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
