// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

// Rune-aware string helpers. Truncating by byte index can split a
// multi-byte UTF-8 sequence; everything here counts runes or columns.

// TruncateRunes truncates s to at most maxRunes characters, appending
// "..." when something was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateRunesNoEllipsis truncates s to at most maxRunes characters.
// Used for fixed-width fields like layer digests, where an ellipsis
// would waste columns.
func TruncateRunesNoEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// StringWidth returns the display width of s in terminal columns,
// counting double-width (CJK) characters as 2.
func StringWidth(s string) int {
	width := 0
	for _, r := range s {
		width += runeWidth(r)
	}
	return width
}

// runeWidth covers the common double-width ranges. Model names and
// status lines rarely stray beyond these; anything fancier would need
// github.com/mattn/go-runewidth.
func runeWidth(r rune) int {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return 2
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return 2
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return 2
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return 2
	case r >= 0xAC00 && r <= 0xD7AF: // Hangul Syllables
		return 2
	case r >= 0xFF00 && r <= 0xFFEF: // Fullwidth Forms
		return 2
	}
	return 1
}
