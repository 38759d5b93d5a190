// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across kpresent.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteJSON: Indented JSON written through AtomicWriteFile
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth, PadWidth: Display-width aware helpers for terminal tables
//
// # Usage
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteJSON(path, presentation, 0644)
//
//	// Fit a title into a 30 column table cell
//	cell := util.PadWidth(util.TruncateWidth(title, 30), 30)
package util
