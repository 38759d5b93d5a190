// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides presentation export functionality for kpresent.
//
// This package serializes a presentation to a file format and optionally
// writes it to disk and opens it in the default application.
//
// # Key Types
//
//   - Exporter: Main export interface
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - json: The full presentation record, suitable for re-import
//   - html: Self-contained viewer with every slide and its notes
//   - markdown: Outline with speaker notes
//   - pptx: Registered but unsupported; returns ErrUnsupported
//
// # Usage
//
// Export a presentation:
//
//	exporter, err := export.New("html", nil)
//	data, err := exporter.Export(p)
//
// Export to a file:
//
//	path, err := export.ExportToFile(p, exporter, opts)
package export
