// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes line diffs between slide revisions.
//
// Regenerating a slide replaces its title, notes and vector document. This
// package shows what changed: each field is diffed line by line with
// diffmatchpatch and grouped into unified-diff hunks. Slide documents are
// split at tag boundaries first so a one-line SVG still diffs per element.
//
// # Key Types
//
//   - DiffLineType: Type of diff line (context, added, removed)
//   - DiffLine: Single line in a diff with type and content
//   - DiffHunk: Group of related diff lines with line numbers
//   - Diff: Complete diff result with hunks and statistics
//   - SlideDiff: Per-field diffs between two revisions of a slide
//
// # Usage
//
// Compare two revisions of a slide:
//
//	sd := diff.CompareSlides(before, after)
//	if sd.Changed() {
//	    fmt.Print(sd.Format())
//	}
package diff
