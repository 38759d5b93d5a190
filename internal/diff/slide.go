// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"

	"github.com/nhancris/KPresent/internal/model"
)

// SlideDiff holds per-field diffs between two revisions of a slide.
type SlideDiff struct {
	SlideID string `json:"slide_id"`
	Title   *Diff  `json:"title"`
	Notes   *Diff  `json:"notes"`
	SVG     *Diff  `json:"svg"`
}

// CompareSlides diffs the text fields of two slide revisions.
func CompareSlides(before, after model.Slide) SlideDiff {
	return SlideDiff{
		SlideID: after.ID,
		Title:   ComputeDiff("title", before.Title, after.Title),
		Notes:   ComputeDiff("notes", before.SpeakerNotes, after.SpeakerNotes),
		SVG:     ComputeDiff("svg", splitTags(before.SVGContent), splitTags(after.SVGContent)),
	}
}

// Changed reports whether any field differs.
func (sd SlideDiff) Changed() bool {
	return sd.Title.Changed() || sd.Notes.Changed() || sd.SVG.Changed()
}

// Fields returns the field diffs in display order.
func (sd SlideDiff) Fields() []*Diff {
	return []*Diff{sd.Title, sd.Notes, sd.SVG}
}

// Summary joins the field summaries.
func (sd SlideDiff) Summary() string {
	parts := make([]string, 0, 3)
	for _, d := range sd.Fields() {
		parts = append(parts, d.Summary())
	}
	return strings.Join(parts, ", ")
}

// Format returns unified diffs of the changed fields.
func (sd SlideDiff) Format() string {
	var sb strings.Builder
	for _, d := range sd.Fields() {
		if d.Changed() {
			sb.WriteString(FormatUnifiedDiff(d))
		}
	}
	return sb.String()
}

// splitTags puts each element of a vector document on its own line.
func splitTags(doc string) string {
	return strings.ReplaceAll(doc, "><", ">\n<")
}
