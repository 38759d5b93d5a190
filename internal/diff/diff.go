// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// =============================================================================
// DIFF TYPES
// =============================================================================

// DiffLineType represents the type of a diff line.
type DiffLineType int

const (
	// DiffLineContext represents unchanged context lines
	DiffLineContext DiffLineType = iota
	// DiffLineAdded represents added lines
	DiffLineAdded
	// DiffLineRemoved represents removed lines
	DiffLineRemoved
)

// String returns the string representation of a diff line type.
func (t DiffLineType) String() string {
	switch t {
	case DiffLineContext:
		return "context"
	case DiffLineAdded:
		return "added"
	case DiffLineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the diff prefix character for this line type.
func (t DiffLineType) Prefix() string {
	switch t {
	case DiffLineAdded:
		return "+"
	case DiffLineRemoved:
		return "-"
	default:
		return " "
	}
}

// DiffLine represents a single line in a diff.
type DiffLine struct {
	Type    DiffLineType `json:"type"`
	Content string       `json:"content"`
	OldLine int          `json:"old_line,omitempty"` // 0 if added
	NewLine int          `json:"new_line,omitempty"` // 0 if removed
}

// DiffHunk represents a contiguous section of changes.
type DiffHunk struct {
	OldStart int        `json:"old_start"`
	OldCount int        `json:"old_count"`
	NewStart int        `json:"new_start"`
	NewCount int        `json:"new_count"`
	Lines    []DiffLine `json:"lines"`
}

// DiffStats holds statistics about a diff.
type DiffStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Diff is the line diff of one text field.
type Diff struct {
	Name  string     `json:"name"`
	Hunks []DiffHunk `json:"hunks,omitempty"`
	Stats DiffStats  `json:"stats"`
}

// Changed reports whether any line differs.
func (d *Diff) Changed() bool {
	return d.Stats.Additions > 0 || d.Stats.Deletions > 0
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

// ComputeDiff diffs old and new content line by line.
func ComputeDiff(name, oldContent, newContent string) *Diff {
	d := &Diff{Name: name}
	lines := lineDiff(oldContent, newContent)
	for _, l := range lines {
		switch l.Type {
		case DiffLineAdded:
			d.Stats.Additions++
		case DiffLineRemoved:
			d.Stats.Deletions++
		}
	}
	d.Hunks = groupIntoHunks(lines)
	return d
}

// lineDiff runs diffmatchpatch over line tokens and numbers the result.
// Each distinct line is encoded as one rune so the diff never splits a line.
func lineDiff(before, after string) []DiffLine {
	var table lineTable
	beforeRunes := table.encode(before)
	afterRunes := table.encode(after)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(beforeRunes, afterRunes, false)

	var lines []DiffLine
	oldLine, newLine := 1, 1
	for _, chunk := range diffs {
		for _, text := range table.decode(chunk.Text) {
			switch chunk.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, DiffLine{Type: DiffLineContext, Content: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, DiffLine{Type: DiffLineRemoved, Content: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, DiffLine{Type: DiffLineAdded, Content: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// lineTable maps distinct lines to runes and back.
type lineTable struct {
	lines []string
	index map[string]rune
}

// surrogateGap is the size of the UTF-16 surrogate block, which string
// conversion would turn into U+FFFD.
const surrogateGap = 0xE000 - 0xD800

func (t *lineTable) encode(content string) []rune {
	if t.index == nil {
		t.index = make(map[string]rune)
	}
	lines := splitLines(terminate(content))
	out := make([]rune, 0, len(lines))
	for _, line := range lines {
		r, ok := t.index[line]
		if !ok {
			r = rune(len(t.lines))
			if r >= 0xD800 {
				r += surrogateGap
			}
			t.index[line] = r
			t.lines = append(t.lines, line)
		}
		out = append(out, r)
	}
	return out
}

func (t *lineTable) decode(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		if r >= 0xE000 {
			r -= surrogateGap
		}
		out = append(out, t.lines[r])
	}
	return out
}

// terminate adds a final newline so the last line compares equal to the same
// line in the middle of another text.
func terminate(s string) string {
	if s != "" && !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// splitLines splits content into lines, dropping the empty line after a
// final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// groupIntoHunks keeps changed lines plus contextLines of context on each
// side, merging changes whose context overlaps.
func groupIntoHunks(lines []DiffLine) []DiffHunk {
	var hunks []DiffHunk
	i := 0
	for i < len(lines) {
		if lines[i].Type == DiffLineContext {
			i++
			continue
		}
		start := max(0, i-contextLines)
		end := i
		// Extend while another change starts within the trailing context.
		for j := i; j < len(lines) && j <= end+2*contextLines; j++ {
			if lines[j].Type != DiffLineContext {
				end = j
			}
		}
		stop := min(len(lines), end+contextLines+1)
		hunks = append(hunks, makeHunk(lines[start:stop]))
		i = stop
	}
	return hunks
}

func makeHunk(lines []DiffLine) DiffHunk {
	h := DiffHunk{Lines: append([]DiffLine(nil), lines...)}
	for _, l := range lines {
		if l.Type != DiffLineAdded {
			if h.OldStart == 0 {
				h.OldStart = l.OldLine
			}
			h.OldCount++
		}
		if l.Type != DiffLineRemoved {
			if h.NewStart == 0 {
				h.NewStart = l.NewLine
			}
			h.NewCount++
		}
	}
	return h
}

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// FormatUnifiedDiff returns the diff in standard unified diff format.
func FormatUnifiedDiff(d *Diff) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- a/%s\n", d.Name))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", d.Name))

	for _, hunk := range d.Hunks {
		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldCount,
			hunk.NewStart, hunk.NewCount))
		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.Prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Summary returns a short description such as "title +1 -1".
func (d *Diff) Summary() string {
	if !d.Changed() {
		return d.Name + " unchanged"
	}
	parts := []string{d.Name}
	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}
	return strings.Join(parts, " ")
}
