// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhancris/KPresent/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports presentations to a Markdown outline.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a presentation to Markdown format.
func (e *MarkdownExporter) Export(p *model.Presentation) ([]byte, error) {
	if p == nil {
		return nil, ErrNilPresentation
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(p.Title)))
		sb.WriteString(fmt.Sprintf("theme: %s\n", escapeYAML(p.Theme.Name)))
		sb.WriteString(fmt.Sprintf("mode: %s\n", p.Mode))
		sb.WriteString(fmt.Sprintf("slides: %d\n", len(p.Slides)))
		if !p.CreatedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("date: %s\n", p.CreatedAt.Format(time.RFC3339)))
		}
		sb.WriteString("generator: kpresent\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(p.Title)))

	if e.options.IncludeMetadata {
		if p.UserPrompt != "" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(strings.TrimSpace(p.UserPrompt), "\n", "\n> ")))
		}
		sb.WriteString(fmt.Sprintf("- **Theme**: %s\n", escapeMarkdown(p.Theme.Name)))
		if p.Tone != "" {
			sb.WriteString(fmt.Sprintf("- **Tone**: %s\n", escapeMarkdown(p.Tone)))
		}
		if p.Style != "" {
			sb.WriteString(fmt.Sprintf("- **Style**: %s\n", escapeMarkdown(p.Style)))
		}
		if !p.CreatedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(p.CreatedAt)))
		}
		sb.WriteString("\n---\n\n")
	}

	for i, s := range p.Slides {
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, escapeMarkdown(s.Title)))
		sb.WriteString(fmt.Sprintf("*Layout: %s | Transition: %s*\n\n", escapeMarkdown(s.Layout.String()), escapeMarkdown(string(s.Transition))))

		if e.options.IncludeNotes && s.SpeakerNotes != "" {
			sb.WriteString("**Speaker notes**\n\n")
			sb.WriteString(strings.TrimSpace(s.SpeakerNotes))
			sb.WriteString("\n\n")
		}

		if e.options.IncludeSVG && s.SVGContent != "" {
			sb.WriteString("```svg\n")
			sb.WriteString(s.SVGContent)
			sb.WriteString("\n```\n\n")
		}

		if i < len(p.Slides)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
