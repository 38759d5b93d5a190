// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Human-readable rendering of presentations.

package cli

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/util"
)

// Table column widths in terminal cells. colTitle is the minimum; titles
// take whatever a wider terminal leaves.
const (
	colIndex  = 4
	colLayout = 16
	colTitle  = 40
	colID     = 38

	// Cells used by everything but the title in each table row.
	slideRowFixed   = 1 + colIndex + 1 + colLayout + 1
	summaryRowFixed = colID + 1 + 1 + len("  0 slides") + 2 + len("59m ago")
)

// titleWidth returns the title column width for a row with fixed cells
// already used.
func titleWidth(w io.Writer, fixed int) int {
	return max(colTitle, TerminalWidth(w)-fixed)
}

// highlight colors an SVG document for the terminal. Plain text is
// returned when colors are off or the lexer fails.
func highlight(doc string) string {
	if !ColorsEnabled() {
		return doc
	}
	lexer := lexers.Get("svg")
	if lexer == nil {
		lexer = lexers.Analyse(doc)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, doc)
	if err != nil {
		return doc
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return doc
	}
	return buf.String()
}

// renderMarkdown renders speaker notes. Non-terminals get the notty style.
func renderMarkdown(w io.Writer, md string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(76)}
	if IsWriterTTY(w) && ColorsEnabled() {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

// printPresentation writes the deck header and a slide table.
func printPresentation(w io.Writer, p *model.Presentation, notes, docs bool) {
	title := GetStyleForTTY(TitleStyle)
	fmt.Fprintln(w, title.Render(p.Title))
	fmt.Fprintln(w, RenderSeparator(60))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("ID"), p.ID)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Topic"), p.Topic)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Theme"), p.Theme.Name)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Mode"), p.Mode)
	if p.Tone != "" {
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Tone"), p.Tone)
	}
	if p.Style != "" {
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Style"), p.Style)
	}
	fmt.Fprintf(w, "%s%d\n", RenderLabel("Slides"), len(p.Slides))
	fmt.Fprintln(w)

	dim := GetStyleForTTY(DimStyle)
	tw := titleWidth(w, slideRowFixed)
	for i, s := range p.Slides {
		marker := " "
		if s.ID == p.ActiveSlideID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s %s %s\n",
			marker,
			util.PadWidth(fmt.Sprintf("%d.", i+1), colIndex),
			util.PadWidth(s.Layout.String(), colLayout),
			util.TruncateWidth(util.OneLine(s.Title), tw))
		fmt.Fprintln(w, dim.Render("     "+s.ID))
		if notes && s.SpeakerNotes != "" {
			fmt.Fprint(w, renderMarkdown(w, s.SpeakerNotes))
		}
		if docs {
			fmt.Fprintln(w, highlight(s.SVGContent))
		}
	}
}

// printSummaries writes one line per stored presentation.
func printSummaries(w io.Writer, list []storage.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(w, GetStyleForTTY(DimStyle).Render("No presentations stored."))
		return
	}
	tw := titleWidth(w, summaryRowFixed)
	for _, s := range list {
		fmt.Fprintf(w, "%s %s %3d slides  %s\n",
			util.PadWidth(s.ID, colID),
			util.PadWidth(util.TruncateWidth(util.OneLine(s.Title), tw), tw),
			s.SlideCount,
			formatAge(time.Since(s.UpdatedAt)))
	}
}

// sourceTag marks slides that fell back to local synthesis.
func sourceTag(source string) string {
	if source == "" {
		return ""
	}
	if source == telemetry.SourceFallback {
		return GetStyleForTTY(WarningStyle).Render("[" + source + "]")
	}
	return GetStyleForTTY(DimStyle).Render("[" + source + "]")
}
