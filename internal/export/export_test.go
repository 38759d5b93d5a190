// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/svg"
	"github.com/nhancris/KPresent/internal/theme"
)

func testPresentation() *model.Presentation {
	th := theme.Shipped()[0]
	return &model.Presentation{
		ID:         "id-export",
		Title:      "Tides & <Power>",
		Topic:      "Tides & <Power>",
		UserPrompt: "Tides & <Power>, and the sea",
		Theme:      th,
		Mode:       model.ModeNormal,
		Tone:       "Formal",
		CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Slides: []model.Slide{
			{
				ID:           "id-s1",
				Layout:       model.LayoutTitleSlide,
				Title:        "Tides & <Power>",
				SVGContent:   svg.Render(model.LayoutTitleSlide, "Tides & <Power>", "Body", th),
				SpeakerNotes: "Open with a story.\nThen the data.",
				Transition:   model.TransitionFadeIn,
			},
			{
				ID:           "id-s2",
				Layout:       model.LayoutQuote,
				Title:        "A *quote*",
				SpeakerNotes: "Pause here.",
				Transition:   model.TransitionZoomIn,
			},
		},
		ActiveSlideID: "id-s1",
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"json", "html", "HTM", "markdown", " md ", "pptx"} {
		e, err := New(name, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.FileExtension())
		assert.NotEmpty(t, e.MimeType())
	}
	_, err := New("docx", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, []string{"htm", "html", "json", "markdown", "md", "pptx"}, Formats())
}

func TestNilPresentation(t *testing.T) {
	for _, e := range []Exporter{NewJSONExporter(nil), NewHTMLExporter(nil), NewMarkdownExporter(nil)} {
		_, err := e.Export(nil)
		assert.ErrorIs(t, err, ErrNilPresentation)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	p := testPresentation()
	data, err := NewJSONExporter(nil).Export(p)
	require.NoError(t, err)

	var back model.Presentation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Title, back.Title)
	assert.Equal(t, p.Slides[1].Layout, back.Slides[1].Layout)
	assert.Contains(t, string(data), `"layout": "quote_slide"`)
}

func TestPPTXUnsupported(t *testing.T) {
	e, err := New("pptx", nil)
	require.NoError(t, err)
	_, err = e.Export(testPresentation())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, ".pptx", e.FileExtension())
}

func TestHTMLExport(t *testing.T) {
	p := testPresentation()
	data, err := NewHTMLExporter(nil).Export(p)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Tides &amp; &lt;Power&gt;</title>")
	assert.NotContains(t, out, "<Power>")
	assert.Contains(t, out, `<section class="slide active" id="id-s1" data-transition="fade_in">`)
	assert.Contains(t, out, "Open with a story.<br>Then the data.")
	assert.Contains(t, out, `<div class="canvas empty">`)
	assert.Contains(t, out, "--primary: #0A2463;")

	// Slide documents are embedded as data URIs, never inline markup.
	assert.NotContains(t, out, "<svg")
	enc := base64.StdEncoding.EncodeToString([]byte(p.Slides[0].SVGContent))
	assert.Contains(t, out, "data:image/svg+xml;base64,"+enc)
}

func TestHTMLExportWithoutNotes(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeNotes = false
	opts.IncludeMetadata = false
	data, err := NewHTMLExporter(opts).Export(testPresentation())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Speaker notes")
	assert.NotContains(t, string(data), `class="header"`)
}

func TestCSSValue(t *testing.T) {
	assert.Equal(t, "Georgia", cssValue("Georgia"))
	assert.Equal(t, "x/stylescript", cssValue(`x</style><script>`))
}

func TestMarkdownExport(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(testPresentation())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "---\ntitle: \"Tides & <Power>\"\n"))
	assert.Contains(t, out, "# Tides & <Power>\n")
	assert.Contains(t, out, "## 1. Tides & <Power>\n")
	assert.Contains(t, out, "## 2. A \\*quote\\*\n")
	assert.Contains(t, out, "*Layout: quote\\_slide | Transition: zoom\\_in*")
	assert.Contains(t, out, "Open with a story.\nThen the data.")
	assert.Contains(t, out, "- **Tone**: Formal")
	assert.NotContains(t, out, "```svg")
}

func TestMarkdownExportWithSVG(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeSVG = true
	data, err := NewMarkdownExporter(opts).Export(testPresentation())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "```svg\n<svg"))
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(dir, "out")

	path, err := ExportToFile(testPresentation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "presentation_Tides_&_-Power-_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## 2.")
}

func TestExportToFileUnsupported(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	_, err := ExportToFile(testPresentation(), PPTXExporter{}, opts)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "presentation", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}
