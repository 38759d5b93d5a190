// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/theme"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports presentations to a single HTML page with embedded CSS.
// Slide documents are embedded as data URIs so they cannot run script.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a presentation to HTML format.
func (e *HTMLExporter) Export(p *model.Presentation) ([]byte, error) {
	if p == nil {
		return nil, ErrNilPresentation
	}
	r := theme.Resolve(p.Theme)

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(p.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"kpresent\">\n")
	if !p.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", p.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(e.getCSS(r))
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(p))
	}

	sb.WriteString("        <main class=\"deck\">\n")
	for i := range p.Slides {
		sb.WriteString(e.renderSlide(i, &p.Slides[i], p.ActiveSlideID))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>kpresent</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(navScript)
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(p *model.Presentation) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(p.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Theme:</strong> %s</span>\n", html.EscapeString(p.Theme.Name)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Mode:</strong> %s</span>\n", html.EscapeString(p.Mode.String())))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Slides:</strong> %d</span>\n", len(p.Slides)))
	if p.Tone != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tone:</strong> %s</span>\n", html.EscapeString(p.Tone)))
	}
	if p.Style != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Style:</strong> %s</span>\n", html.EscapeString(p.Style)))
	}
	if !p.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(p.CreatedAt)))
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderSlide renders a single slide with its notes.
func (e *HTMLExporter) renderSlide(i int, s *model.Slide, activeID string) string {
	var sb strings.Builder

	class := "slide"
	if s.ID == activeID {
		class += " active"
	}
	sb.WriteString(fmt.Sprintf("            <section class=\"%s\" id=\"%s\" data-transition=\"%s\">\n",
		class, html.EscapeString(s.ID), html.EscapeString(string(s.Transition))))
	sb.WriteString(fmt.Sprintf("                <h2><span class=\"num\">%d</span> %s</h2>\n", i+1, html.EscapeString(s.Title)))

	if s.SVGContent != "" {
		uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(s.SVGContent))
		sb.WriteString(fmt.Sprintf("                <img class=\"canvas\" src=\"%s\" alt=\"%s\" width=\"800\" height=\"450\">\n",
			uri, html.EscapeString(s.Title)))
	} else {
		sb.WriteString("                <div class=\"canvas empty\">No slide image</div>\n")
	}

	if e.options.IncludeNotes && s.SpeakerNotes != "" {
		sb.WriteString("                <details class=\"notes\">\n")
		sb.WriteString("                    <summary>Speaker notes</summary>\n")
		sb.WriteString(fmt.Sprintf("                    <p>%s</p>\n",
			strings.ReplaceAll(html.EscapeString(s.SpeakerNotes), "\n", "<br>")))
		sb.WriteString("                </details>\n")
	}
	sb.WriteString("            </section>\n")

	return sb.String()
}

// =============================================================================
// EMBEDDED CSS AND SCRIPT
// =============================================================================

// getCSS returns the embedded CSS, colored from the presentation theme.
func (e *HTMLExporter) getCSS(r theme.Resolved) string {
	return fmt.Sprintf(`    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --primary: %s;
            --accent: %s;
            --bg: %s;
            --text: %s;
            --font-heading: "%s", Georgia, serif;
            --font-body: "%s", Helvetica, Arial, sans-serif;
        }

        body {
            font-family: var(--font-body);
            line-height: 1.6;
            color: #24292e;
            background: #eef0f3;
            padding: 20px;
        }

        .container { max-width: 880px; margin: 0 auto; }

        .header {
            padding: 24px 32px;
            background: var(--primary);
            color: #ffffff;
            border-radius: 12px 12px 0 0;
        }

        .header h1 { font-family: var(--font-heading); font-size: 28px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; opacity: 0.9; }

        .deck { padding: 24px 0; }

        .slide {
            background: #ffffff;
            border-left: 4px solid transparent;
            border-radius: 8px;
            padding: 16px 20px;
            margin-bottom: 24px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.08);
        }

        .slide.active { border-left-color: var(--accent); }
        .slide h2 { font-family: var(--font-heading); font-size: 18px; margin-bottom: 12px; }
        .slide .num { color: var(--accent); margin-right: 6px; }

        .canvas {
            display: block;
            width: 100%%;
            height: auto;
            aspect-ratio: 16 / 9;
            background: var(--bg);
            border-radius: 4px;
        }

        .canvas.empty {
            display: flex;
            align-items: center;
            justify-content: center;
            color: var(--text);
        }

        .notes { margin-top: 12px; font-size: 14px; color: #586069; }
        .notes summary { cursor: pointer; font-weight: 600; }
        .notes p { margin-top: 8px; }

        .footer { text-align: center; font-size: 12px; color: #6a737d; padding: 16px; }
    </style>
`, cssValue(r.Primary), cssValue(r.Accent), cssValue(r.Background), cssValue(r.TextOnBackground),
		cssValue(r.HeadingFont), cssValue(r.BodyFont))
}

// cssValue drops characters that could end a declaration or the style block.
func cssValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\\', ';', '{', '}':
			return -1
		}
		return r
	}, s)
}

// navScript moves between slides with the arrow keys.
const navScript = `    <script>
        (function () {
            var slides = Array.prototype.slice.call(document.querySelectorAll('.slide'));
            var current = Math.max(0, slides.findIndex(function (s) { return s.classList.contains('active'); }));
            function show(i) {
                if (i < 0 || i >= slides.length) { return; }
                slides[current].classList.remove('active');
                current = i;
                slides[current].classList.add('active');
                slides[current].scrollIntoView({ behavior: 'smooth', block: 'center' });
            }
            document.addEventListener('keydown', function (ev) {
                if (ev.key === 'ArrowDown' || ev.key === 'ArrowRight') { show(current + 1); }
                if (ev.key === 'ArrowUp' || ev.key === 'ArrowLeft') { show(current - 1); }
            });
        })();
    </script>
`
