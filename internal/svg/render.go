// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/theme"
)

// Canvas dimensions in viewBox units.
const (
	CanvasWidth  = 800
	CanvasHeight = 450
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer synthesizes slide documents. The zero value is not usable; call
// NewRenderer.
type Renderer struct {
	measurer Measurer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMeasurer replaces the text width estimator.
func WithMeasurer(m Measurer) Option {
	return func(r *Renderer) {
		if m != nil {
			r.measurer = m
		}
	}
}

// NewRenderer returns a renderer using the heuristic measurer unless an
// option substitutes another.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{measurer: HeuristicMeasurer{Factor: DefaultCharWidthFactor}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render renders with the default renderer.
func Render(kind model.LayoutKind, title, body string, t model.Theme) string {
	return defaultRenderer.Render(kind, title, body, t)
}

// Render returns a complete SVG document for one slide. Title and body are
// plain text; they are escaped here.
func (r *Renderer) Render(kind model.LayoutKind, title, body string, t model.Theme) string {
	title, body = Sanitize(title), Sanitize(body)
	c := &canvas{
		th:       escapeColors(theme.Resolve(t)),
		measurer: r.measurer,
		kind:     kind,
	}

	c.b.WriteString(`<svg width="100%" height="100%" viewBox="0 0 800 450" xmlns="http://www.w3.org/2000/svg">`)
	c.writeDefs()
	c.printf(`<rect width="800" height="450" fill="%s"/>`, c.th.Background)

	recipeFor(kind)(c, title, body)

	c.b.WriteString(`</svg>`)
	return c.b.String()
}

// =============================================================================
// CANVAS
// =============================================================================

type canvas struct {
	b        strings.Builder
	th       theme.Resolved
	measurer Measurer
	kind     model.LayoutKind
}

func (c *canvas) printf(format string, args ...any) {
	fmt.Fprintf(&c.b, format, args...)
}

func (c *canvas) writeDefs() {
	c.printf(`<defs>`+
		`<linearGradient id="titleBgGradient" x1="0%%" y1="0%%" x2="0%%" y2="100%%">`+
		`<stop offset="0%%" style="stop-color:%s; stop-opacity:0.9"/>`+
		`<stop offset="100%%" style="stop-color:%s; stop-opacity:0.7"/>`+
		`</linearGradient>`+
		`<linearGradient id="accentGradient" x1="0%%" y1="0%%" x2="100%%" y2="100%%">`+
		`<stop offset="0%%" style="stop-color:%s; stop-opacity:1"/>`+
		`<stop offset="60%%" style="stop-color:%s; stop-opacity:0.8"/>`+
		`<stop offset="100%%" style="stop-color:%s; stop-opacity:0.7"/>`+
		`</linearGradient>`+
		`<filter id="subtleShadow" x="-20%%" y="-20%%" width="140%%" height="140%%">`+
		`<feGaussianBlur in="SourceAlpha" stdDeviation="2"/>`+
		`<feOffset dx="1" dy="1" result="offsetblur"/>`+
		`<feFlood flood-color="%s" flood-opacity="0.3"/>`+
		`<feComposite in2="offsetblur" operator="in"/>`+
		`<feMerge><feMergeNode/><feMergeNode in="SourceGraphic"/></feMerge>`+
		`</filter>`+
		`</defs>`,
		c.th.Primary, c.th.Secondary,
		c.th.Accent, c.th.Primary, c.th.Secondary,
		c.th.BodyText)
}

// escapeColors guards attribute values against themes that were never
// validated.
func escapeColors(r theme.Resolved) theme.Resolved {
	for _, p := range []*string{
		&r.Background, &r.TitleText, &r.BodyText, &r.Primary,
		&r.Secondary, &r.Accent, &r.TextOnPrimary, &r.TextOnBackground,
	} {
		*p = Escape(*p)
	}
	return r
}

// panelTint returns a translucent overlay that keeps text legible on the
// resolved background.
func (c *canvas) panelTint(onDark, onLight string) string {
	if c.th.Dark {
		return onDark
	}
	return onLight
}

// textStyle describes a <text> element.
type textStyle struct {
	x, y          int
	font          string
	size          int
	fill          string
	weight        string
	italic        bool
	anchor        string
	middle        bool // dominant-baseline="middle"
	letterSpacing int
	filter        string
	opacity       string
}

func (st textStyle) open() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<text x="%d" y="%d"`, st.x, st.y)
	if st.middle {
		b.WriteString(` dominant-baseline="middle"`)
	}
	if st.anchor != "" {
		fmt.Fprintf(&b, ` text-anchor="%s"`, st.anchor)
	}
	fmt.Fprintf(&b, ` font-family="%s" font-size="%d" fill="%s"`, Escape(st.font), st.size, st.fill)
	if st.weight != "" {
		fmt.Fprintf(&b, ` font-weight="%s"`, st.weight)
	}
	if st.italic {
		b.WriteString(` font-style="italic"`)
	}
	if st.letterSpacing > 0 {
		fmt.Fprintf(&b, ` letter-spacing="%d"`, st.letterSpacing)
	}
	if st.filter != "" {
		fmt.Fprintf(&b, ` filter="url(#%s)"`, st.filter)
	}
	if st.opacity != "" {
		fmt.Fprintf(&b, ` opacity="%s"`, st.opacity)
	}
	b.WriteString(">")
	return b.String()
}

// label writes single-line text. The font shrinks to as little as 60% of its
// size to fit maxWidth before the text is cut with an ellipsis.
func (c *canvas) label(text string, maxWidth float64, st textStyle) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}
	minSize := st.size * 6 / 10
	opts := c.wrapOptions(maxWidth, 1, st)
	for opts.width(text) > maxWidth && st.size > minSize {
		st.size--
		opts.FontSize = float64(st.size)
	}
	c.b.WriteString(st.open())
	c.b.WriteString(Escape(Fit(text, opts)))
	c.b.WriteString("</text>")
}

// paragraph writes wrapped text as one <text> with a <tspan> per line. When
// centered, the block is shifted up so its lines center on st.y.
func (c *canvas) paragraph(text string, maxWidth, lineHeight float64, centered bool, st textStyle) {
	lines := Wrap(text, c.wrapOptions(maxWidth, MaxLines(c.kind), st))
	if len(lines) == 0 {
		return
	}
	if centered {
		st.y -= int(math.Round(float64(len(lines)-1) * lineHeight * float64(st.size) / 2))
	}
	if st.weight == "" {
		st.weight = "normal"
	}
	if st.anchor == "" {
		st.anchor = "start"
	}

	c.b.WriteString(st.open())
	lh := strconv.FormatFloat(lineHeight, 'f', -1, 64)
	for i, line := range lines {
		dy := "0"
		if i > 0 {
			dy = lh
		}
		c.printf(`<tspan x="%d" dy="%sem">%s</tspan>`, st.x, dy, Escape(line))
	}
	c.b.WriteString("</text>")
}

func (c *canvas) wrapOptions(maxWidth float64, maxLines int, st textStyle) WrapOptions {
	return WrapOptions{
		MaxWidth: maxWidth,
		MaxLines: maxLines,
		FontSize: float64(st.size),
		Extra:    float64(st.letterSpacing),
		Measurer: c.measurer,
	}
}
