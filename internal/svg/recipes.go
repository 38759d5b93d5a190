// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"strings"

	"github.com/nhancris/KPresent/internal/model"
)

// recipe draws one layout onto a canvas that already holds the document
// root, definitions and background.
type recipe func(c *canvas, title, body string)

// recipes has exactly one entry per layout kind. Kinds without a dedicated
// design use the standard recipe.
var recipes = [...]recipe{
	model.LayoutTitleSlide:         titleSlide,
	model.LayoutTitleContent:       titleContent,
	model.LayoutSectionHeader:      sectionHeader,
	model.LayoutTwoContent:         standard,
	model.LayoutComparison:         standard,
	model.LayoutTitleOnly:          titleOnly,
	model.LayoutBlank:              standard,
	model.LayoutContentWithCaption: standard,
	model.LayoutPictureWithCaption: standard,
	model.LayoutQuote:              quote,
	model.LayoutBigNumber:          standard,
	model.LayoutSVGContent:         standard,
}

// Fails to compile unless recipes covers every layout kind.
var _ = [1]struct{}{}[len(recipes)-int(model.NumLayouts)]

func recipeFor(kind model.LayoutKind) recipe {
	if kind.Valid() && recipes[kind] != nil {
		return recipes[kind]
	}
	return standard
}

// =============================================================================
// TITLE-DOMINANT LAYOUTS
// =============================================================================

func titleSlide(c *canvas, title, body string) {
	c.b.WriteString(`<rect x="0" y="0" width="800" height="450" fill="url(#titleBgGradient)"/>`)
	c.printf(`<path d="M0 0 L400 0 L300 450 L0 450 Z" fill="%s" opacity="0.4"/>`, c.th.Accent)
	c.printf(`<path d="M800 0 L500 0 L600 450 L800 450 Z" fill="%s" opacity="0.4"/>`, c.th.Accent)

	c.label(title, 740, textStyle{
		x: 400, y: 200, middle: true, anchor: "middle",
		font: c.th.HeadingFont, size: 48, fill: c.th.TextOnPrimary,
		weight: "bold", filter: "subtleShadow",
	})
	c.paragraph(body, 600, 1.4, false, textStyle{
		x: 400, y: 280, anchor: "middle",
		font: c.th.BodyFont, size: 20, fill: c.th.TextOnPrimary,
	})
}

func sectionHeader(c *canvas, title, _ string) {
	c.printf(`<rect x="0" y="150" width="800" height="150" fill="%s"/>`, c.th.Primary)
	c.printf(`<rect x="0" y="140" width="800" height="10" fill="%s"/>`, c.th.Accent)
	c.printf(`<rect x="0" y="300" width="800" height="10" fill="%s"/>`, c.th.Accent)

	c.label(title, 740, textStyle{
		x: 400, y: 225, middle: true, anchor: "middle",
		font: c.th.HeadingFont, size: 40, fill: c.th.TextOnPrimary,
		weight: "600", letterSpacing: 2,
	})
}

func titleOnly(c *canvas, title, body string) {
	c.printf(`<path d="M0 350 Q100 320 200 350 L200 450 L0 450 Z" fill="%s" opacity="0.3"/>`, c.th.Primary)
	c.printf(`<path d="M800 100 Q700 130 600 100 L600 0 L800 0 Z" fill="%s" opacity="0.3"/>`, c.th.Secondary)

	c.label(title, 740, textStyle{
		x: 400, y: 200, middle: true, anchor: "middle",
		font: c.th.HeadingFont, size: 60, fill: c.th.TitleText, weight: "bold",
	})
	if strings.TrimSpace(body) != "" {
		c.label(body, 740, textStyle{
			x: 400, y: 270, middle: true, anchor: "middle",
			font: c.th.BodyFont, size: 30, fill: c.th.BodyText,
		})
	}
}

// =============================================================================
// CONTENT LAYOUTS
// =============================================================================

func titleContent(c *canvas, title, body string) {
	c.printf(`<rect x="0" y="0" width="800" height="80" fill="%s"/>`, c.th.Primary)
	c.label(title, 700, textStyle{
		x: 40, y: 45, middle: true,
		font: c.th.HeadingFont, size: 32, fill: c.th.TextOnPrimary, weight: "600",
	})
	c.printf(`<rect x="750" y="10" width="30" height="60" fill="%s" rx="5"/>`, c.th.Accent)

	tint := c.panelTint("rgba(255,255,255,0.08)", "rgba(0,0,0,0.04)")
	c.printf(`<rect x="30" y="100" width="470" height="330" fill="%s" rx="8"/>`, tint)
	c.paragraph(body, 450, 1.5, false, textStyle{
		x: 40, y: 120,
		font: c.th.BodyFont, size: 18, fill: c.th.BodyText,
	})

	c.printf(`<rect x="520" y="100" width="250" height="320" fill="%s" opacity="0.3" rx="10"/>`, c.th.Secondary)
	c.label("[Visual Area for Image/Chart]", 240, textStyle{
		x: 645, y: 260, middle: true, anchor: "middle",
		font: c.th.BodyFont, size: 16, fill: c.th.TextOnBackground, opacity: "0.7",
	})
}

func quote(c *canvas, title, body string) {
	c.printf(`<path d="M50 50 Q100 20 150 50 L150 150 L50 150 Z" fill="%s" opacity="0.2"/>`, c.th.Accent)
	c.printf(`<path d="M750 400 Q700 430 650 400 L650 300 L750 300 Z" fill="%s" opacity="0.2"/>`, c.th.Accent)

	if strings.TrimSpace(body) != "" {
		c.paragraph("“"+strings.TrimSpace(body)+"”", 650, 1.4, true, textStyle{
			x: 400, y: 225, anchor: "middle",
			font: c.th.BodyFont, size: 30, fill: c.th.Primary, italic: true,
		})
	}
	c.label("- "+title, 740, textStyle{
		x: 400, y: 350, middle: true, anchor: "middle",
		font: c.th.HeadingFont, size: 24, fill: c.th.BodyText, weight: "600",
	})
}

// standard is the design for every layout without a dedicated recipe.
func standard(c *canvas, title, body string) {
	c.printf(`<rect x="20" y="20" width="760" height="60" fill="%s" opacity="0.2" rx="5"/>`, c.th.Secondary)
	c.label(title, 720, textStyle{
		x: 40, y: 50, middle: true,
		font: c.th.HeadingFont, size: 28, fill: c.th.TitleText,
	})
	c.printf(`<line x1="40" y1="90" x2="760" y2="90" stroke="%s" stroke-width="2"/>`, c.th.Accent)

	tint := c.panelTint("rgba(255,255,255,0.05)", "rgba(0,0,0,0.03)")
	c.printf(`<rect x="30" y="105" width="740" height="325" fill="%s" rx="5"/>`, tint)
	c.paragraph(body, 720, 1.5, false, textStyle{
		x: 40, y: 120,
		font: c.th.BodyFont, size: 18, fill: c.th.BodyText,
	})

	c.printf(`<circle cx="50" cy="400" r="15" fill="%s" opacity="0.7"/>`, c.th.Accent)
	c.printf(`<circle cx="750" cy="50" r="10" fill="%s" opacity="0.5"/>`, c.th.Primary)
}
