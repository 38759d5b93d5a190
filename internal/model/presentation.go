// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// THEME
// =============================================================================

// ColorPalette holds a theme's colors as #RRGGBB strings. The slide-specific
// fields are optional and fall back to palette colors when empty.
type ColorPalette struct {
	Primary          string `json:"primary" yaml:"primary"`
	Secondary        string `json:"secondary" yaml:"secondary"`
	Accent           string `json:"accent" yaml:"accent"`
	TextOnPrimary    string `json:"textOnPrimary" yaml:"text_on_primary"`
	TextOnSecondary  string `json:"textOnSecondary" yaml:"text_on_secondary"`
	Background       string `json:"background" yaml:"background"`
	TextOnBackground string `json:"textOnBackground" yaml:"text_on_background"`

	SlideBackground string `json:"slideBackground,omitempty" yaml:"slide_background,omitempty"`
	TitleText       string `json:"titleText,omitempty" yaml:"title_text,omitempty"`
	BodyText        string `json:"bodyText,omitempty" yaml:"body_text,omitempty"`
}

// FontPairing holds CSS font-family lists for headings and body text.
type FontPairing struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

// Theme is the visual identity of a presentation. Themes are values: edits
// produce a new Theme rather than mutating a shared one.
type Theme struct {
	ID                string       `json:"id" yaml:"id"`
	Name              string       `json:"name" yaml:"name"`
	Fonts             FontPairing  `json:"fontPairing" yaml:"fonts"`
	Colors            ColorPalette `json:"colorPalette" yaml:"colors"`
	DefaultTransition Transition   `json:"defaultSlideTransition" yaml:"default_transition"`
}

// =============================================================================
// SLIDES
// =============================================================================

// SlidePlanItem is an instruction for one slide, produced by the planner
// before any content exists.
type SlidePlanItem struct {
	Layout LayoutKind `json:"layout"`
	Focus  string     `json:"focus"`
}

// Slide is a fully generated slide.
type Slide struct {
	ID     string     `json:"id"`
	Layout LayoutKind `json:"layout"`
	Title  string     `json:"title"`

	// SVGContent is the rendered vector document. Empty means none.
	SVGContent   string     `json:"svgContent,omitempty"`
	SpeakerNotes string     `json:"speakerNotes"`
	Transition   Transition `json:"slideTransition"`

	BackgroundColor string `json:"backgroundColor,omitempty"`

	// ThemeDescription is the theme context carried forward for regeneration.
	ThemeDescription string `json:"themeDescription,omitempty"`
}

// =============================================================================
// PRESENTATION
// =============================================================================

// Presentation is an ordered deck of slides plus the context it was
// generated from. Slide order is display order.
type Presentation struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Slides        []Slide        `json:"slides"`
	Theme         Theme          `json:"theme"`
	UserPrompt    string         `json:"userPrompt"`
	Topic         string         `json:"originalTopic"`
	Tone          string         `json:"requestedTone,omitempty"`
	Style         string         `json:"requestedStyle,omitempty"`
	ActiveSlideID string         `json:"activeSlideId,omitempty"`
	Mode          GenerationMode `json:"generationMode"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy of the presentation.
func (p *Presentation) Clone() *Presentation {
	if p == nil {
		return nil
	}
	c := *p
	if p.Slides != nil {
		c.Slides = make([]Slide, len(p.Slides))
		copy(c.Slides, p.Slides)
	}
	return &c
}

// SlideIndex returns the position of the slide with the given id, or -1.
func (p *Presentation) SlideIndex(id string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveSlide returns the active slide, or nil if no slide is active.
func (p *Presentation) ActiveSlide() *Slide {
	if i := p.SlideIndex(p.ActiveSlideID); i >= 0 {
		return &p.Slides[i]
	}
	return nil
}
