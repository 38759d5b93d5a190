// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhancris/KPresent/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DarkThreshold is the red-channel value below which a background is dark.
	DarkThreshold = 100

	// DefaultBackground is used when a theme defines no background at all.
	DefaultBackground = "#FFFFFF"

	// DefaultHeadingFont and DefaultBodyFont are used when a font list is empty.
	DefaultHeadingFont = "Arial"
	DefaultBodyFont    = "Helvetica"

	fallbackInk = "#000000"
)

// =============================================================================
// RESOLVED THEME
// =============================================================================

// Resolved holds the concrete values a renderer draws with. No field is empty.
type Resolved struct {
	Name string

	Background       string
	TitleText        string
	BodyText         string
	Primary          string
	Secondary        string
	Accent           string
	TextOnPrimary    string
	TextOnBackground string

	// HeadingFont and BodyFont are single family names without quotes.
	HeadingFont string
	BodyFont    string

	// Dark reports whether Background is dark.
	Dark bool
}

// Resolve applies the fallback chains to a theme.
func Resolve(t model.Theme) Resolved {
	c := t.Colors
	primary := firstNonEmpty(c.Primary, fallbackInk)
	r := Resolved{
		Name:             t.Name,
		Background:       firstNonEmpty(c.SlideBackground, c.Background, DefaultBackground),
		TitleText:        firstNonEmpty(c.TitleText, primary),
		BodyText:         firstNonEmpty(c.BodyText, c.TextOnBackground, fallbackInk),
		Primary:          primary,
		Secondary:        firstNonEmpty(c.Secondary, primary),
		Accent:           firstNonEmpty(c.Accent, primary),
		TextOnPrimary:    firstNonEmpty(c.TextOnPrimary, DefaultBackground),
		TextOnBackground: firstNonEmpty(c.TextOnBackground, fallbackInk),
		HeadingFont:      FirstFamily(t.Fonts.Heading, DefaultHeadingFont),
		BodyFont:         FirstFamily(t.Fonts.Body, DefaultBodyFont),
	}
	r.Dark = IsDark(r.Background)
	return r
}

// IsDark reports whether a #RRGGBB color is dark, judged by its red channel
// alone. Colors that cannot be parsed are treated as light.
func IsDark(hex string) bool {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) < 2 {
		return false
	}
	red, err := strconv.ParseUint(s[:2], 16, 8)
	if err != nil {
		return false
	}
	return red < DarkThreshold
}

// FirstFamily returns the first family of a CSS font-family list with quotes
// removed, or def when the list is empty.
func FirstFamily(list, def string) string {
	first, _, _ := strings.Cut(list, ",")
	first = strings.TrimSpace(strings.ReplaceAll(first, `"`, ""))
	first = strings.TrimSpace(strings.ReplaceAll(first, "'", ""))
	if first == "" {
		return def
	}
	return first
}

// =============================================================================
// DESCRIPTIONS
// =============================================================================

// Describe returns the theme summary sent to the remote generator.
func Describe(t model.Theme) string {
	r := Resolve(t)
	return fmt.Sprintf("Current Theme: \"%s\".\n"+
		"Key Colors - Primary: %s, Secondary: %s, Accent: %s, Slide Background: %s, Title Text: %s, Body Text: %s.\n"+
		"Fonts - Heading: \"%s\", Body: \"%s\".\n"+
		"Design Style goal: Visually stunning, professional, and creative. Use the theme distinctively.",
		t.Name, r.Primary, r.Secondary, r.Accent, r.Background, r.TitleText, r.BodyText,
		t.Fonts.Heading, t.Fonts.Body)
}

// SlideDescription returns the short theme context stored on each slide.
func SlideDescription(t model.Theme, mode model.GenerationMode) string {
	return fmt.Sprintf("Theme: %s. Mode: %s. Primary: %s, Accent: %s. Heading: %s, Body: %s.",
		t.Name, mode, t.Colors.Primary, t.Colors.Accent, t.Fonts.Heading, t.Fonts.Body)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
