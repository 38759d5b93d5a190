// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package theme

import (
	"fmt"
	"strings"

	"github.com/nhancris/KPresent/internal/model"
)

// WithColor returns a copy of t with one palette field replaced. Field names
// use the snake_case form of the theme file format.
func WithColor(t model.Theme, field, color string) (model.Theme, error) {
	if err := ValidateColor(color); err != nil {
		return t, err
	}
	c := &t.Colors
	var target *string
	switch strings.ToLower(strings.ReplaceAll(field, "-", "_")) {
	case "primary":
		target = &c.Primary
	case "secondary":
		target = &c.Secondary
	case "accent":
		target = &c.Accent
	case "text_on_primary":
		target = &c.TextOnPrimary
	case "text_on_secondary":
		target = &c.TextOnSecondary
	case "background":
		target = &c.Background
	case "text_on_background":
		target = &c.TextOnBackground
	case "slide_background":
		target = &c.SlideBackground
	case "title_text":
		target = &c.TitleText
	case "body_text":
		target = &c.BodyText
	default:
		return t, fmt.Errorf("%w: unknown color field %q", ErrInvalidTheme, field)
	}
	*target = color
	return t, nil
}

// WithFonts returns a copy of t with new font lists. Empty arguments keep
// the current value.
func WithFonts(t model.Theme, heading, body string) model.Theme {
	if heading != "" {
		t.Fonts.Heading = heading
	}
	if body != "" {
		t.Fonts.Body = body
	}
	return t
}

// WithTransition returns a copy of t with a new default transition.
func WithTransition(t model.Theme, tr model.Transition) (model.Theme, error) {
	parsed, err := model.ParseTransition(string(tr))
	if err != nil {
		return t, err
	}
	t.DefaultTransition = parsed
	return t, nil
}
