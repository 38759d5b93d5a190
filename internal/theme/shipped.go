// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package theme

import "github.com/nhancris/KPresent/internal/model"

// Shipped theme identifiers.
const (
	DeepOcean      = "theme-deep-ocean"
	ForestCanopy   = "theme-forest-canopy"
	ModernTech     = "theme-modern-tech"
	SunriseGlow    = "theme-sunrise-glow"
	MinimalistGrey = "theme-minimalist-grey"
)

// Shipped returns the built-in themes in display order. The slice is fresh
// on every call.
func Shipped() []model.Theme {
	return []model.Theme{
		{
			ID:   DeepOcean,
			Name: "Deep Ocean",
			Fonts: model.FontPairing{
				Heading: `"Georgia", serif`,
				Body:    `"Helvetica Neue", Helvetica, Arial, sans-serif`,
			},
			Colors: model.ColorPalette{
				Primary:          "#0A2463",
				Secondary:        "#3E92CC",
				Accent:           "#FF5733",
				TextOnPrimary:    "#FFFFFF",
				TextOnSecondary:  "#FFFFFF",
				Background:       "#F0F4F8",
				TextOnBackground: "#102A43",
				SlideBackground:  "#FFFFFF",
				TitleText:        "#0A2463",
				BodyText:         "#334E68",
			},
			DefaultTransition: model.TransitionFadeIn,
		},
		{
			ID:   ForestCanopy,
			Name: "Forest Canopy",
			Fonts: model.FontPairing{
				Heading: `"Roboto Slab", serif`,
				Body:    `"Roboto", sans-serif`,
			},
			Colors: model.ColorPalette{
				Primary:          "#2F5233",
				Secondary:        "#5C821A",
				Accent:           "#E4A010",
				TextOnPrimary:    "#FFFFFF",
				TextOnSecondary:  "#FFFFFF",
				Background:       "#F5F5F5",
				TextOnBackground: "#1D2A1F",
				SlideBackground:  "#FBFFF1",
				TitleText:        "#2F5233",
				BodyText:         "#4A5B50",
			},
			DefaultTransition: model.TransitionWipeRight,
		},
		{
			ID:   ModernTech,
			Name: "Modern Tech (Dark)",
			Fonts: model.FontPairing{
				Heading: `"Playfair Display", serif`,
				Body:    `"Lato", sans-serif`,
			},
			Colors: model.ColorPalette{
				Primary:          "#1A202C",
				Secondary:        "#2D3748",
				Accent:           "#4299E1",
				TextOnPrimary:    "#E2E8F0",
				TextOnSecondary:  "#CBD5E0",
				Background:       "#0F172A",
				TextOnBackground: "#E2E8F0",
				SlideBackground:  "#1E293B",
				TitleText:        "#90CDF4",
				BodyText:         "#A0AEC0",
			},
			DefaultTransition: model.TransitionZoomIn,
		},
		{
			ID:   SunriseGlow,
			Name: "Sunrise Glow",
			Fonts: model.FontPairing{
				Heading: `"Montserrat", sans-serif`,
				Body:    `"Open Sans", sans-serif`,
			},
			Colors: model.ColorPalette{
				Primary:          "#FF8C42",
				Secondary:        "#FFD36E",
				Accent:           "#FC4A1A",
				TextOnPrimary:    "#FFFFFF",
				TextOnSecondary:  "#402E32",
				Background:       "#FFF8F0",
				TextOnBackground: "#59402C",
				SlideBackground:  "#FFFFFF",
				TitleText:        "#D95A13",
				BodyText:         "#734031",
			},
			DefaultTransition: model.TransitionFlyInUp,
		},
		{
			ID:   MinimalistGrey,
			Name: "Minimalist Grey",
			Fonts: model.FontPairing{
				Heading: `"Arial Black", Gadget, sans-serif`,
				Body:    `"Arial", Helvetica, sans-serif`,
			},
			Colors: model.ColorPalette{
				Primary:          "#333333",
				Secondary:        "#555555",
				Accent:           "#007AFF",
				TextOnPrimary:    "#FFFFFF",
				TextOnSecondary:  "#FFFFFF",
				Background:       "#F8F8F8",
				TextOnBackground: "#222222",
				SlideBackground:  "#FFFFFF",
				TitleText:        "#111111",
				BodyText:         "#444444",
			},
			DefaultTransition: model.TransitionFadeIn,
		},
	}
}
