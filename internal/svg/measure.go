// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// DefaultCharWidthFactor is the average glyph width as a fraction of the
// font size.
const DefaultCharWidthFactor = 0.6

// Measurer estimates the rendered width of a string in canvas units.
type Measurer interface {
	Width(s string, fontSize float64) float64
}

// HeuristicMeasurer treats every character as Factor * fontSize wide.
type HeuristicMeasurer struct {
	Factor float64
}

// Width implements Measurer.
func (m HeuristicMeasurer) Width(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * factorOrDefault(m.Factor)
}

// RuneWidthMeasurer counts East Asian wide characters as two cells, which
// keeps CJK text from overflowing where the heuristic would under-count.
type RuneWidthMeasurer struct {
	Factor float64
}

// Width implements Measurer.
func (m RuneWidthMeasurer) Width(s string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(s)) * fontSize * factorOrDefault(m.Factor)
}

// MeasurerByName returns the measurer for a configuration name. Unknown
// names get the heuristic.
func MeasurerByName(name string) Measurer {
	if name == "runewidth" {
		return RuneWidthMeasurer{Factor: DefaultCharWidthFactor}
	}
	return HeuristicMeasurer{Factor: DefaultCharWidthFactor}
}

func factorOrDefault(f float64) float64 {
	if f <= 0 {
		return DefaultCharWidthFactor
	}
	return f
}
