// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"strings"

	"github.com/nhancris/KPresent/internal/model"
)

// Ellipsis marks a truncated line.
const Ellipsis = "..."

const (
	titleDominantMaxLines = 3
	defaultMaxLines       = 5
)

// MaxLines returns the body line cap for a layout.
func MaxLines(kind model.LayoutKind) int {
	if kind.TitleDominant() {
		return titleDominantMaxLines
	}
	return defaultMaxLines
}

// WrapOptions configures Wrap.
type WrapOptions struct {
	MaxWidth float64
	MaxLines int
	FontSize float64

	// Extra is added per character, for letter-spaced text.
	Extra float64

	// Measurer defaults to the heuristic measurer.
	Measurer Measurer
}

func (o WrapOptions) width(s string) float64 {
	m := o.Measurer
	if m == nil {
		m = HeuristicMeasurer{Factor: DefaultCharWidthFactor}
	}
	w := m.Width(s, o.FontSize)
	if o.Extra > 0 {
		w += o.Extra * float64(len([]rune(s)))
	}
	return w
}

// Wrap breaks text into at most MaxLines lines that each fit MaxWidth.
//
// Words are accumulated greedily; a word that would overflow a non-empty
// line starts the next one. Once only one line slot remains, all remaining
// words go into that last line, which is cut back character by character
// and marked with Ellipsis if it does not fit. A single word wider than
// MaxWidth is cut the same way. A line too narrow for Ellipsis is empty.
func Wrap(text string, opts WrapOptions) []string {
	words := strings.Fields(text)
	if len(words) == 0 || opts.MaxLines <= 0 {
		return nil
	}

	lines := make([]string, 0, opts.MaxLines)
	current := ""
	for i, word := range words {
		if len(lines) == opts.MaxLines-1 {
			rest := joinWords(current, strings.Join(words[i:], " "))
			return append(lines, Fit(rest, opts))
		}

		candidate := joinWords(current, word)
		if current != "" && opts.width(candidate) > opts.MaxWidth {
			lines = append(lines, Fit(current, opts))
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, Fit(current, opts))
	}
	return lines
}

// Fit returns line unchanged if it fits MaxWidth, otherwise the longest
// prefix that fits once Ellipsis is appended. When MaxWidth cannot hold even
// Ellipsis the result is empty.
func Fit(line string, opts WrapOptions) string {
	if opts.width(line) <= opts.MaxWidth {
		return line
	}
	runes := []rune(line)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + Ellipsis
		if opts.width(candidate) <= opts.MaxWidth {
			return candidate
		}
	}
	return ""
}

func joinWords(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
