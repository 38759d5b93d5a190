// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package svg

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/model"
)

func TestWrap_SingleLineTruncation(t *testing.T) {
	opts := WrapOptions{
		MaxWidth: 50,
		MaxLines: 1,
		FontSize: 10,
		Measurer: HeuristicMeasurer{Factor: 0.6},
	}
	lines := Wrap("AAAAAAAAAA BBBBBBBBBB CCCCCCCCCC", opts)

	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], Ellipsis))
	assert.LessOrEqual(t, opts.width(lines[0]), 50.0)
	assert.Equal(t, "AAAAA...", lines[0])
}

func TestWrap_GreedyBreaks(t *testing.T) {
	// 10 units per character at size 10 with factor 1.
	opts := WrapOptions{MaxWidth: 110, MaxLines: 5, FontSize: 10, Measurer: HeuristicMeasurer{Factor: 1}}
	lines := Wrap("the quick brown fox jumps over the lazy dog", opts)
	assert.Equal(t, []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}, lines)
}

func TestWrap_LastSlotTakesRemainder(t *testing.T) {
	opts := WrapOptions{MaxWidth: 110, MaxLines: 2, FontSize: 10, Measurer: HeuristicMeasurer{Factor: 1}}
	lines := Wrap("the quick brown fox jumps over the lazy dog", opts)
	require.Len(t, lines, 2)
	assert.Equal(t, "the quick", lines[0])
	assert.Equal(t, "brown fo...", lines[1])
}

func TestWrap_EmptyInput(t *testing.T) {
	opts := WrapOptions{MaxWidth: 100, MaxLines: 3, FontSize: 12}
	assert.Empty(t, Wrap("", opts))
	assert.Empty(t, Wrap(" \n\t ", opts))
	assert.Empty(t, Wrap("text", WrapOptions{MaxWidth: 100, MaxLines: 0, FontSize: 12}))
}

func TestWrap_LongWordIsCut(t *testing.T) {
	opts := WrapOptions{MaxWidth: 60, MaxLines: 3, FontSize: 10, Measurer: HeuristicMeasurer{Factor: 1}}
	lines := Wrap("supercalifragilistic ok", opts)
	require.Len(t, lines, 2)
	assert.Equal(t, "sup...", lines[0])
	assert.Equal(t, "ok", lines[1])
}

func TestWrap_NeverExceedsMaxLines(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	letters := "abcdefghijklmnopqrstuvwxyz"

	for iter := 0; iter < 500; iter++ {
		var words []string
		for n := rng.Intn(80); n > 0; n-- {
			w := make([]byte, 1+rng.Intn(14))
			for i := range w {
				w[i] = letters[rng.Intn(len(letters))]
			}
			words = append(words, string(w))
		}
		text := strings.Join(words, " ")
		opts := WrapOptions{
			MaxWidth: float64(40 + rng.Intn(700)),
			MaxLines: 1 + rng.Intn(6),
			FontSize: float64(10 + rng.Intn(40)),
		}

		lines := Wrap(text, opts)
		if len(lines) > opts.MaxLines {
			t.Fatalf("got %d lines, max %d", len(lines), opts.MaxLines)
		}
		truncated := false
		for _, l := range lines {
			if opts.width(l) > opts.MaxWidth {
				t.Fatalf("line %q width %.1f exceeds %.1f", l, opts.width(l), opts.MaxWidth)
			}
			if l == "" || strings.HasSuffix(l, Ellipsis) {
				truncated = true
			}
		}
		if strings.Join(lines, " ") != text && !truncated {
			t.Fatalf("content lost without an ellipsis marker: %q -> %q", text, lines)
		}
	}
}

func TestMaxLines(t *testing.T) {
	assert.Equal(t, 3, MaxLines(model.LayoutTitleSlide))
	assert.Equal(t, 3, MaxLines(model.LayoutTitleOnly))
	for _, k := range []model.LayoutKind{model.LayoutTitleContent, model.LayoutQuote, model.LayoutBlank} {
		assert.Equal(t, 5, MaxLines(k), k.String())
	}
}

func TestMeasurers(t *testing.T) {
	h := HeuristicMeasurer{}
	assert.InDelta(t, 12.0, h.Width("日本", 10), 0.001)
	assert.InDelta(t, 30.0, h.Width("abcde", 10), 0.001)

	rw := RuneWidthMeasurer{Factor: 0.6}
	assert.InDelta(t, 24.0, rw.Width("日本", 10), 0.001)
	assert.InDelta(t, 30.0, rw.Width("abcde", 10), 0.001)

	assert.IsType(t, RuneWidthMeasurer{}, MeasurerByName("runewidth"))
	assert.IsType(t, HeuristicMeasurer{}, MeasurerByName("heuristic"))
	assert.IsType(t, HeuristicMeasurer{}, MeasurerByName(""))
}

func TestFit_NoRoomForEllipsis(t *testing.T) {
	opts := WrapOptions{MaxWidth: 10, FontSize: 10}
	assert.Equal(t, "", Fit("overflowing", opts))

	lines := Wrap("overflowing words", WrapOptions{MaxWidth: 10, MaxLines: 1, FontSize: 10})
	require.Len(t, lines, 1)
	assert.LessOrEqual(t, opts.width(lines[0]), opts.MaxWidth)
}

func TestFit_LetterSpacing(t *testing.T) {
	opts := WrapOptions{MaxWidth: 100, FontSize: 10, Extra: 2, Measurer: HeuristicMeasurer{Factor: 1}}
	// 8 chars * (10 + 2) = 96
	assert.Equal(t, "abcdefgh", Fit("abcdefgh", opts))
	// 9 chars = 108, cut to 5 chars + "..." = 96
	assert.Equal(t, "abcde...", Fit("abcdefghi", opts))
}
