// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutNames_AllDeclared(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range AllLayouts() {
		name := k.String()
		if name == "" {
			t.Fatalf("layout %d has no name", int(k))
		}
		if seen[name] {
			t.Fatalf("duplicate layout name %q", name)
		}
		seen[name] = true

		parsed, err := ParseLayout(name)
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	assert.Len(t, seen, int(NumLayouts))
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in   string
		want LayoutKind
	}{
		{"title_slide", LayoutTitleSlide},
		{"Title-Content", LayoutTitleContent},
		{" quote ", LayoutQuote},
		{"quote_slide", LayoutQuote},
		{"SVG_CONTENT", LayoutSVGContent},
	}
	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if err != nil {
			t.Errorf("ParseLayout(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	_, err := ParseLayout("hologram")
	assert.True(t, errors.Is(err, ErrUnknownLayout))
}

func TestLayoutKind_TitleDominant(t *testing.T) {
	assert.True(t, LayoutTitleSlide.TitleDominant())
	assert.True(t, LayoutTitleOnly.TitleDominant())
	assert.False(t, LayoutTitleContent.TitleDominant())
	assert.False(t, LayoutQuote.TitleDominant())
}

func TestSlide_JSONUsesWireNames(t *testing.T) {
	s := Slide{ID: "id-1", Layout: LayoutSectionHeader, Title: "Part two", Transition: TransitionFadeIn}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"layout":"section_header"`)
	assert.Contains(t, string(data), `"slideTransition":"fade_in"`)

	var back Slide
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	err = json.Unmarshal([]byte(`{"layout":"nope"}`), &back)
	assert.Error(t, err)
}

func TestLayoutKind_InvalidMarshal(t *testing.T) {
	_, err := LayoutKind(99).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownLayout)
	assert.Equal(t, "layout(99)", LayoutKind(99).String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeNormal, m)

	m, err = ParseMode("ADVANCED")
	require.NoError(t, err)
	assert.Equal(t, ModeAdvanced, m)

	_, err = ParseMode("turbo")
	assert.ErrorIs(t, err, ErrUnknownMode)

	assert.Equal(t, "normal", GenerationMode("").String())
}

func TestParseTransition(t *testing.T) {
	tr, err := ParseTransition("Zoom_In")
	require.NoError(t, err)
	assert.Equal(t, TransitionZoomIn, tr)

	_, err = ParseTransition("spin")
	assert.ErrorIs(t, err, ErrUnknownTransition)
}

func TestPresentation_CloneIsDeep(t *testing.T) {
	p := &Presentation{
		ID:     "id-p",
		Slides: []Slide{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
	}
	c := p.Clone()
	c.Slides[0].Title = "changed"

	assert.Equal(t, "A", p.Slides[0].Title)
	assert.Equal(t, 1, p.SlideIndex("b"))
	assert.Equal(t, -1, p.SlideIndex("zzz"))

	var nilP *Presentation
	assert.Nil(t, nilP.Clone())
}

func TestPresentation_ActiveSlide(t *testing.T) {
	p := &Presentation{Slides: []Slide{{ID: "a"}, {ID: "b"}}, ActiveSlideID: "b"}
	require.NotNil(t, p.ActiveSlide())
	assert.Equal(t, "b", p.ActiveSlide().ID)

	p.ActiveSlideID = ""
	assert.Nil(t, p.ActiveSlide())
}
