// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/generate"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/theme"
)

func sampleDeck(t *testing.T, asm *Assembler, n int) *model.Presentation {
	t.Helper()
	p, err := asm.Assemble(context.Background(), Request{
		Prompt:  "Coral reef restoration",
		Count:   n,
		ThemeID: theme.DeepOcean,
	})
	require.NoError(t, err)
	return p
}

func ids(p *model.Presentation) []string {
	out := make([]string, len(p.Slides))
	for i, s := range p.Slides {
		out[i] = s.ID
	}
	return out
}

func TestRegenerateSlide(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 5)
	target := p.Slides[2]

	out, err := asm.RegenerateSlide(context.Background(), p, target.ID, "Funding models for reef projects")
	require.NoError(t, err)

	s := out.Slides[2]
	assert.Equal(t, target.ID, s.ID)
	assert.Equal(t, target.Layout, s.Layout)
	assert.Equal(t, "Funding models for reef projects", s.Title)
	assert.NotEqual(t, target.SVGContent, s.SVGContent)
	assert.True(t, strings.HasSuffix(s.ThemeDescription, " Regenerated with focus: Funding models for reef projects"))
	assert.Contains(t, s.SpeakerNotes, "slide 3")

	// The input is untouched.
	assert.Equal(t, target, p.Slides[2])
}

func TestRegenerateSlideReusesTitle(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 3)
	title := p.Slides[1].Title

	out, err := asm.RegenerateSlide(context.Background(), p, p.Slides[1].ID, "  ")
	require.NoError(t, err)
	assert.Equal(t, title, out.Slides[1].Title)
	assert.Contains(t, out.Slides[1].ThemeDescription, "Regenerated with focus: "+title)
}

func TestRegenerateSlideUntitled(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 2)
	p.Slides[0].Title = ""

	out, err := asm.RegenerateSlide(context.Background(), p, p.Slides[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, untitledFocus, out.Slides[0].Title)
}

func TestRegenerateSlideRemoteFailure(t *testing.T) {
	client := &scriptedClient{fn: func(context.Context, int) (string, error) {
		return "", errors.New("boom")
	}}
	asm := NewAssembler(generate.New(client), nil, WithSeed(5))
	p := sampleDeck(t, offlineAssembler(), 3)

	out, err := asm.RegenerateSlide(context.Background(), p, p.Slides[1].ID, "Volunteers")
	require.NoError(t, err)
	assert.Contains(t, out.Slides[1].Title, generate.FallbackMarker)
	assert.Contains(t, out.Slides[1].SpeakerNotes, "boom")
}

func TestRegenerateSlideNotFound(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 2)
	_, err := asm.RegenerateSlide(context.Background(), p, "id-missing", "x")
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestRegenerateSlideCancelled(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := asm.RegenerateSlide(ctx, p, p.Slides[0].ID, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddSlideAppends(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 3)

	out, err := asm.AddSlide(context.Background(), p, "", model.LayoutTwoContent, "")
	require.NoError(t, err)
	require.Len(t, out.Slides, 4)

	s := out.Slides[3]
	assert.Equal(t, model.LayoutTwoContent, s.Layout)
	assert.Equal(t, "New two content Slide", s.Title)
	assert.Equal(t, s.ID, out.ActiveSlideID)
	assert.Equal(t, p.Theme.DefaultTransition, s.Transition)
	assert.Equal(t, theme.Resolve(p.Theme).Background, s.BackgroundColor)
	requireComplete(t, s)
	assert.Len(t, p.Slides, 3)
}

func TestAddSlideAfter(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 3)

	out, err := asm.AddSlide(context.Background(), p, p.Slides[0].ID, model.LayoutQuote, "A reef diver's view")
	require.NoError(t, err)
	require.Len(t, out.Slides, 4)
	assert.Equal(t, "A reef diver's view", out.Slides[1].Title)
	assert.Equal(t, p.Slides[1].ID, out.Slides[2].ID)
	assert.Equal(t, p.Slides[2].ID, out.Slides[3].ID)
}

func TestAddSlideErrors(t *testing.T) {
	asm := offlineAssembler()
	p := sampleDeck(t, asm, 2)

	_, err := asm.AddSlide(context.Background(), p, "id-missing", model.LayoutBlank, "")
	assert.ErrorIs(t, err, ErrSlideNotFound)

	_, err = asm.AddSlide(context.Background(), p, "", model.LayoutKind(99), "")
	assert.ErrorIs(t, err, model.ErrUnknownLayout)
}

func TestUpdateSlide(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)
	title := "Reef Health Index"
	tr := model.TransitionZoomIn

	out, err := UpdateSlide(p, p.Slides[1].ID, SlidePatch{Title: &title, Transition: &tr})
	require.NoError(t, err)
	assert.Equal(t, title, out.Slides[1].Title)
	assert.Equal(t, tr, out.Slides[1].Transition)
	assert.Equal(t, p.Slides[1].SpeakerNotes, out.Slides[1].SpeakerNotes)
	assert.NotEqual(t, title, p.Slides[1].Title)
}

func TestUpdateSlideRejects(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 2)
	id := p.Slides[0].ID

	bad := model.Transition("spin")
	_, err := UpdateSlide(p, id, SlidePatch{Transition: &bad})
	assert.ErrorIs(t, err, model.ErrUnknownTransition)

	color := "blue"
	_, err = UpdateSlide(p, id, SlidePatch{BackgroundColor: &color})
	assert.ErrorIs(t, err, theme.ErrInvalidColor)

	layout := model.LayoutKind(-1)
	_, err = UpdateSlide(p, id, SlidePatch{Layout: &layout})
	assert.ErrorIs(t, err, model.ErrUnknownLayout)

	_, err = UpdateSlide(p, "id-missing", SlidePatch{})
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestSlidePatchEmpty(t *testing.T) {
	assert.True(t, SlidePatch{}.Empty())
	notes := ""
	assert.False(t, SlidePatch{SpeakerNotes: &notes}.Empty())
}

func TestDeleteSlideActive(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 4)
	p.ActiveSlideID = p.Slides[2].ID

	out, err := DeleteSlide(p, p.Slides[2].ID)
	require.NoError(t, err)
	assert.Len(t, out.Slides, 3)
	assert.Equal(t, p.Slides[1].ID, out.ActiveSlideID)
	assert.Len(t, p.Slides, 4)
}

func TestDeleteSlideFirstActive(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)

	out, err := DeleteSlide(p, p.Slides[0].ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slides[1].ID, out.ActiveSlideID)
}

func TestDeleteSlideInactive(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)

	out, err := DeleteSlide(p, p.Slides[2].ID)
	require.NoError(t, err)
	assert.Equal(t, p.ActiveSlideID, out.ActiveSlideID)
}

func TestDeleteLastSlide(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 1)

	out, err := DeleteSlide(p, p.Slides[0].ID)
	require.NoError(t, err)
	assert.Empty(t, out.Slides)
	assert.Empty(t, out.ActiveSlideID)

	_, err = DeleteSlide(out, "id-anything")
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestMoveSlide(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 5)
	orig := ids(p)

	out, err := MoveSlide(p, orig[1], 3)
	require.NoError(t, err)
	assert.Equal(t, []string{orig[0], orig[2], orig[3], orig[1], orig[4]}, ids(out))

	out, err = MoveSlide(p, orig[4], 0)
	require.NoError(t, err)
	assert.Equal(t, []string{orig[4], orig[0], orig[1], orig[2], orig[3]}, ids(out))

	out, err = MoveSlide(p, orig[2], 2)
	require.NoError(t, err)
	assert.Equal(t, orig, ids(out))

	assert.Equal(t, orig, ids(p))
}

func TestMoveSlideErrors(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)

	_, err := MoveSlide(p, p.Slides[0].ID, 3)
	assert.ErrorIs(t, err, ErrSlideIndex)
	_, err = MoveSlide(p, p.Slides[0].ID, -1)
	assert.ErrorIs(t, err, ErrSlideIndex)
	_, err = MoveSlide(p, "id-missing", 0)
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestSetActive(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)

	out, err := SetActive(p, p.Slides[2].ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slides[2].ID, out.ActiveSlideID)
	assert.Equal(t, p.Slides[0].ID, p.ActiveSlideID)

	_, err = SetActive(p, "id-missing")
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestApplyTheme(t *testing.T) {
	p := sampleDeck(t, offlineAssembler(), 3)
	next, err := theme.NewRegistry().Lookup(theme.SunriseGlow)
	require.NoError(t, err)

	out := ApplyTheme(p, next)
	assert.Equal(t, theme.SunriseGlow, out.Theme.ID)
	for i, s := range out.Slides {
		assert.Equal(t, theme.Resolve(next).Background, s.BackgroundColor)
		assert.Equal(t, theme.SlideDescription(next, p.Mode), s.ThemeDescription)
		assert.Equal(t, p.Slides[i].SVGContent, s.SVGContent)
	}
	assert.Equal(t, theme.DeepOcean, p.Theme.ID)
}
