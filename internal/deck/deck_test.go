// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/generate"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

// scriptedClient answers every request through fn.
type scriptedClient struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, call int) (string, error)
}

func (c *scriptedClient) Complete(ctx context.Context, req cloud.Request) (string, error) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()
	return c.fn(ctx, n)
}

type deckObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *deckObserver) ObserveSlide(string, string, time.Duration) {}

func (o *deckObserver) ObserveDeck(_ string, _ int, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func offlineAssembler(opts ...Option) *Assembler {
	return NewAssembler(generate.New(nil), theme.NewRegistry(), append([]Option{WithSeed(1)}, opts...)...)
}

func requireComplete(t *testing.T, s model.Slide) {
	t.Helper()
	assert.NotEmpty(t, s.ID)
	assert.True(t, strings.HasPrefix(s.ID, "id-"), s.ID)
	assert.NotEmpty(t, s.Title)
	assert.NotEmpty(t, s.SpeakerNotes)
	assert.NotEmpty(t, s.Transition)
	assert.NotEmpty(t, s.BackgroundColor)
	assert.NotEmpty(t, s.ThemeDescription)
	assert.True(t, strings.HasPrefix(s.SVGContent, "<svg"))
}

// =============================================================================
// ASSEMBLY
// =============================================================================

func TestAssembleExactCount(t *testing.T) {
	asm := offlineAssembler()
	for _, n := range []int{1, 2, 3, 5, 6, 7, 10, 12, 15} {
		p, err := asm.Assemble(context.Background(), Request{Prompt: "Quantum computing basics", Count: n})
		require.NoError(t, err, "n=%d", n)
		require.Len(t, p.Slides, n, "n=%d", n)
		assert.Equal(t, model.LayoutTitleSlide, p.Slides[0].Layout)
		for _, s := range p.Slides {
			requireComplete(t, s)
		}
	}
}

func TestAssembleSingleSlide(t *testing.T) {
	p, err := offlineAssembler().Assemble(context.Background(), Request{Prompt: "Volcanoes of Iceland", Count: 1})
	require.NoError(t, err)
	require.Len(t, p.Slides, 1)
	assert.Equal(t, "Introduction to Volcanoes of Iceland", p.Slides[0].Title)
}

func TestAssembleRenewableEnergy(t *testing.T) {
	p, err := offlineAssembler().Assemble(context.Background(), Request{
		Prompt: "The future of renewable energy",
		Count:  5,
		Mode:   model.ModeNormal,
	})
	require.NoError(t, err)
	require.Len(t, p.Slides, 5)

	assert.Equal(t, model.LayoutTitleSlide, p.Slides[0].Layout)
	assert.Contains(t, p.Slides[0].Title, "The future of renewable energy")

	last := p.Slides[4]
	assert.Equal(t, model.LayoutTitleOnly, last.Layout)
	assert.Equal(t, "Thank You & Q&A", last.Title)
	assert.Equal(t, model.TransitionFadeIn, last.Transition)
	assert.Contains(t, last.SVGContent, "Q&amp;A")

	assert.Equal(t, "The future of renewable energy", p.Title)
	assert.Equal(t, "The future of renewable energy", p.Topic)
	assert.Equal(t, "The future of renewable energy", p.UserPrompt)
	assert.Equal(t, p.Slides[0].ID, p.ActiveSlideID)
	assert.Equal(t, model.ModeNormal, p.Mode)
	assert.True(t, strings.HasPrefix(p.ID, "id-"))
}

func TestAssemblePresentationFields(t *testing.T) {
	p, err := offlineAssembler().Assemble(context.Background(), Request{
		Prompt:  "Urban gardening, rooftops and balconies",
		Count:   3,
		Mode:    model.ModeAdvanced,
		Tone:    "Casual",
		Style:   "Playful",
		ThemeID: theme.ForestCanopy,
	})
	require.NoError(t, err)

	assert.Equal(t, "Urban gardening", p.Topic)
	assert.Equal(t, "Casual", p.Tone)
	assert.Equal(t, "Playful", p.Style)
	assert.Equal(t, theme.ForestCanopy, p.Theme.ID)
	assert.Equal(t, model.ModeAdvanced, p.Mode)
	assert.False(t, p.CreatedAt.IsZero())

	bg := theme.Resolve(p.Theme).Background
	for _, s := range p.Slides {
		assert.Equal(t, bg, s.BackgroundColor)
		assert.Equal(t, theme.SlideDescription(p.Theme, model.ModeAdvanced), s.ThemeDescription)
	}
	assert.Equal(t, p.Theme.DefaultTransition, p.Slides[0].Transition)
}

func TestAssembleShortPrompt(t *testing.T) {
	p, err := offlineAssembler().Assemble(context.Background(), Request{Prompt: "AI", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "AI Presentation", p.Topic)
	assert.Equal(t, "AI Presentation", p.Slides[0].Title)
}

func TestAssembleInvalidCount(t *testing.T) {
	obs := &deckObserver{}
	asm := offlineAssembler(WithObserver(obs))
	for _, n := range []int{0, -3} {
		p, err := asm.Assemble(context.Background(), Request{Prompt: "Anything at all", Count: n})
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrInvalidSlideCount)
	}
	assert.Equal(t, []string{OutcomeInvalid, OutcomeInvalid}, obs.outcomes)
}

func TestAssembleUnknownTheme(t *testing.T) {
	_, err := offlineAssembler().Assemble(context.Background(), Request{Prompt: "Tidal power", Count: 3, ThemeID: "nope"})
	assert.ErrorIs(t, err, theme.ErrUnknownTheme)
}

func TestAssembleSeededTheme(t *testing.T) {
	var ids []string
	for i := 0; i < 3; i++ {
		asm := NewAssembler(nil, nil, WithSeed(99))
		p, err := asm.Assemble(context.Background(), Request{Prompt: "Deterministic decks", Count: 1})
		require.NoError(t, err)
		ids = append(ids, p.Theme.ID)
	}
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[1], ids[2])
}

func TestAssembleDefaultTheme(t *testing.T) {
	asm := offlineAssembler(WithDefaultTheme(theme.ModernTech))
	p, err := asm.Assemble(context.Background(), Request{Prompt: "Dark mode everywhere", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, theme.ModernTech, p.Theme.ID)
}

func TestAssembleRemoteFallbackCompletes(t *testing.T) {
	client := &scriptedClient{fn: func(context.Context, int) (string, error) {
		return "", errors.New("upstream exploded")
	}}
	asm := NewAssembler(generate.New(client), nil, WithSeed(3))

	p, err := asm.Assemble(context.Background(), Request{Prompt: "Resilient systems", Count: 5})
	require.NoError(t, err)
	require.Len(t, p.Slides, 5)
	for _, s := range p.Slides {
		assert.Contains(t, s.Title, generate.FallbackMarker)
		assert.Contains(t, s.SpeakerNotes, "upstream exploded")
	}
	assert.Equal(t, 5, client.calls)
}

func TestAssembleCancelledBeforeStart(t *testing.T) {
	obs := &deckObserver{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := offlineAssembler(WithObserver(obs)).Assemble(ctx, Request{Prompt: "Never built", Count: 5})
	assert.Nil(t, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{OutcomeCancelled}, obs.outcomes)
}

func TestAssembleCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &scriptedClient{fn: func(ctx context.Context, call int) (string, error) {
		if call == 2 {
			cancel()
			return "", ctx.Err()
		}
		return `{"svgContent":"<svg viewBox=\"0 0 800 450\"></svg>","speakerNotes":"n","titleSuggestion":"t"}`, nil
	}}
	asm := NewAssembler(generate.New(client), nil, WithSeed(3))

	p, err := asm.Assemble(ctx, Request{Prompt: "Interrupted talk", Count: 7})
	assert.Nil(t, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, client.calls)
}

func TestAssemblePacingCancellable(t *testing.T) {
	asm := offlineAssembler(WithPacing(true))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := asm.Assemble(ctx, Request{Prompt: "Slow and steady", Count: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPacingDelayBounds(t *testing.T) {
	asm := offlineAssembler()
	for i := 0; i < 20; i++ {
		d := asm.pacingDelay(model.ModeNormal, 4)
		assert.GreaterOrEqual(t, d, 1000*time.Millisecond)
		assert.Less(t, d, 1800*time.Millisecond)

		d = asm.pacingDelay(model.ModeAdvanced, 2)
		assert.GreaterOrEqual(t, d, 700*time.Millisecond)
		assert.Less(t, d, 1200*time.Millisecond)
	}
}

func TestAssemblePacingUsesSleep(t *testing.T) {
	asm := offlineAssembler(WithPacing(true))
	var slept time.Duration
	asm.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}
	_, err := asm.Assemble(context.Background(), Request{Prompt: "Paced deck", Count: 3})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, slept, 750*time.Millisecond)
}

func TestAssembleConcurrentMatchesSequential(t *testing.T) {
	req := Request{Prompt: "Ocean currents", Count: 10, ThemeID: theme.DeepOcean}

	seq, err := offlineAssembler().Assemble(context.Background(), req)
	require.NoError(t, err)
	par, err := offlineAssembler(WithConcurrency(4)).Assemble(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, par.Slides, len(seq.Slides))
	for i := range seq.Slides {
		assert.Equal(t, seq.Slides[i].Title, par.Slides[i].Title, "slide %d", i)
		assert.Equal(t, seq.Slides[i].Layout, par.Slides[i].Layout, "slide %d", i)
		assert.Equal(t, seq.Slides[i].SVGContent, par.Slides[i].SVGContent, "slide %d", i)
	}
}

func TestAssembleProgress(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	asm := offlineAssembler(WithConcurrency(3), WithProgress(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	p, err := asm.Assemble(context.Background(), Request{Prompt: "Progress bars", Count: 5})
	require.NoError(t, err)
	require.Len(t, events, 5)

	seen := make(map[int]string)
	for _, ev := range events {
		assert.Equal(t, 5, ev.Total)
		seen[ev.Index] = ev.Slide.ID
	}
	for i, s := range p.Slides {
		assert.Equal(t, s.ID, seen[i])
	}
}

func TestAssembleRequestProgress(t *testing.T) {
	var events []Event
	_, err := offlineAssembler().Assemble(context.Background(), Request{
		Prompt:     "Per request progress",
		Count:      3,
		OnProgress: func(ev Event) { events = append(events, ev) },
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i, ev.Index)
		assert.Equal(t, telemetry.SourceOffline, ev.Source)
	}
}

func TestAssembleObserverOK(t *testing.T) {
	obs := &deckObserver{}
	_, err := offlineAssembler(WithObserver(obs)).Assemble(context.Background(), Request{Prompt: "Observed deck", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{OutcomeOK}, obs.outcomes)
}
