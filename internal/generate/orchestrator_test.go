// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/svg"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

// fakeClient returns canned text or an error and records requests.
type fakeClient struct {
	mu   sync.Mutex
	text string
	err  error
	reqs []cloud.Request
}

func (f *fakeClient) Complete(ctx context.Context, req cloud.Request) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.text, f.err
}

type recordingObserver struct {
	mu      sync.Mutex
	sources []string
}

func (r *recordingObserver) ObserveSlide(source, layout string, d time.Duration) {
	r.mu.Lock()
	r.sources = append(r.sources, source)
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveDeck(string, int, string, time.Duration) {}

func testRequest(layout model.LayoutKind) SlideRequest {
	return SlideRequest{
		Focus:  "Benefits of Tidal Power",
		Layout: layout,
		Theme:  theme.Shipped()[0],
		Number: 2,
		Prompt: "Tidal energy",
		Mode:   model.ModeNormal,
	}
}

func remoteJSON(t *testing.T, doc, notes, title string) string {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"svgContent":      doc,
		"speakerNotes":    notes,
		"titleSuggestion": title,
	})
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// OFFLINE
// =============================================================================

func TestObtain_Offline(t *testing.T) {
	obs := &recordingObserver{}
	o := New(nil, WithObserver(obs))
	req := testRequest(model.LayoutTitleContent)

	res := o.Obtain(context.Background(), req)
	assert.Equal(t, telemetry.SourceOffline, res.Source)
	assert.Equal(t, req.Focus, res.Title)
	assert.NoError(t, svg.CheckDocument(res.SVG))
	assert.Contains(t, res.Notes, "Speaker notes for slide 2")
	assert.Contains(t, res.Notes, `"Deep Ocean" theme`)
	assert.Contains(t, res.Notes, "normal mode")
	assert.Contains(t, res.Notes, `layout hint was "title_content"`)
	assert.False(t, res.Degraded())
	assert.Equal(t, []string{telemetry.SourceOffline}, obs.sources)
	assert.False(t, o.Online())
}

func TestObtain_OfflineIsDeterministic(t *testing.T) {
	o := New(nil)
	req := testRequest(model.LayoutQuote)
	a := o.Obtain(context.Background(), req)
	b := o.Obtain(context.Background(), req)
	assert.Equal(t, a, b)
}

func TestOfflineBody(t *testing.T) {
	req := testRequest(model.LayoutTwoContent)
	body := offlineBody(req, "DESC")
	assert.Equal(t, "Content for: benefits of tidal power. Layout: two_content. DESC. Mode: normal", body)

	closing := testRequest(model.LayoutTitleOnly)
	closing.Focus = "Thank You & Q&A"
	assert.Equal(t, "Q&A", offlineBody(closing, "DESC"))

	// Only title-only slides are shortened.
	notClosing := testRequest(model.LayoutTitleContent)
	notClosing.Focus = "Thank You"
	assert.NotEqual(t, "Q&A", offlineBody(notClosing, "DESC"))
}

// =============================================================================
// REMOTE
// =============================================================================

func TestObtain_RemoteSuccess(t *testing.T) {
	doc := `<svg viewBox="0 0 800 450"><rect width="800" height="450"/></svg>`
	client := &fakeClient{text: remoteJSON(t, doc, "notes", "Tides Rising")}
	o := New(client, WithModels("fast-model", "slow-model"))

	res := o.Obtain(context.Background(), testRequest(model.LayoutTitleSlide))
	assert.Equal(t, telemetry.SourceRemote, res.Source)
	assert.Equal(t, "Tides Rising", res.Title)
	assert.Equal(t, doc, res.SVG)
	assert.Equal(t, "notes", res.Notes)
	assert.NoError(t, res.Err)

	require.Len(t, client.reqs, 1)
	r := client.reqs[0]
	assert.Equal(t, "fast-model", r.Model)
	assert.True(t, r.JSON)
	assert.Contains(t, r.System, `viewBox="0 0 800 450"`)
	assert.Contains(t, r.Prompt, `Slide Topic: "Benefits of Tidal Power"`)
	assert.Contains(t, r.Prompt, `Layout Hint: "title_slide"`)
	assert.Contains(t, r.Prompt, "Slide Number: 2")
	assert.Contains(t, r.Prompt, `Overall Presentation Context: "Tidal energy"`)
	assert.Contains(t, r.Prompt, "Primary: #0A2463")
}

func TestObtain_AdvancedModeUsesAdvancedModel(t *testing.T) {
	client := &fakeClient{err: errors.New("x")}
	o := New(client)
	req := testRequest(model.LayoutBlank)
	req.Mode = model.ModeAdvanced
	o.Obtain(context.Background(), req)
	require.Len(t, client.reqs, 1)
	assert.Equal(t, cloud.GeminiAdvancedModel, client.reqs[0].Model)
}

func TestObtain_FencedResponse(t *testing.T) {
	doc := `<svg></svg>`
	client := &fakeClient{text: "```json\n" + remoteJSON(t, doc, "n", "T") + "\n```"}
	res := New(client).Obtain(context.Background(), testRequest(model.LayoutBlank))
	assert.Equal(t, telemetry.SourceRemote, res.Source)
	assert.Equal(t, doc, res.SVG)
}

func TestObtain_ThrowingClientFallsBack(t *testing.T) {
	obs := &recordingObserver{}
	client := &fakeClient{err: errors.New("connection reset by peer")}
	o := New(client, WithObserver(obs))
	req := testRequest(model.LayoutTitleContent)

	res := o.Obtain(context.Background(), req)
	assert.Contains(t, res.Title, FallbackMarker)
	assert.Equal(t, "Benefits of Tidal Power (API Error Fallback - normal mode)", res.Title)
	assert.Contains(t, res.Notes, "connection reset by peer")
	assert.Contains(t, res.Notes, "Error state speaker notes for slide 2")
	assert.NoError(t, svg.CheckDocument(res.SVG))
	assert.True(t, res.Degraded())
	assert.EqualError(t, res.Err, "connection reset by peer")
	assert.Equal(t, []string{telemetry.SourceFallback}, obs.sources)
}

func TestObtain_InvalidResponsesFallBack(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"not json", "here is your slide!", ErrMalformedResponse},
		{"missing notes", `{"svgContent":"<svg></svg>","titleSuggestion":"t"}`, ErrMissingFields},
		{"missing title", `{"svgContent":"<svg></svg>","speakerNotes":"n"}`, ErrMissingFields},
		{"empty svg", `{"svgContent":"","speakerNotes":"n","titleSuggestion":"t"}`, ErrMissingFields},
		{"not svg", `{"svgContent":"<div></div>","speakerNotes":"n","titleSuggestion":"t"}`, ErrInvalidDocument},
		{"unterminated", `{"svgContent":"<svg><rect/>","speakerNotes":"n","titleSuggestion":"t"}`, ErrInvalidDocument},
		{"too large", strings.Repeat(" ", MaxResponseBytes+1), ErrResponseTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(&fakeClient{text: tt.text}).Obtain(context.Background(), testRequest(model.LayoutTitleContent))
			assert.Equal(t, telemetry.SourceFallback, res.Source)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.Contains(t, res.Title, FallbackMarker)
			assert.NoError(t, svg.CheckDocument(res.SVG))
		})
	}
}

func TestObtain_EmptyStringFieldsAccepted(t *testing.T) {
	client := &fakeClient{text: `{"svgContent":"<svg></svg>","speakerNotes":"","titleSuggestion":""}`}
	res := New(client).Obtain(context.Background(), testRequest(model.LayoutBlank))
	assert.Equal(t, telemetry.SourceRemote, res.Source)
	assert.Empty(t, res.Title)
}

func TestObtain_FallbackClosingSlide(t *testing.T) {
	req := testRequest(model.LayoutTitleOnly)
	req.Focus = "Thank You & Q&A"
	assert.Equal(t, "Q&A", fallbackBody(req, errors.New("x")))
}

func TestObtain_DefaultsMode(t *testing.T) {
	req := testRequest(model.LayoutBlank)
	req.Mode = ""
	res := New(nil).Obtain(context.Background(), req)
	assert.Contains(t, res.Notes, "normal mode")
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("  {\"a\":1}  "))
}

// =============================================================================
// IMAGE PROMPT REFINEMENT
// =============================================================================

func TestRefineImagePrompt(t *testing.T) {
	ctx := context.Background()

	offline := New(nil).RefineImagePrompt(ctx, "a lighthouse", model.ModeAdvanced)
	assert.Equal(t, "Mock refined (advanced): High-quality, professional image depicting a lighthouse, suitable for a presentation, clear visuals.", offline)

	ok := &fakeClient{text: "  A watercolor lighthouse at dusk.  "}
	assert.Equal(t, "A watercolor lighthouse at dusk.", New(ok).RefineImagePrompt(ctx, "a lighthouse", model.ModeNormal))
	require.Len(t, ok.reqs, 1)
	assert.Equal(t, `User's image idea: "a lighthouse" (Targeting normal quality image generation)`, ok.reqs[0].Prompt)
	assert.Contains(t, ok.reqs[0].System, "max 70 words")
	assert.False(t, ok.reqs[0].JSON)

	assert.Equal(t, placeholderImagePrompt, New(ok).RefineImagePrompt(ctx, "   ", model.ModeNormal))

	empty := &fakeClient{err: cloud.ErrEmptyResponse}
	assert.Equal(t, "Detailed, professional quality image focusing on: fog. Clear background, good lighting. (normal mode)",
		New(empty).RefineImagePrompt(ctx, "fog", model.ModeNormal))

	failing := &fakeClient{err: errors.New("boom")}
	assert.Equal(t, "Error refining prompt. Original idea: fog. Please ensure the image is high quality. (normal mode)",
		New(failing).RefineImagePrompt(ctx, "fog", ""))
}
