// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/svg"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

const (
	// FallbackMarker appears in the title of every slide whose remote
	// generation failed.
	FallbackMarker = "API Error Fallback"

	// closingBody replaces the body of thank-you and Q&A slides.
	closingBody = "Q&A"
)

// Client is the remote completion interface the orchestrator needs.
type Client interface {
	Complete(ctx context.Context, req cloud.Request) (string, error)
}

// SlideRequest describes the slide to obtain.
type SlideRequest struct {
	Focus  string
	Layout model.LayoutKind
	Theme  model.Theme
	Number int
	Prompt string
	Mode   model.GenerationMode
}

// Result is an obtained slide.
type Result struct {
	Title string
	SVG   string
	Notes string

	// Source is telemetry.SourceOffline, SourceRemote or SourceFallback.
	Source string

	// Err is the absorbed remote failure for fallback results.
	Err error
}

// Degraded reports whether the result is a fallback.
func (r Result) Degraded() bool {
	return r.Source == telemetry.SourceFallback
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator obtains slide content. It is safe for concurrent use.
type Orchestrator struct {
	client   Client
	renderer *svg.Renderer
	models   map[model.GenerationMode]string
	observer telemetry.Observer
	logger   *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRenderer sets the renderer used for local synthesis.
func WithRenderer(r *svg.Renderer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithModels sets the model identifiers per mode. Empty values keep the
// defaults.
func WithModels(normal, advanced string) Option {
	return func(o *Orchestrator) {
		if normal != "" {
			o.models[model.ModeNormal] = normal
		}
		if advanced != "" {
			o.models[model.ModeAdvanced] = advanced
		}
	}
}

// WithObserver sets the telemetry sink.
func WithObserver(obs telemetry.Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l.Named("generate")
		}
	}
}

// New creates an orchestrator. A nil client means every slide is
// synthesized locally.
func New(client Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		renderer: svg.NewRenderer(),
		models: map[model.GenerationMode]string{
			model.ModeNormal:   cloud.GeminiNormalModel,
			model.ModeAdvanced: cloud.GeminiAdvancedModel,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Online reports whether a remote client is configured.
func (o *Orchestrator) Online() bool {
	return o.client != nil
}

// Model returns the model identifier used for a mode.
func (o *Orchestrator) Model(mode model.GenerationMode) string {
	if m, ok := o.models[mode]; ok {
		return m
	}
	return o.models[model.ModeNormal]
}

// Render synthesizes a slide locally without touching the remote client.
func (o *Orchestrator) Render(kind model.LayoutKind, title, body string, t model.Theme) string {
	return o.renderer.Render(kind, title, body, t)
}

// Obtain returns the content for one slide. It never fails: remote errors
// produce an annotated local fallback.
func (o *Orchestrator) Obtain(ctx context.Context, req SlideRequest) Result {
	if req.Mode == "" {
		req.Mode = model.ModeNormal
	}
	start := time.Now()
	res := o.obtain(ctx, req)
	if o.observer != nil {
		o.observer.ObserveSlide(res.Source, req.Layout.String(), time.Since(start))
	}
	return res
}

func (o *Orchestrator) obtain(ctx context.Context, req SlideRequest) Result {
	themeDesc := theme.Describe(req.Theme)

	if o.client == nil {
		return Result{
			Title:  req.Focus,
			SVG:    o.renderer.Render(req.Layout, req.Focus, offlineBody(req, themeDesc), req.Theme),
			Notes:  offlineNotes(req),
			Source: telemetry.SourceOffline,
		}
	}

	title, doc, notes, err := o.remote(ctx, req, themeDesc)
	if err == nil {
		return Result{Title: title, SVG: doc, Notes: notes, Source: telemetry.SourceRemote}
	}

	o.logger.Warn("remote generation failed, using fallback",
		zap.Int("slide", req.Number),
		zap.String("layout", req.Layout.String()),
		zap.String("mode", req.Mode.String()),
		zap.Error(err),
	)
	fbTitle := fallbackTitle(req)
	return Result{
		Title:  fbTitle,
		SVG:    o.renderer.Render(req.Layout, fbTitle, fallbackBody(req, err), req.Theme),
		Notes:  fallbackNotes(req, err),
		Source: telemetry.SourceFallback,
		Err:    err,
	}
}

func (o *Orchestrator) remote(ctx context.Context, req SlideRequest, themeDesc string) (string, string, string, error) {
	text, err := o.client.Complete(ctx, cloud.Request{
		Model:  o.Model(req.Mode),
		System: slideInstruction,
		Prompt: slideQuery(req, themeDesc),
		JSON:   true,
	})
	if err != nil {
		return "", "", "", err
	}
	return parseSlideResponse(text)
}
