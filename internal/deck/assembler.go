// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhancris/KPresent/internal/generate"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/plan"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

// Errors returned by the assembler and edit operations.
var (
	// ErrInvalidSlideCount indicates a requested count below one.
	ErrInvalidSlideCount = errors.New("slide count must be at least 1")

	// ErrSlideNotFound indicates no slide has the given id.
	ErrSlideNotFound = errors.New("slide not found")

	// ErrSlideIndex indicates a move target outside the deck.
	ErrSlideIndex = errors.New("slide index out of range")
)

// Deck outcomes reported to the observer.
const (
	OutcomeOK        = "ok"
	OutcomeCancelled = "cancelled"
	OutcomeInvalid   = "invalid"
)

// Pacing parameters per mode, in milliseconds per requested slide.
var pacing = map[model.GenerationMode][2]int{
	model.ModeNormal:   {250, 200},
	model.ModeAdvanced: {350, 250},
}

// Request describes a presentation to assemble.
type Request struct {
	Prompt  string
	Count   int
	Mode    model.GenerationMode
	Tone    string
	Style   string
	ThemeID string

	// OnProgress, when set, is called after each slide in addition to the
	// assembler's WithProgress callback.
	OnProgress func(Event)
}

// Event reports one finished slide. Index is the slide's position in the
// final deck.
type Event struct {
	Index  int
	Total  int
	Slide  model.Slide
	Source string
}

// Assembler builds presentations. It is safe for concurrent use.
type Assembler struct {
	orch     *generate.Orchestrator
	themes   *theme.Registry
	planner  *plan.Planner
	logger   *zap.Logger
	observer telemetry.Observer

	rngMu sync.Mutex
	rng   *rand.Rand

	concurrency  int
	pacing       bool
	defaultTheme string
	onProgress   func(Event)
	sleep        func(ctx context.Context, d time.Duration) error
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRand sets the random source used for theme selection and pacing.
func WithRand(rng *rand.Rand) Option {
	return func(a *Assembler) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithSeed seeds the random source. Zero keeps a time-seeded source.
func WithSeed(seed int64) Option {
	return func(a *Assembler) {
		if seed != 0 {
			a.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithConcurrency sets how many slides are generated at once. Values below
// two mean sequential generation.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		a.concurrency = n
	}
}

// WithPacing enables the simulated per-slide latency before assembly.
func WithPacing(enabled bool) Option {
	return func(a *Assembler) {
		a.pacing = enabled
	}
}

// WithDefaultTheme sets the theme used when a request names none. Empty
// means a random pick.
func WithDefaultTheme(id string) Option {
	return func(a *Assembler) {
		a.defaultTheme = id
	}
}

// WithPlanner replaces the slide planner.
func WithPlanner(p *plan.Planner) Option {
	return func(a *Assembler) {
		if p != nil {
			a.planner = p
		}
	}
}

// WithProgress registers a callback invoked after each slide. With
// concurrency it may be called from several goroutines, one at a time.
func WithProgress(fn func(Event)) Option {
	return func(a *Assembler) {
		a.onProgress = fn
	}
}

// WithObserver sets the telemetry sink for deck outcomes.
func WithObserver(obs telemetry.Observer) Option {
	return func(a *Assembler) {
		a.observer = obs
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l.Named("deck")
		}
	}
}

// NewAssembler creates an assembler. A nil registry uses the shipped themes.
func NewAssembler(orch *generate.Orchestrator, themes *theme.Registry, opts ...Option) *Assembler {
	if orch == nil {
		orch = generate.New(nil)
	}
	if themes == nil {
		themes = theme.NewRegistry()
	}
	a := &Assembler{
		orch:        orch,
		themes:      themes,
		planner:     plan.Default(),
		logger:      zap.NewNop(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		concurrency: 1,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Orchestrator returns the orchestrator used for slide content.
func (a *Assembler) Orchestrator() *generate.Orchestrator {
	return a.orch
}

// Themes returns the theme registry.
func (a *Assembler) Themes() *theme.Registry {
	return a.themes
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// Assemble builds a presentation with exactly req.Count slides. It fails
// only for a count below one, an unknown theme id, or a cancelled context.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*model.Presentation, error) {
	start := time.Now()
	p, err := a.assemble(ctx, req)

	outcome := OutcomeOK
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCancelled
	case err != nil:
		outcome = OutcomeInvalid
	}
	if a.observer != nil {
		a.observer.ObserveDeck(req.Prompt, req.Count, outcome, time.Since(start))
	}
	return p, err
}

func (a *Assembler) assemble(ctx context.Context, req Request) (*model.Presentation, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSlideCount, req.Count)
	}
	if req.Mode == "" {
		req.Mode = model.ModeNormal
	}

	th, err := a.chooseTheme(req.ThemeID)
	if err != nil {
		return nil, err
	}
	topic := plan.DeriveTopic(req.Prompt)

	if a.pacing {
		if err := a.sleep(ctx, a.pacingDelay(req.Mode, req.Count)); err != nil {
			return nil, err
		}
	}

	items := a.planner.Plan(topic, req.Count)
	// Items past the requested count would be truncated anyway.
	if len(items) > req.Count {
		items = items[:req.Count]
	}

	b := &builder{
		a:          a,
		ctx:        ctx,
		topic:      topic,
		theme:      th,
		mode:       req.Mode,
		total:      req.Count,
		sources:    make([]string, req.Count),
		onProgress: req.OnProgress,
	}

	slides, err := b.generateAll(items)
	if err != nil {
		return nil, err
	}

	if req.Count > 1 && len(slides) < req.Count {
		s, err := b.one(plan.Conclusion(), len(slides), fallbacks{
			title: "Thank You / Q&A",
			notes: "Conclude the presentation, summarize key takeaways, and open for questions.",
		})
		if err != nil {
			return nil, err
		}
		s.Transition = model.TransitionFadeIn
		slides = append(slides, s)
		b.progress(len(slides)-1, s)
	}

	for len(slides) < req.Count {
		s, err := b.one(plan.Filler(topic), len(slides), fallbacks{
			title: "More on " + topic,
			notes: fmt.Sprintf("Further details on %s.", topic),
		})
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
		b.progress(len(slides)-1, s)
	}

	if len(slides) > req.Count {
		slides = slides[:req.Count]
	}

	now := time.Now().UTC()
	p := &model.Presentation{
		ID:         newID(),
		Title:      topic,
		Slides:     slides,
		Theme:      th,
		UserPrompt: req.Prompt,
		Topic:      topic,
		Tone:       req.Tone,
		Style:      req.Style,
		Mode:       req.Mode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(slides) > 0 {
		p.ActiveSlideID = slides[0].ID
	}

	a.logger.Info("presentation assembled",
		zap.String("id", p.ID),
		zap.String("topic", topic),
		zap.String("theme", th.ID),
		zap.Int("slides", len(slides)),
		zap.String("mode", req.Mode.String()),
	)
	return p, nil
}

func (a *Assembler) chooseTheme(id string) (model.Theme, error) {
	if id == "" {
		id = a.defaultTheme
	}
	if id != "" {
		return a.themes.Lookup(id)
	}
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return a.themes.Pick(a.rng), nil
}

// pacingDelay is base plus random jitter, both scaled by the slide count.
func (a *Assembler) pacingDelay(mode model.GenerationMode, count int) time.Duration {
	p, ok := pacing[mode]
	if !ok {
		p = pacing[model.ModeNormal]
	}
	a.rngMu.Lock()
	jitter := a.rng.Float64()
	a.rngMu.Unlock()
	ms := float64(p[0]*count) + jitter*float64(p[1]*count)
	return time.Duration(ms * float64(time.Millisecond))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newID() string {
	return "id-" + uuid.NewString()
}

// =============================================================================
// BUILDER
// =============================================================================

// builder carries the state of one assembly.
type builder struct {
	a     *Assembler
	ctx   context.Context
	topic string
	theme model.Theme
	mode  model.GenerationMode
	total int

	// sources records each slide's generation path by index.
	sources    []string
	onProgress func(Event)
	progressMu sync.Mutex
}

// fallbacks are used when the orchestrator returns empty fields.
type fallbacks struct {
	title string
	notes string
}

func (b *builder) generateAll(items []model.SlidePlanItem) ([]model.Slide, error) {
	slides := make([]model.Slide, len(items))
	defaults := func(i int) fallbacks {
		return fallbacks{
			title: fmt.Sprintf("Slide %d", i+1),
			notes: fmt.Sprintf("Default speaker notes for slide %d.", i+1),
		}
	}

	if b.a.concurrency < 2 {
		for i, it := range items {
			s, err := b.one(it, i, defaults(i))
			if err != nil {
				return nil, err
			}
			slides[i] = s
			b.progress(i, s)
		}
		return slides, nil
	}

	g, ctx := errgroup.WithContext(b.ctx)
	g.SetLimit(b.a.concurrency)
	for i, it := range items {
		g.Go(func() error {
			s, err := b.oneCtx(ctx, it, i, defaults(i))
			if err != nil {
				return err
			}
			slides[i] = s
			b.progress(i, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup cancels its own context on return; report the caller's state.
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	return slides, nil
}

// one generates the slide at position index.
func (b *builder) one(it model.SlidePlanItem, index int, fb fallbacks) (model.Slide, error) {
	return b.oneCtx(b.ctx, it, index, fb)
}

func (b *builder) oneCtx(ctx context.Context, it model.SlidePlanItem, index int, fb fallbacks) (model.Slide, error) {
	if err := ctx.Err(); err != nil {
		return model.Slide{}, fmt.Errorf("assembly stopped before slide %d: %w", index+1, err)
	}

	res := b.a.orch.Obtain(ctx, generate.SlideRequest{
		Focus:  it.Focus,
		Layout: it.Layout,
		Theme:  b.theme,
		Number: index + 1,
		Prompt: b.topic,
		Mode:   b.mode,
	})
	// A fallback produced because the caller gave up is not a slide.
	if err := ctx.Err(); err != nil {
		return model.Slide{}, fmt.Errorf("assembly stopped at slide %d: %w", index+1, err)
	}
	if index < len(b.sources) {
		b.sources[index] = res.Source
	}

	return newSlide(it.Layout, res, b.theme, b.mode, fb), nil
}

func (b *builder) progress(index int, s model.Slide) {
	if b.a.onProgress == nil && b.onProgress == nil {
		return
	}
	ev := Event{Index: index, Total: b.total, Slide: s}
	if index < len(b.sources) {
		ev.Source = b.sources[index]
	}

	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	if b.a.onProgress != nil {
		b.a.onProgress(ev)
	}
	if b.onProgress != nil {
		b.onProgress(ev)
	}
}

// newSlide builds a slide record from an orchestrator result.
func newSlide(layout model.LayoutKind, res generate.Result, th model.Theme, mode model.GenerationMode, fb fallbacks) model.Slide {
	s := model.Slide{
		ID:               newID(),
		Layout:           layout,
		Title:            res.Title,
		SVGContent:       res.SVG,
		SpeakerNotes:     res.Notes,
		Transition:       th.DefaultTransition,
		BackgroundColor:  theme.Resolve(th).Background,
		ThemeDescription: theme.SlideDescription(th, mode),
	}
	if s.Title == "" {
		s.Title = fb.title
	}
	if s.SpeakerNotes == "" {
		s.SpeakerNotes = fb.notes
	}
	if s.Transition == "" {
		s.Transition = model.TransitionFadeIn
	}
	return s
}
