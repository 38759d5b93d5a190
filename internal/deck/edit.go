// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/generate"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/theme"
)

// untitledFocus is used when a slide has neither a focus override nor a title.
const untitledFocus = "Untitled Slide Focus"

// SlidePatch is a field-level slide update. Nil fields are left unchanged.
type SlidePatch struct {
	Title           *string
	SpeakerNotes    *string
	SVGContent      *string
	Transition      *model.Transition
	BackgroundColor *string
	Layout          *model.LayoutKind
}

// Empty reports whether the patch changes nothing.
func (sp SlidePatch) Empty() bool {
	return sp.Title == nil && sp.SpeakerNotes == nil && sp.SVGContent == nil &&
		sp.Transition == nil && sp.BackgroundColor == nil && sp.Layout == nil
}

// =============================================================================
// GENERATING EDITS
// =============================================================================

// RegenerateSlide replaces the content of one slide. The slide keeps its id,
// layout, transition and position. An empty focus reuses the slide title.
func (a *Assembler) RegenerateSlide(ctx context.Context, p *model.Presentation, slideID, focus string) (*model.Presentation, error) {
	idx := p.SlideIndex(slideID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
	}
	old := p.Slides[idx]

	focus = strings.TrimSpace(focus)
	if focus == "" {
		focus = old.Title
	}
	if focus == "" {
		focus = untitledFocus
	}

	res := a.orch.Obtain(ctx, generate.SlideRequest{
		Focus:  focus,
		Layout: old.Layout,
		Theme:  p.Theme,
		Number: idx + 1,
		Prompt: p.UserPrompt,
		Mode:   p.Mode,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := p.Clone()
	s := &out.Slides[idx]
	if res.Title != "" {
		s.Title = res.Title
	}
	s.SVGContent = res.SVG
	if res.Notes != "" {
		s.SpeakerNotes = res.Notes
	}
	s.ThemeDescription = theme.SlideDescription(p.Theme, p.Mode) + " Regenerated with focus: " + focus
	out.UpdatedAt = time.Now().UTC()

	a.logger.Debug("slide regenerated",
		zap.String("presentation", p.ID),
		zap.String("slide", slideID),
		zap.String("source", res.Source),
	)
	return out, nil
}

// AddSlide generates a new slide and inserts it after the slide with id
// afterID, or at the end when afterID is empty. The new slide becomes active.
func (a *Assembler) AddSlide(ctx context.Context, p *model.Presentation, afterID string, layout model.LayoutKind, focus string) (*model.Presentation, error) {
	pos := len(p.Slides)
	if afterID != "" {
		i := p.SlideIndex(afterID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, afterID)
		}
		pos = i + 1
	}
	if !layout.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownLayout, int(layout))
	}

	focus = strings.TrimSpace(focus)
	if focus == "" {
		focus = "New " + strings.ReplaceAll(layout.String(), "_", " ") + " Slide"
	}

	res := a.orch.Obtain(ctx, generate.SlideRequest{
		Focus:  focus,
		Layout: layout,
		Theme:  p.Theme,
		Number: pos + 1,
		Prompt: p.UserPrompt,
		Mode:   p.Mode,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newSlide(layout, res, p.Theme, p.Mode, fallbacks{
		title: focus,
		notes: fmt.Sprintf("Default speaker notes for slide %d.", pos+1),
	})

	out := p.Clone()
	out.Slides = append(out.Slides, model.Slide{})
	copy(out.Slides[pos+1:], out.Slides[pos:])
	out.Slides[pos] = s
	out.ActiveSlideID = s.ID
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// =============================================================================
// FIELD EDITS
// =============================================================================

// UpdateSlide merges a patch into one slide.
func UpdateSlide(p *model.Presentation, slideID string, patch SlidePatch) (*model.Presentation, error) {
	idx := p.SlideIndex(slideID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
	}
	if patch.Layout != nil && !patch.Layout.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownLayout, int(*patch.Layout))
	}
	if patch.Transition != nil {
		if _, err := model.ParseTransition(string(*patch.Transition)); err != nil {
			return nil, err
		}
	}
	if patch.BackgroundColor != nil && *patch.BackgroundColor != "" {
		if err := theme.ValidateColor(*patch.BackgroundColor); err != nil {
			return nil, err
		}
	}

	out := p.Clone()
	s := &out.Slides[idx]
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.SpeakerNotes != nil {
		s.SpeakerNotes = *patch.SpeakerNotes
	}
	if patch.SVGContent != nil {
		s.SVGContent = *patch.SVGContent
	}
	if patch.Transition != nil {
		s.Transition = *patch.Transition
	}
	if patch.BackgroundColor != nil {
		s.BackgroundColor = *patch.BackgroundColor
	}
	if patch.Layout != nil {
		s.Layout = *patch.Layout
	}
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// DeleteSlide removes a slide. If it was active, the slide before it becomes
// active, or the new first slide when the first was removed.
func DeleteSlide(p *model.Presentation, slideID string) (*model.Presentation, error) {
	idx := p.SlideIndex(slideID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
	}

	out := p.Clone()
	out.Slides = append(out.Slides[:idx], out.Slides[idx+1:]...)
	if p.ActiveSlideID == slideID {
		out.ActiveSlideID = ""
		if len(out.Slides) > 0 {
			out.ActiveSlideID = out.Slides[max(0, idx-1)].ID
		}
	}
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// MoveSlide moves a slide to position to, shifting the slides in between.
func MoveSlide(p *model.Presentation, slideID string, to int) (*model.Presentation, error) {
	from := p.SlideIndex(slideID)
	if from < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
	}
	if to < 0 || to >= len(p.Slides) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSlideIndex, to, len(p.Slides))
	}

	out := p.Clone()
	if from == to {
		return out, nil
	}
	s := out.Slides[from]
	if from < to {
		copy(out.Slides[from:to], out.Slides[from+1:to+1])
	} else {
		copy(out.Slides[to+1:from+1], out.Slides[to:from])
	}
	out.Slides[to] = s
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// SetActive marks a slide as active.
func SetActive(p *model.Presentation, slideID string) (*model.Presentation, error) {
	if p.SlideIndex(slideID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
	}
	out := p.Clone()
	out.ActiveSlideID = slideID
	return out, nil
}

// ApplyTheme swaps the presentation theme and refreshes every slide's
// background color and theme description. Slide documents are kept.
func ApplyTheme(p *model.Presentation, t model.Theme) *model.Presentation {
	out := p.Clone()
	out.Theme = t
	bg := theme.Resolve(t).Background
	desc := theme.SlideDescription(t, p.Mode)
	for i := range out.Slides {
		out.Slides[i].BackgroundColor = bg
		out.Slides[i].ThemeDescription = desc
	}
	out.UpdatedAt = time.Now().UTC()
	return out
}
