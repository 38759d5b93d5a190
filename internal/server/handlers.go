// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/diff"
	"github.com/nhancris/KPresent/internal/export"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
	"github.com/nhancris/KPresent/internal/theme"
)

// ============================================================================
// HEALTH
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Online:  s.asm.Orchestrator().Online(),
		Themes:  s.asm.Themes().Len(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// ============================================================================
// PRESENTATIONS
// ============================================================================

// deckRequest converts a validated body into an assembler request.
func (s *Server) deckRequest(body GenerateRequest) (deck.Request, error) {
	mode := s.opts.DefaultMode
	if body.Mode != "" {
		m, err := model.ParseMode(body.Mode)
		if err != nil {
			return deck.Request{}, err
		}
		mode = m
	}
	count := body.Slides
	if count == 0 {
		count = s.opts.DefaultSlides
	}
	return deck.Request{
		Prompt:  body.Prompt,
		Count:   count,
		Mode:    mode,
		Tone:    body.Tone,
		Style:   body.Style,
		ThemeID: body.Theme,
	}, nil
}

// POST /api/v1/presentations
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := s.deckRequest(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p, err := s.asm.Assemble(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.Save(p); err != nil {
		s.fail(w, r, fmt.Errorf("save presentation: %w", err))
		return
	}
	w.Header().Set("Location", "/api/v1/presentations/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// GET /api/v1/presentations[?q=term]
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		summaries []storage.Summary
		err       error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		summaries, err = s.store.Search(q)
	} else {
		summaries, err = s.store.List()
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Presentations: summaries, Count: len(summaries)})
}

// GET /api/v1/presentations/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/presentations/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// edit loads the presentation named in the URL, applies fn and saves the
// result. It holds the edit lock for the whole cycle.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, fn func(*model.Presentation) (*model.Presentation, error)) (*model.Presentation, bool) {
	s.edits.Lock()
	defer s.edits.Unlock()

	p, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	out, err := fn(p)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if _, err := s.store.Save(out); err != nil {
		s.fail(w, r, fmt.Errorf("save presentation: %w", err))
		return nil, false
	}
	return out, true
}

// PUT /api/v1/presentations/{id}/theme
func (s *Server) handleApplyTheme(w http.ResponseWriter, r *http.Request) {
	var body ThemeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.asm.Themes().Lookup(body.Theme)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, ok := s.edit(w, r, func(p *model.Presentation) (*model.Presentation, error) {
		return deck.ApplyTheme(p, t), nil
	})
	if ok {
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/v1/presentations/{id}/export/{format}
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := export.DefaultOptions()
	opts.IncludeSVG = r.URL.Query().Get("svg") == "true"
	if r.URL.Query().Get("notes") == "false" {
		opts.IncludeNotes = false
	}

	exp, err := export.New(chi.URLParam(r, "format"), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := exp.Export(p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.MimeType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="presentation_%s%s"`, p.ID, exp.FileExtension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ============================================================================
// SLIDES
// ============================================================================

// POST /api/v1/presentations/{id}/slides
func (s *Server) handleAddSlide(w http.ResponseWriter, r *http.Request) {
	var body AddSlideRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	layout, err := model.ParseLayout(body.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, ok := s.edit(w, r, func(p *model.Presentation) (*model.Presentation, error) {
		return s.asm.AddSlide(r.Context(), p, body.After, layout, body.Focus)
	})
	if ok {
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /api/v1/presentations/{id}/slides/{slideID}.svg
func (s *Server) handleSlideSVG(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slideID := chi.URLParam(r, "slideID")
	idx := p.SlideIndex(slideID)
	if idx < 0 {
		s.fail(w, r, fmt.Errorf("%w: %s", deck.ErrSlideNotFound, slideID))
		return
	}
	doc := p.Slides[idx].SVGContent
	if doc == "" {
		writeError(w, http.StatusNotFound, "slide has no vector document")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src data:")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// PATCH /api/v1/presentations/{id}/slides/{slideID}
func (s *Server) handlePatchSlide(w http.ResponseWriter, r *http.Request) {
	var body PatchSlideRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	patch, err := body.toPatch()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slideID := chi.URLParam(r, "slideID")

	out, ok := s.edit(w, r, func(p *model.Presentation) (*model.Presentation, error) {
		var err error
		if !patch.Empty() {
			if p, err = deck.UpdateSlide(p, slideID, patch); err != nil {
				return nil, err
			}
		}
		if body.Position != nil {
			if p, err = deck.MoveSlide(p, slideID, *body.Position); err != nil {
				return nil, err
			}
		}
		if body.Active {
			if p, err = deck.SetActive(p, slideID); err != nil {
				return nil, err
			}
		}
		return p, nil
	})
	if ok {
		writeJSON(w, http.StatusOK, out)
	}
}

// toPatch parses the enumerated fields of a patch body.
func (b PatchSlideRequest) toPatch() (deck.SlidePatch, error) {
	patch := deck.SlidePatch{
		Title:           b.Title,
		SpeakerNotes:    b.SpeakerNotes,
		SVGContent:      b.SVGContent,
		BackgroundColor: b.BackgroundColor,
	}
	if b.Transition != nil {
		tr, err := model.ParseTransition(*b.Transition)
		if err != nil {
			return deck.SlidePatch{}, err
		}
		patch.Transition = &tr
	}
	if b.Layout != nil {
		l, err := model.ParseLayout(*b.Layout)
		if err != nil {
			return deck.SlidePatch{}, err
		}
		patch.Layout = &l
	}
	return patch, nil
}

// DELETE /api/v1/presentations/{id}/slides/{slideID}
func (s *Server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	slideID := chi.URLParam(r, "slideID")
	out, ok := s.edit(w, r, func(p *model.Presentation) (*model.Presentation, error) {
		return deck.DeleteSlide(p, slideID)
	})
	if ok {
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /api/v1/presentations/{id}/slides/{slideID}/regenerate
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var body RegenerateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	slideID := chi.URLParam(r, "slideID")

	var before model.Slide
	out, ok := s.edit(w, r, func(p *model.Presentation) (*model.Presentation, error) {
		if idx := p.SlideIndex(slideID); idx >= 0 {
			before = p.Slides[idx]
		}
		return s.asm.RegenerateSlide(r.Context(), p, slideID, body.Focus)
	})
	if !ok {
		return
	}

	sd := diff.CompareSlides(before, out.Slides[out.SlideIndex(slideID)])
	changed := make([]string, 0, 3)
	for _, d := range sd.Fields() {
		if d.Changed() {
			changed = append(changed, d.Name)
		}
	}
	s.logger.Debug("slide regenerated",
		zap.String("presentation", out.ID),
		zap.String("slide", slideID),
		zap.String("diff", sd.Summary()),
	)
	writeJSON(w, http.StatusOK, RegenerateResponse{Presentation: out, Changed: changed, Summary: sd.Summary()})
}

// ============================================================================
// STATELESS ENDPOINTS
// ============================================================================

// GET /api/v1/themes
func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.asm.Themes().All())
}

// POST /api/v1/render
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	layout, err := model.ParseLayout(body.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	themeID := body.Theme
	if themeID == "" {
		themeID = theme.DeepOcean
	}
	t, err := s.asm.Themes().Lookup(themeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc := s.asm.Orchestrator().Render(layout, body.Title, body.Body, t)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// POST /api/v1/image-prompt
func (s *Server) handleImagePrompt(w http.ResponseWriter, r *http.Request) {
	var body ImagePromptRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	mode, err := model.ParseMode(body.Mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prompt := s.asm.Orchestrator().RefineImagePrompt(r.Context(), body.Idea, mode)
	writeJSON(w, http.StatusOK, ImagePromptResponse{Prompt: prompt})
}
