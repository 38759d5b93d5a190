// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
)

// ============================================================================
// REQUEST TYPES
// ============================================================================

// GenerateRequest is the body of POST /api/v1/presentations and the first
// message on the progress stream.
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"max=4000"`
	Slides int    `json:"slides" validate:"omitempty,min=1,max=50"`
	Mode   string `json:"mode" validate:"omitempty,oneof=normal advanced"`
	Tone   string `json:"tone" validate:"max=64"`
	Style  string `json:"style" validate:"max=64"`
	Theme  string `json:"theme" validate:"max=128"`
}

// RegenerateRequest is the body of the slide regenerate endpoint.
type RegenerateRequest struct {
	Focus string `json:"focus" validate:"max=500"`
}

// AddSlideRequest is the body of POST .../slides.
type AddSlideRequest struct {
	After  string `json:"after" validate:"max=128"`
	Layout string `json:"layout" validate:"required,max=64"`
	Focus  string `json:"focus" validate:"max=500"`
}

// PatchSlideRequest is the body of PATCH .../slides/{slideID}. Absent
// fields are left unchanged.
type PatchSlideRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=500"`
	SpeakerNotes    *string `json:"speakerNotes" validate:"omitempty,max=20000"`
	SVGContent      *string `json:"svgContent" validate:"omitempty,max=1048576"`
	Transition      *string `json:"transition" validate:"omitempty,max=32"`
	BackgroundColor *string `json:"backgroundColor" validate:"omitempty,max=32"`
	Layout          *string `json:"layout" validate:"omitempty,max=64"`
	Position        *int    `json:"position" validate:"omitempty,min=0"`
	Active          bool    `json:"active"`
}

// ThemeRequest is the body of PUT .../theme.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,max=128"`
}

// RenderRequest is the body of POST /api/v1/render.
type RenderRequest struct {
	Layout string `json:"layout" validate:"required,max=64"`
	Title  string `json:"title" validate:"max=500"`
	Body   string `json:"body" validate:"max=20000"`
	Theme  string `json:"theme" validate:"max=128"`
}

// ImagePromptRequest is the body of POST /api/v1/image-prompt.
type ImagePromptRequest struct {
	Idea string `json:"idea" validate:"max=2000"`
	Mode string `json:"mode" validate:"omitempty,oneof=normal advanced"`
}

// ============================================================================
// RESPONSE TYPES
// ============================================================================

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ListResponse is the body of GET /api/v1/presentations.
type ListResponse struct {
	Presentations []storage.Summary `json:"presentations"`
	Count         int               `json:"count"`
}

// RegenerateResponse carries the edited presentation and what changed.
type RegenerateResponse struct {
	Presentation *model.Presentation `json:"presentation"`
	Changed      []string            `json:"changed"`
	Summary      string              `json:"summary"`
}

// ImagePromptResponse is the body of POST /api/v1/image-prompt.
type ImagePromptResponse struct {
	Prompt string `json:"prompt"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Online  bool   `json:"online"`
	Themes  int    `json:"themes"`
	Uptime  string `json:"uptime"`
}

// StreamMessage is one frame on the progress stream.
type StreamMessage struct {
	Type         string              `json:"type"`
	Index        int                 `json:"index,omitempty"`
	Total        int                 `json:"total,omitempty"`
	Slide        *model.Slide        `json:"slide,omitempty"`
	Source       string              `json:"source,omitempty"`
	Presentation *model.Presentation `json:"presentation,omitempty"`
	Error        string              `json:"error,omitempty"`
	Timestamp    int64               `json:"timestamp"`
}

// Stream frame types.
const (
	StreamProgress = "progress"
	StreamComplete = "complete"
	StreamError    = "error"
)

func newStreamMessage(kind string) StreamMessage {
	return StreamMessage{Type: kind, Timestamp: time.Now().Unix()}
}

// ============================================================================
// VALIDATION
// ============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// errValidation marks a request body that failed struct validation.
var errValidation = errors.New("invalid request")

// validationError keeps the per-field messages for the response.
type validationError struct {
	details []string
}

func (e *validationError) Error() string {
	return "invalid request: " + strings.Join(e.details, "; ")
}

func (e *validationError) Unwrap() error { return errValidation }

// validateStruct validates a request body and returns a *validationError
// listing every failed field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, formatFieldError(fe))
	}
	return &validationError{details: details}
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
