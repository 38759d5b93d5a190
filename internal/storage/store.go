// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/util"
)

// DefaultMaxPresentations is the retention limit for new stores.
const DefaultMaxPresentations = 100

// previewLen is the rune length of Summary.Preview.
const previewLen = 80

// =============================================================================
// STORE
// =============================================================================

// Store persists presentations.
type Store interface {
	// Save stores p, assigning an id if it has none, and returns the id.
	Save(p *model.Presentation) (string, error)

	// Load returns the presentation with the given id.
	Load(id string) (*model.Presentation, error)

	// List returns every presentation, most recently updated first.
	List() ([]Summary, error)

	// Search returns presentations whose title, topic, prompt or slide
	// titles contain query, ignoring case.
	Search(query string) ([]Summary, error)

	// Delete removes one presentation.
	Delete(id string) error

	// Clear removes every presentation.
	Clear() error
}

// Summary contains metadata for listing presentations.
type Summary struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Topic      string               `json:"topic"`
	Theme      string               `json:"theme"`
	Mode       model.GenerationMode `json:"mode"`
	SlideCount int                  `json:"slide_count"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Preview    string               `json:"preview"` // user prompt, truncated
}

// Summarize builds the listing metadata for a presentation.
func Summarize(p *model.Presentation) Summary {
	return Summary{
		ID:         p.ID,
		Title:      p.Title,
		Topic:      p.Topic,
		Theme:      p.Theme.Name,
		Mode:       p.Mode,
		SlideCount: len(p.Slides),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Preview:    util.TruncateRunes(util.OneLine(p.UserPrompt), previewLen),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a presentation doesn't exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// ErrInvalidID is returned for ids that cannot name a stored presentation.
var ErrInvalidID = errors.New("invalid presentation id")

// NotFoundError reports the id that was not found.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "presentation not found"
	}
	return "presentation not found: " + e.ID
}

// Is matches any *NotFoundError, so errors.Is(err, ErrNotFound) works for
// errors carrying an id.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// =============================================================================
// HELPERS
// =============================================================================

// idPattern keeps ids safe to use as file names.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateID reports whether id can name a stored presentation.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// NewID returns a fresh presentation id.
func NewID() string {
	return "id-" + uuid.NewString()
}

// prepare assigns an id and timestamps before a save.
func prepare(p *model.Presentation) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	return nil
}

// searchText is the lowercased text a query is matched against.
func searchText(p *model.Presentation) string {
	parts := []string{p.Title, p.Topic, p.UserPrompt}
	for _, s := range p.Slides {
		parts = append(parts, s.Title)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
