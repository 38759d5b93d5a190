// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package theme

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nhancris/KPresent/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownTheme is returned when a theme id is not registered.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrInvalidColor is returned when a color is not #RGB or #RRGGBB.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidTheme is returned for themes missing required fields.
	ErrInvalidTheme = errors.New("invalid theme")
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the themes available for selection. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	themes []model.Theme
	custom map[string]bool
}

// NewRegistry returns a registry holding the shipped themes.
func NewRegistry() *Registry {
	return &Registry{
		themes: Shipped(),
		custom: make(map[string]bool),
	}
}

// All returns a copy of every registered theme in registration order.
func (r *Registry) All() []model.Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Theme, len(r.themes))
	copy(out, r.themes)
	return out
}

// Len returns the number of registered themes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.themes)
}

// Lookup returns the theme with the given id.
func (r *Registry) Lookup(id string) (model.Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.themes {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
}

// Pick returns a shipped theme chosen uniformly at random using rng. Custom
// themes are only used when asked for by id. A nil rng uses the global
// source.
func (r *Registry) Pick(rng *rand.Rand) model.Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shipped := make([]model.Theme, 0, len(r.themes))
	for _, t := range r.themes {
		if !r.custom[t.ID] {
			shipped = append(shipped, t)
		}
	}
	var i int
	if rng != nil {
		i = rng.Intn(len(shipped))
	} else {
		i = rand.Intn(len(shipped))
	}
	return shipped[i]
}

// Add registers a custom theme, replacing a custom theme with the same id.
// Shipped themes cannot be replaced.
func (r *Registry) Add(t model.Theme) error {
	if err := Validate(t); err != nil {
		return err
	}
	if t.DefaultTransition == "" {
		t.DefaultTransition = model.TransitionFadeIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.themes {
		if existing.ID != t.ID {
			continue
		}
		if !r.custom[t.ID] {
			return fmt.Errorf("%w: %q is a shipped theme", ErrInvalidTheme, t.ID)
		}
		r.themes[i] = t
		return nil
	}
	r.themes = append(r.themes, t)
	r.custom[t.ID] = true
	return nil
}

// ResetCustom drops every custom theme.
func (r *Registry) ResetCustom() {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.themes[:0]
	for _, t := range r.themes {
		if !r.custom[t.ID] {
			kept = append(kept, t)
		}
	}
	r.themes = kept
	r.custom = make(map[string]bool)
}

// LoadDir registers every *.yaml and *.yml theme file in dir, in file name
// order. It returns the number of themes loaded. A missing directory is not
// an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read theme directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	var errs []error
	for _, name := range names {
		t, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.Add(t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

// LoadFile reads a single YAML theme file. A theme without an id takes its
// id from the file name.
func LoadFile(path string) (model.Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Theme{}, fmt.Errorf("failed to read theme file: %w", err)
	}
	var t model.Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return model.Theme{}, fmt.Errorf("%s: failed to decode theme: %w", filepath.Base(path), err)
	}
	if t.ID == "" {
		t.ID = "theme-" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	return t, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that a theme has an id and well-formed colors. The
// optional slide-specific colors may be empty.
func Validate(t model.Theme) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTheme)
	}
	c := t.Colors
	required := map[string]string{
		"primary":            c.Primary,
		"secondary":          c.Secondary,
		"accent":             c.Accent,
		"text_on_primary":    c.TextOnPrimary,
		"background":         c.Background,
		"text_on_background": c.TextOnBackground,
	}
	optional := map[string]string{
		"text_on_secondary": c.TextOnSecondary,
		"slide_background":  c.SlideBackground,
		"title_text":        c.TitleText,
		"body_text":         c.BodyText,
	}
	for _, field := range sortedKeys(required) {
		if err := ValidateColor(required[field]); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	for _, field := range sortedKeys(optional) {
		if optional[field] == "" {
			continue
		}
		if err := ValidateColor(optional[field]); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if t.DefaultTransition != "" {
		if _, err := model.ParseTransition(string(t.DefaultTransition)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
		}
	}
	return nil
}

// ValidateColor accepts #RGB and #RRGGBB hex colors.
func ValidateColor(c string) error {
	s, ok := strings.CutPrefix(c, "#")
	if !ok || (len(s) != 3 && len(s) != 6) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	for _, ch := range s {
		isHex := (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
		if !isHex {
			return fmt.Errorf("%w: %q", ErrInvalidColor, c)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
