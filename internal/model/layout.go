// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownLayout is returned when a layout name is not recognized.
	ErrUnknownLayout = errors.New("unknown layout")

	// ErrUnknownTransition is returned when a transition name is not recognized.
	ErrUnknownTransition = errors.New("unknown transition")

	// ErrUnknownMode is returned when a generation mode is not recognized.
	ErrUnknownMode = errors.New("unknown generation mode")
)

// =============================================================================
// LAYOUT KIND
// =============================================================================

// LayoutKind is the archetype of a slide's visual structure.
type LayoutKind int

const (
	LayoutTitleSlide LayoutKind = iota
	LayoutTitleContent
	LayoutSectionHeader
	LayoutTwoContent
	LayoutComparison
	LayoutTitleOnly
	LayoutBlank
	LayoutContentWithCaption
	LayoutPictureWithCaption
	LayoutQuote
	LayoutBigNumber
	LayoutSVGContent

	// NumLayouts is the number of layout kinds. It must stay last.
	NumLayouts
)

var layoutNames = [NumLayouts]string{
	LayoutTitleSlide:         "title_slide",
	LayoutTitleContent:       "title_content",
	LayoutSectionHeader:      "section_header",
	LayoutTwoContent:         "two_content",
	LayoutComparison:         "comparison",
	LayoutTitleOnly:          "title_only",
	LayoutBlank:              "blank",
	LayoutContentWithCaption: "content_with_caption",
	LayoutPictureWithCaption: "picture_with_caption",
	LayoutQuote:              "quote_slide",
	LayoutBigNumber:          "big_number",
	LayoutSVGContent:         "svg_content",
}

// String returns the wire name of the layout.
func (k LayoutKind) String() string {
	if k.Valid() {
		return layoutNames[k]
	}
	return fmt.Sprintf("layout(%d)", int(k))
}

// Valid reports whether k is one of the declared layout kinds.
func (k LayoutKind) Valid() bool {
	return k >= 0 && k < NumLayouts
}

// TitleDominant reports whether the layout is mostly title, which limits
// wrapped body text to fewer lines.
func (k LayoutKind) TitleDominant() bool {
	return k == LayoutTitleSlide || k == LayoutTitleOnly
}

// MarshalText implements encoding.TextMarshaler.
func (k LayoutKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayout, int(k))
	}
	return []byte(layoutNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LayoutKind) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseLayout parses a layout wire name. Hyphens and case are tolerated so
// that "Title-Content" and "title_content" are the same kind.
func ParseLayout(s string) (LayoutKind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range layoutNames {
		if n == name {
			return LayoutKind(i), nil
		}
	}
	// Accept the short form used in prose.
	if name == "quote" {
		return LayoutQuote, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// AllLayouts returns every layout kind in declaration order.
func AllLayouts() []LayoutKind {
	kinds := make([]LayoutKind, NumLayouts)
	for i := range kinds {
		kinds[i] = LayoutKind(i)
	}
	return kinds
}

// =============================================================================
// TRANSITION
// =============================================================================

// Transition is the animation played when a slide appears.
type Transition string

const (
	TransitionNone       Transition = "none"
	TransitionFadeIn     Transition = "fade_in"
	TransitionFlyInLeft  Transition = "fly_in_left"
	TransitionFlyInRight Transition = "fly_in_right"
	TransitionFlyInUp    Transition = "fly_in_up"
	TransitionFlyInDown  Transition = "fly_in_down"
	TransitionWipeLeft   Transition = "wipe_left"
	TransitionWipeRight  Transition = "wipe_right"
	TransitionWipeUp     Transition = "wipe_up"
	TransitionWipeDown   Transition = "wipe_down"
	TransitionZoomIn     Transition = "zoom_in"
)

// Transitions lists every supported transition.
var Transitions = []Transition{
	TransitionNone, TransitionFadeIn,
	TransitionFlyInLeft, TransitionFlyInRight, TransitionFlyInUp, TransitionFlyInDown,
	TransitionWipeLeft, TransitionWipeRight, TransitionWipeUp, TransitionWipeDown,
	TransitionZoomIn,
}

// ParseTransition validates a transition name.
func ParseTransition(s string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Transitions {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransition, s)
}

// =============================================================================
// GENERATION MODE
// =============================================================================

// GenerationMode selects the remote model tier.
type GenerationMode string

const (
	ModeNormal   GenerationMode = "normal"
	ModeAdvanced GenerationMode = "advanced"
)

// ParseMode parses a generation mode. The empty string is normal.
func ParseMode(s string) (GenerationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "advanced":
		return ModeAdvanced, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the mode name.
func (m GenerationMode) String() string {
	if m == "" {
		return string(ModeNormal)
	}
	return string(m)
}
