// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nhancris/KPresent/internal/svg"
)

// MaxResponseBytes caps the remote text accepted for one slide.
const MaxResponseBytes = 1 << 20

var (
	// ErrMissingFields indicates the response lacks a required field.
	ErrMissingFields = errors.New("response missing one or more required fields (svgContent, speakerNotes, titleSuggestion)")

	// ErrInvalidDocument indicates svgContent is not a vector document.
	ErrInvalidDocument = errors.New("generated SVG content does not appear to be a valid SVG string")

	// ErrResponseTooLarge indicates the response exceeded MaxResponseBytes.
	ErrResponseTooLarge = errors.New("response too large")

	// ErrMalformedResponse indicates the response is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")
)

// fencePattern matches a response wrapped in a Markdown code fence.
var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// slideResponse is the record the remote model must return. Pointers
// distinguish absent fields from empty ones.
type slideResponse struct {
	SVGContent      *string `json:"svgContent"`
	SpeakerNotes    *string `json:"speakerNotes"`
	TitleSuggestion *string `json:"titleSuggestion"`
}

// stripFence removes a surrounding code fence, if any.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return text
}

// parseSlideResponse parses and checks remote output.
func parseSlideResponse(text string) (title, doc, notes string, err error) {
	if len(text) > MaxResponseBytes {
		return "", "", "", fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, len(text))
	}

	var resp slideResponse
	if err := json.Unmarshal([]byte(stripFence(text)), &resp); err != nil {
		return "", "", "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.SVGContent == nil || *resp.SVGContent == "" || resp.SpeakerNotes == nil || resp.TitleSuggestion == nil {
		return "", "", "", ErrMissingFields
	}
	if err := svg.CheckDocument(*resp.SVGContent); err != nil {
		return "", "", "", fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return *resp.TitleSuggestion, *resp.SVGContent, *resp.SpeakerNotes, nil
}
