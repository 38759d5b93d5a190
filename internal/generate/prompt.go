// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nhancris/KPresent/internal/model"
)

// slideInstruction is the system instruction for slide generation.
const slideInstruction = `You are an AI Presentation Design Agent. Your primary task is to generate data for a single, visually stunning presentation slide.
You MUST respond ONLY with a valid JSON object matching this exact structure: {"svgContent": "<svg_markup_here>", "speakerNotes": "notes_here", "titleSuggestion": "title_here"}. NO OTHER TEXT OR EXPLANATION.
The root SVG tag MUST use viewBox="0 0 800 450" (for 16:9 aspect ratio) and width="100%" height="100%" to ensure it's responsive within its container.
All visual elements (text, shapes, paths) MUST be drawn comfortably WITHIN the 0,0 to 800,450 coordinates of the viewBox. No elements should overflow or be clipped.
Text size MUST be appropriate for its role (title, body, caption) and ALWAYS legible. Ensure sufficient font size and contrast. For "title_only" layouts like "Thank You" or "Q&A", use large, clear, but well-scaled fonts that fit entirely within the viewBox.
The SVG design should be beautiful, professional, and highly engaging.
Creatively and effectively incorporate the provided theme (colors, fonts) into the SVG's design. Use gradients, shadows, and sophisticated layout.
Ensure all text has excellent readability and high contrast against its immediate background. If using a complex or dark background pattern for a text area, place the text within a lighter, contrasting shape/block or ensure the text color itself provides sufficient contrast.
The SVG content MUST be directly relevant to the slide topic and layout hint.
For text in SVG, use <text> elements with appropriate x, y, font-family, font-size, fill, and font-weight. Handle text wrapping carefully using <tspan> elements for multiple lines. Ensure all text is escaped for XML.
SVG must be well-formed and self-contained. Do not use external images unless embedded as data URIs (prefer pure SVG shapes and text).
Speaker notes should be insightful and complement the visual content.
The title suggestion should be concise and compelling.`

// refineInstruction is the system instruction for image prompt refinement.
const refineInstruction = `You are an expert prompt engineer for text-to-image AI models. Your task is to take a user's basic idea for an image and transform it into a highly descriptive, artistically-informed prompt. The prompt should be concise (max 70 words) and specify style (e.g., photorealistic, watercolor, abstract, vector art), subject matter, composition details, lighting conditions, and overall mood. Aim for prompts that generate visually stunning and contextually relevant images for a professional presentation.`

// lower lowercases without locale rules. A Caser holds state, so each call
// gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// slideQuery composes the user message for one slide.
func slideQuery(req SlideRequest, themeDesc string) string {
	var sb strings.Builder
	sb.WriteString("Generate slide data for:\n")
	fmt.Fprintf(&sb, "Slide Topic: \"%s\"\n", req.Focus)
	fmt.Fprintf(&sb, "Layout Hint: \"%s\"\n", req.Layout)
	fmt.Fprintf(&sb, "Theme Description: \"%s\"\n", themeDesc)
	fmt.Fprintf(&sb, "Generation Mode: \"%s\"\n", req.Mode)
	fmt.Fprintf(&sb, "Slide Number: %d\n", req.Number)
	fmt.Fprintf(&sb, "Overall Presentation Context: \"%s\"\n", req.Prompt)
	sb.WriteString("Instruction: Make this slide exceptionally beautiful and visually interesting, leveraging the theme to its fullest, " +
		"ensuring all content fits within an 800x450 viewBox, and prioritizing text readability and appropriate scaling, especially for titles.")
	return sb.String()
}

// refineQuery composes the user message for image prompt refinement.
func refineQuery(idea string, mode model.GenerationMode) string {
	return fmt.Sprintf("User's image idea: \"%s\" (Targeting %s quality image generation)", idea, mode)
}

// isClosingTopic reports whether a title-only slide is a thank-you or Q&A
// slide, which gets a short body.
func isClosingTopic(layout model.LayoutKind, focus string) bool {
	if layout != model.LayoutTitleOnly {
		return false
	}
	l := lower(focus)
	return strings.Contains(l, "thank you") || strings.Contains(l, "q&a")
}

// offlineBody is the body text of a locally synthesized slide.
func offlineBody(req SlideRequest, themeDesc string) string {
	if isClosingTopic(req.Layout, req.Focus) {
		return closingBody
	}
	return fmt.Sprintf("Content for: %s. Layout: %s. %s. Mode: %s", lower(req.Focus), req.Layout, themeDesc, req.Mode)
}

// offlineNotes are the speaker notes of a locally synthesized slide.
func offlineNotes(req SlideRequest) string {
	return fmt.Sprintf("Speaker notes for slide %d: Key discussion points for \"%s\". "+
		"Emphasize how this relates to the overall topic of \"%s\". "+
		"Visually, this slide uses the \"%s\" theme and was generated in %s mode. "+
		"The layout hint was \"%s\". Aim for clear, concise delivery.",
		req.Number, req.Focus, req.Prompt, req.Theme.Name, req.Mode, req.Layout)
}

// fallbackTitle marks a slide whose remote generation failed.
func fallbackTitle(req SlideRequest) string {
	return fmt.Sprintf("%s (%s - %s mode)", req.Focus, FallbackMarker, req.Mode)
}

func fallbackBody(req SlideRequest, err error) string {
	if isClosingTopic(req.Layout, req.Focus) {
		return closingBody
	}
	return fmt.Sprintf("Error generating content for slide %d. Topic: %s.\nLayout: %s.\nError details: %s. Original Theme: %s",
		req.Number, lower(req.Focus), req.Layout, err, req.Theme.Name)
}

func fallbackNotes(req SlideRequest, err error) string {
	return fmt.Sprintf("Error state speaker notes for slide %d. API call failed. Original topic: %s. "+
		"The AI was instructed to create a visually rich slide based on layout hint '%s' and theme '%s' in %s mode. Error: %s",
		req.Number, req.Focus, req.Layout, req.Theme.Name, req.Mode, err)
}
