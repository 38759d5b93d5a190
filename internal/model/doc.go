// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for presentations and slides.
//
// This package defines the core domain types shared by the planner, the
// renderer, the generation pipeline and the storage layer. Types here carry
// no behavior beyond parsing, formatting and copying.
//
// # Key Types
//
//   - LayoutKind: Closed enumeration of slide archetypes
//   - Transition: Slide transition animation
//   - GenerationMode: Quality tier for remote generation (normal, advanced)
//   - Theme, ColorPalette, FontPairing: Visual identity of a presentation
//   - SlidePlanItem: A planned slide (layout + content focus), not yet rendered
//   - Slide: A fully generated slide record
//   - Presentation: Ordered slides plus theme, prompt and session state
//
// # Usage
//
// Parse a layout name received over the wire:
//
//	kind, err := model.ParseLayout("title_content")
//	if err != nil {
//	    return err
//	}
//
// Copy a presentation before editing it:
//
//	next := p.Clone()
//	next.Slides[0].Title = "New title"
package model
