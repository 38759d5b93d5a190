// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package svg renders slides as self-contained 800x450 SVG documents.
//
// The renderer is the deterministic path used when no remote generator is
// configured, the fallback when a remote call fails, and the structural
// contract remote output is checked against. Output depends only on its
// arguments: the same layout, text and theme always produce the same bytes.
//
// # Key Types
//
//   - Renderer: Layout-aware document synthesis
//   - Measurer: Text width estimation (HeuristicMeasurer, RuneWidthMeasurer)
//   - WrapOptions: Parameters for greedy line wrapping
//
// # Usage
//
//	r := svg.NewRenderer()
//	doc := r.Render(model.LayoutTitleContent, "Benefits", "Lower cost and less noise", th)
//	if err := svg.CheckDocument(doc); err != nil {
//	    return err
//	}
//
// Substitute a wide-glyph aware measurer:
//
//	r := svg.NewRenderer(svg.WithMeasurer(svg.RuneWidthMeasurer{Factor: 0.6}))
package svg
