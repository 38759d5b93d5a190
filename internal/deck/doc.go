// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deck assembles presentations and applies edits to them.
//
// The Assembler turns a prompt and a slide count into a Presentation with
// exactly that many slides: it picks a theme, plans the deck, obtains each
// slide from the generate.Orchestrator, then adds a conclusion and filler
// slides or truncates until the count matches. Generation is sequential by
// default; with a concurrency above one, plan items are generated in
// parallel and reassembled in plan order.
//
// Every edit returns a new Presentation and leaves its input untouched.
//
// # Key Types
//
//   - Assembler: Builds presentations and regenerates or adds slides
//   - Request: Prompt, count, mode, tone, style and optional theme
//   - Event: Progress notification for one finished slide
//   - SlidePatch: Field-level slide update
//
// # Usage
//
//	asm := deck.NewAssembler(orch, theme.NewRegistry(), deck.WithSeed(42))
//	p, err := asm.Assemble(ctx, deck.Request{Prompt: "Tidal power", Count: 5})
//	if err != nil {
//	    return err
//	}
//	p, err = asm.RegenerateSlide(ctx, p, p.Slides[1].ID, "Costs of tidal power")
package deck
