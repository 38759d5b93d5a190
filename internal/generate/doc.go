// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate obtains the content of a single slide.
//
// The Orchestrator asks a remote model for a slide when a client is
// configured and synthesizes it locally otherwise. Remote output is accepted
// only if it parses as the expected three-field JSON record and carries a
// structurally valid vector document. Any failure falls back to local
// synthesis with the error recorded in the title and speaker notes, so
// Obtain always returns a usable slide and never an error.
//
// # Key Types
//
//   - Orchestrator: Remote-or-local slide acquisition
//   - Client: The remote completion interface, satisfied by cloud clients
//   - SlideRequest: Focus, layout, theme, slide number, prompt and mode
//   - Result: Title, vector document, speaker notes and the source used
//
// # Usage
//
//	orch := generate.New(client, generate.WithLogger(logger))
//	res := orch.Obtain(ctx, generate.SlideRequest{
//	    Focus:  "Benefits of solar",
//	    Layout: model.LayoutTitleContent,
//	    Theme:  th,
//	    Number: 2,
//	    Prompt: "Solar power",
//	    Mode:   model.ModeNormal,
//	})
package generate
