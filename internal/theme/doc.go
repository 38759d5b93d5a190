// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme provides the shipped presentation themes and resolves the
// concrete colors and fonts a renderer consumes.
//
// Every color the renderer draws with resolves through a fallback chain, so a
// theme with optional fields left empty still renders:
//
//	background = slide background -> palette background -> #FFFFFF
//	title text = title text -> primary
//	body text  = body text -> text on background
//
// IsDark classifies a background by its red channel and decides whether text
// panels get a light or a dark translucent tint.
//
// # Key Types
//
//   - Resolved: Concrete colors and font families for one theme
//   - Registry: Shipped plus user-supplied themes, with seeded random choice
//
// # Usage
//
//	reg := theme.NewRegistry()
//	t := reg.Pick(rand.New(rand.NewSource(42)))
//	r := theme.Resolve(t)
//	fmt.Println(r.Background, r.Dark)
package theme
