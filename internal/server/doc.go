// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the kpresent HTTP API.
//
// # Endpoints
//
//   - POST   /api/v1/presentations                               - Generate and store a deck
//   - GET    /api/v1/presentations                               - List (?q= searches)
//   - GET    /api/v1/presentations/stream                        - WebSocket progress stream
//   - GET    /api/v1/presentations/{id}                          - Load a deck
//   - DELETE /api/v1/presentations/{id}                          - Delete a deck
//   - PUT    /api/v1/presentations/{id}/theme                    - Apply a theme
//   - GET    /api/v1/presentations/{id}/export/{format}          - json, html, markdown
//   - POST   /api/v1/presentations/{id}/slides                   - Add a slide
//   - GET    /api/v1/presentations/{id}/slides/{slideID}.svg     - Slide document
//   - PATCH  /api/v1/presentations/{id}/slides/{slideID}         - Edit, move or activate
//   - DELETE /api/v1/presentations/{id}/slides/{slideID}         - Delete a slide
//   - POST   /api/v1/presentations/{id}/slides/{slideID}/regenerate
//   - GET    /api/v1/themes                                      - Registered themes
//   - POST   /api/v1/render                                      - Stateless layout render
//   - POST   /api/v1/image-prompt                                - Refine an image idea
//   - GET    /health, /metrics
//
// # Middleware
//
// Request IDs, zap access logging, panic recovery, security headers and
// optional CORS wrap every route. Routes under /api/v1 add optional bearer
// authentication and a per-client token bucket. A request's context reaches
// the assembler, so a client that disconnects stops generation.
//
// # Usage
//
//	srv := server.New(asm, store, server.Options{
//		Addr:      "127.0.0.1:8787",
//		AuthToken: token,
//		Logger:    logger,
//	})
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
