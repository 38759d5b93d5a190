// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the remote generative model clients used to produce
// slide content.
//
// Two providers are supported: an OpenRouter-compatible chat completions API
// and the Gemini generateContent API. Both satisfy Client, which takes a
// system instruction and a user prompt and returns the model's text.
//
// # Key Types
//
//   - Client: Provider-neutral completion interface
//   - Request: System instruction, prompt, model and JSON response flag
//   - OpenRouterClient: Chat completions client with retry and backoff
//   - GeminiClient: generateContent client
//   - Guard: Circuit breaker and rate limiter wrapped around any Client
//   - APIError: Provider error carrying code, message and HTTP status
//
// # Usage
//
//	var c cloud.Client = cloud.NewGeminiClient(apiKey)
//	c = cloud.NewGuard(c, cloud.GuardOptions{RatePerMinute: 60})
//	text, err := c.Complete(ctx, cloud.Request{
//	    Model:  "gemini-2.5-flash-preview-05-20",
//	    System: "Answer in JSON.",
//	    Prompt: "Describe a slide about tides.",
//	    JSON:   true,
//	})
//
// # Logging
//
// API keys are never logged. Requests log method, path, status and duration;
// keys are identified by a SHA-256 fingerprint.
package cloud
