// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Configuration constants shared by the providers.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of attempts. One attempt means
	// no retry: a failed slide falls back to local synthesis instead.
	DefaultMaxRetries = 1

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	userAgent = "kpresent/0.1.0"
)

// Provider names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderNone       = "none"
)

// Error variables for common provider errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("remote API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrUnavailable indicates the provider answered with a server error.
	ErrUnavailable = errors.New("service unavailable")

	// ErrCircuitOpen indicates the circuit breaker is rejecting calls.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrEmptyResponse indicates the provider returned no text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// APIError represents an error reported by a provider.
type APIError struct {
	Provider string
	Code     string
	Message  string
	Status   int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error [%s] (HTTP %d): %s", e.Provider, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
}

// Request is a single completion request.
type Request struct {
	// Model is the provider model identifier. Empty uses the client default.
	Model string

	// System is the system instruction.
	System string

	// Prompt is the user message.
	Prompt string

	// JSON asks the provider for a JSON response body.
	JSON bool

	// Temperature is passed through when non-zero.
	Temperature float64
}

// Client is a remote generative model.
type Client interface {
	// Complete returns the model's text for the request.
	Complete(ctx context.Context, req Request) (string, error)

	// Provider returns the provider name.
	Provider() string
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// readResponse reads the response body with size limits.
func readResponse(resp *http.Response) ([]byte, error) {
	// Read one byte past the limit to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// withRetry runs fn up to attempts times, backing off between retryable
// failures.
func withRetry(ctx context.Context, attempts int, fn func() (string, error)) (string, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		text, err := fn()
		if err == nil {
			return text, nil
		}
		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
	}
	if attempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// fingerprint returns a SHA-256 fingerprint of an API key for logging.
func fingerprint(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:4])
}

// maskKey returns a display form of an API key that exposes no key material.
func maskKey(apiKey string) string {
	if apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(apiKey), fingerprint(apiKey))
}

// =============================================================================
// FACTORY
// =============================================================================

// Options configures New.
type Options struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// New builds the client for a provider. It returns nil with no error for the
// "none" provider or an empty API key, which callers treat as offline.
func New(opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, nil
	}
	switch opts.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderGemini, "":
		c := NewGeminiClient(opts.APIKey)
		if opts.BaseURL != "" {
			c.WithBaseURL(opts.BaseURL)
		}
		if opts.Model != "" {
			c.SetModel(opts.Model)
		}
		if opts.Timeout > 0 {
			c.WithTimeout(opts.Timeout)
		}
		if opts.MaxRetries > 0 {
			c.WithMaxRetries(opts.MaxRetries)
		}
		return c, nil
	case ProviderOpenRouter:
		c := NewOpenRouterClient(opts.APIKey)
		if opts.BaseURL != "" {
			c.WithBaseURL(opts.BaseURL)
		}
		if opts.Model != "" {
			c.SetModel(opts.Model)
		}
		if opts.Timeout > 0 {
			c.WithTimeout(opts.Timeout)
		}
		if opts.MaxRetries > 0 {
			c.WithMaxRetries(opts.MaxRetries)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, opts.Provider)
	}
}
