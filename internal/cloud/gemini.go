// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultGeminiURL is the base URL for the Gemini API.
	DefaultGeminiURL = "https://generativelanguage.googleapis.com"

	// GeminiNormalModel serves normal generation mode.
	GeminiNormalModel = "gemini-2.5-flash-preview-05-20"

	// GeminiAdvancedModel serves advanced generation mode.
	GeminiAdvancedModel = "gemini-2.5-pro-preview-06-05"
)

// GeminiClient implements Client on the generateContent API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGeminiClient creates a client with the given API key.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultGeminiURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		model:      GeminiNormalModel,
		maxRetries: DefaultMaxRetries,
		logger:     zap.NewNop(),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *GeminiClient) WithBaseURL(url string) *GeminiClient {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *GeminiClient) WithTimeout(timeout time.Duration) *GeminiClient {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of attempts.
func (c *GeminiClient) WithMaxRetries(maxRetries int) *GeminiClient {
	c.maxRetries = maxRetries
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *GeminiClient) WithHTTPClient(hc *http.Client) *GeminiClient {
	c.httpClient = hc
	return c
}

// WithLogger sets the logger.
func (c *GeminiClient) WithLogger(logger *zap.Logger) *GeminiClient {
	if logger != nil {
		c.logger = logger.Named("gemini")
	}
	return c
}

// SetModel sets the default model.
func (c *GeminiClient) SetModel(model string) {
	c.model = model
}

// GetModel returns the default model.
func (c *GeminiClient) GetModel() string {
	return c.model
}

// IsConfigured returns true if the client has an API key configured.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
func (c *GeminiClient) APIKeyMasked() string {
	return maskKey(c.apiKey)
}

// Provider implements Client.
func (c *GeminiClient) Provider() string {
	return ProviderGemini
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, r Request) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	model := r.Model
	if model == "" {
		model = c.model
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: r.Prompt}}}},
	}
	if r.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: r.System}}}
	}
	if r.JSON || r.Temperature != 0 {
		payload.GenerationConfig = &geminiGenerationConfig{Temperature: r.Temperature}
		if r.JSON {
			payload.GenerationConfig.ResponseMimeType = "application/json"
		}
	}

	return withRetry(ctx, c.maxRetries, func() (string, error) {
		return c.send(ctx, model, payload)
	})
}

func (c *GeminiClient) send(ctx context.Context, model string, payload geminiRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the key; report the error without it.
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		c.logger.Debug("request failed", zap.String("model", model), zap.Error(err))
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("key", fingerprint(c.apiKey)),
	)

	raw, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %s", ErrAuthFailed, geminiErrorMessage(raw))
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, model)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s", ErrRateLimited, geminiErrorMessage(raw))
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: %w", ErrUnavailable, &APIError{
			Provider: ProviderGemini,
			Message:  geminiErrorMessage(raw),
			Status:   resp.StatusCode,
		})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &APIError{
			Provider: ProviderGemini,
			Message:  geminiErrorMessage(raw),
			Status:   resp.StatusCode,
		}
	}

	var response geminiResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func geminiErrorMessage(raw []byte) string {
	var e geminiErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
