// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for kpresent commands.
//
// Handlers always return errors; Run displays them once and maps them to an
// exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/config"
	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/export"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
	"github.com/nhancris/KPresent/internal/theme"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the remote provider rejected the credentials
	ExitAuthError = 4
	// ExitNetworkError indicates the remote provider could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitCancelled indicates the operation was interrupted
	ExitCancelled = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// errConfig marks configuration failures for the exit code.
type errConfig struct{ err error }

func (e errConfig) Error() string { return e.err.Error() }
func (e errConfig) Unwrap() error { return e.err }

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse("", err).Print(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", GetStyleForTTY(ErrorStyle).Render("[ERROR]"), err.Error())
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var cfgErr errConfig
	var cfgValidation config.ValidateErrors
	switch {
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &validationErr),
		errors.Is(err, deck.ErrInvalidSlideCount), errors.Is(err, deck.ErrSlideIndex),
		errors.Is(err, model.ErrUnknownLayout), errors.Is(err, model.ErrUnknownTransition),
		errors.Is(err, model.ErrUnknownMode), errors.Is(err, theme.ErrUnknownTheme),
		errors.Is(err, theme.ErrInvalidColor), errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, export.ErrUnsupported), errors.Is(err, storage.ErrInvalidID):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &cfgValidation):
		return ExitConfigError
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, deck.ErrSlideNotFound):
		return ExitNotFoundError
	case errors.Is(err, cloud.ErrAuthFailed):
		return ExitAuthError
	case errors.Is(err, cloud.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return ExitNetworkError
	}
	return ExitGeneralError
}
