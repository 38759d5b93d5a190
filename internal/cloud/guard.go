// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardOptions configures a Guard.
type GuardOptions struct {
	// RatePerMinute caps outgoing requests. Zero disables limiting.
	RatePerMinute int

	// Burst is the limiter burst. Defaults to 1.
	Burst int

	// BreakerFailures is the number of consecutive failures that opens the
	// breaker. Zero disables the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open. Defaults to 30s.
	BreakerTimeout time.Duration

	Logger *zap.Logger
}

// Guard wraps a Client with a rate limiter and a circuit breaker. It
// satisfies Client.
type Guard struct {
	next    Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuard wraps next.
func NewGuard(next Client, opts GuardOptions) *Guard {
	g := &Guard{next: next, logger: opts.Logger}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	g.logger = g.logger.Named("guard")

	if opts.RatePerMinute > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), burst)
	}

	if opts.BreakerFailures > 0 {
		timeout := opts.BreakerTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		threshold := opts.BreakerFailures
		g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        next.Provider(),
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				g.logger.Warn("circuit breaker state changed",
					zap.String("provider", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
			IsSuccessful: func(err error) bool {
				// Caller cancellation says nothing about provider health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}
	return g
}

// Provider implements Client.
func (g *Guard) Provider() string {
	return g.next.Provider()
}

// State reports the breaker state, or "disabled".
func (g *Guard) State() string {
	if g.breaker == nil {
		return "disabled"
	}
	return g.breaker.State().String()
}

// Complete implements Client.
func (g *Guard) Complete(ctx context.Context, req Request) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	if g.breaker == nil {
		return g.next.Complete(ctx, req)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %s", ErrCircuitOpen, g.next.Provider())
		}
		return "", err
	}
	return out.(string), nil
}
