// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Slide sources.
const (
	SourceOffline  = "offline"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Observer receives generation events.
type Observer interface {
	// ObserveSlide records one slide produced by source for a layout.
	ObserveSlide(source, layout string, d time.Duration)

	// ObserveDeck records one assembly attempt.
	ObserveDeck(prompt string, slides int, outcome string, d time.Duration)
}

// =============================================================================
// COLLECTOR
// =============================================================================

// Collector holds the Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	// Generation metrics
	SlidesGenerated *prometheus.CounterVec
	SlideDuration   *prometheus.HistogramVec
	Decks           *prometheus.CounterVec
	DeckDuration    prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		SlidesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slides_generated_total",
				Help:      "Slides produced, by source and layout",
			},
			[]string{"source", "layout"},
		),
		SlideDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "slide_duration_seconds",
				Help:      "Time to produce one slide, by source",
				Buckets:   []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"source"},
		),
		Decks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decks_assembled_total",
				Help:      "Presentation assemblies, by outcome",
			},
			[]string{"outcome"},
		),
		DeckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "deck_duration_seconds",
				Help:      "Time to assemble a presentation",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.SlidesGenerated,
		c.SlideDuration,
		c.Decks,
		c.DeckDuration,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveSlide implements Observer. Nil collectors ignore events.
func (c *Collector) ObserveSlide(source, layout string, d time.Duration) {
	if c == nil {
		return
	}
	c.SlidesGenerated.WithLabelValues(source, layout).Inc()
	c.SlideDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveDeck implements Observer.
func (c *Collector) ObserveDeck(_ string, _ int, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.Decks.WithLabelValues(outcome).Inc()
	c.DeckDuration.Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// =============================================================================
// FAN-OUT
// =============================================================================

type multi []Observer

// Multi returns an Observer that forwards to every non-nil observer.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) ObserveSlide(source, layout string, d time.Duration) {
	for _, o := range m {
		o.ObserveSlide(source, layout, d)
	}
}

func (m multi) ObserveDeck(prompt string, slides int, outcome string, d time.Duration) {
	for _, o := range m {
		o.ObserveDeck(prompt, slides, outcome, d)
	}
}
