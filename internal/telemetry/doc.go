// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry provides generation metrics and usage history for
// kpresent.
//
// Two sinks record the same events. Collector exposes Prometheus metrics for
// the HTTP server's /metrics endpoint. UsageTracker keeps per-session counts
// of how slides were produced and persists them locally so `kpresent stats`
// can show trends.
//
// # Key Types
//
//   - Collector: Prometheus counters and histograms on a private registry
//   - UsageTracker: Session usage with on-disk history
//   - SessionUsage: Slide counts by source plus the slowest slides
//   - UsageTrends: Daily aggregation over a window
//   - Observer: Interface both sinks satisfy; Multi fans out to several
//
// # Usage
//
//	collector := telemetry.NewCollector("kpresent")
//	tracker, _ := telemetry.NewUsageTracker("")
//	obs := telemetry.Multi(collector, tracker)
//	obs.ObserveSlide("remote", "title_slide", 1200*time.Millisecond)
//
// # Privacy
//
// Usage history is local-only. Prompts are truncated before being stored.
package telemetry
