// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of the generation pipeline for one CLI invocation.

package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/cloud"
	"github.com/nhancris/KPresent/internal/config"
	"github.com/nhancris/KPresent/internal/deck"
	"github.com/nhancris/KPresent/internal/generate"
	"github.com/nhancris/KPresent/internal/logging"
	"github.com/nhancris/KPresent/internal/model"
	"github.com/nhancris/KPresent/internal/storage"
	"github.com/nhancris/KPresent/internal/svg"
	"github.com/nhancris/KPresent/internal/telemetry"
	"github.com/nhancris/KPresent/internal/theme"
)

// AppOptions are the invocation-wide switches.
type AppOptions struct {
	Streams Streams
	Offline bool
	Quiet   bool
	Verbose bool
}

// App holds the components a command needs. The store is opened on first
// use so commands that never touch storage do not create directories.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Level   zap.AtomicLevel
	Streams Streams

	Metrics *telemetry.Collector
	Usage   *telemetry.UsageTracker // nil when the usage directory is unusable
	Themes  *theme.Registry
	Orch    *generate.Orchestrator
	Asm     *deck.Assembler

	opts AppOptions

	storeOnce sync.Once
	store     storage.Store
	storeErr  error
	closeFn   func() error

	reloadMu sync.Mutex
	themeDir string // custom theme directory currently loaded
}

// loadConfig loads --config or the default file. A broken default file is
// reported and the defaults are used.
func loadConfig(args Args, warn io.Writer) (*config.Config, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(config.ExpandPath(args.ConfigPath))
		if err != nil {
			return nil, errConfig{err}
		}
		config.SetGlobal(cfg)
		return cfg, nil
	}

	cfg, err := config.Load()
	if cfg == nil {
		return nil, errConfig{err}
	}
	if err != nil && !args.Quiet {
		// Logging is not configured yet.
		fmt.Fprintf(warn, "Warning: %v (using defaults)\n", err)
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// NewApp builds the pipeline described by cfg.
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	level := cfg.Log.Level
	switch {
	case opts.Verbose:
		level = "debug"
	case opts.Quiet:
		level = "error"
	}
	logger, atom, err := logging.NewWithWriter(level, cfg.Log.Format, opts.Streams.Err)
	if err != nil {
		return nil, errConfig{err}
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Level:   atom,
		Streams: opts.Streams,
		Metrics: telemetry.NewCollector("kpresent"),
		Themes:  theme.NewRegistry(),
		opts:    opts,
	}

	observers := []telemetry.Observer{app.Metrics}
	if dir, derr := config.ConfigDir(); derr == nil {
		if ut, uerr := telemetry.NewUsageTracker(filepath.Join(dir, "usage")); uerr == nil {
			app.Usage = ut
			observers = append(observers, ut)
		} else {
			logger.Debug("usage tracking disabled", zap.Error(uerr))
		}
	}
	observer := telemetry.Multi(observers...)

	if cfg.Theme.CustomDir != "" {
		n, lerr := app.Themes.LoadDir(config.ExpandPath(cfg.Theme.CustomDir))
		if lerr != nil {
			logger.Warn("custom themes not loaded", zap.String("dir", cfg.Theme.CustomDir), zap.Error(lerr))
		} else {
			logger.Debug("custom themes loaded", zap.Int("count", n))
		}
	}

	client, err := newRemoteClient(cfg, opts.Offline, logger)
	if err != nil {
		return nil, errConfig{err}
	}

	renderer := svg.NewRenderer(svg.WithMeasurer(svg.MeasurerByName(cfg.Generation.Measurer)))
	app.Orch = generate.New(client,
		generate.WithRenderer(renderer),
		generate.WithModels(cfg.Remote.NormalModel, cfg.Remote.AdvancedModel),
		generate.WithObserver(observer),
		generate.WithLogger(logger),
	)

	asmOpts := []deck.Option{
		deck.WithConcurrency(cfg.Generation.Concurrency),
		deck.WithPacing(cfg.Generation.Pacing),
		deck.WithDefaultTheme(cfg.Theme.Default),
		deck.WithObserver(observer),
		deck.WithLogger(logger),
	}
	if cfg.Generation.Seed != 0 {
		asmOpts = append(asmOpts, deck.WithSeed(cfg.Generation.Seed))
	}
	app.Asm = deck.NewAssembler(app.Orch, app.Themes, asmOpts...)
	return app, nil
}

// newRemoteClient returns nil when generation must stay local.
func newRemoteClient(cfg *config.Config, offline bool, logger *zap.Logger) (generate.Client, error) {
	if offline {
		return nil, nil
	}
	raw, err := cloud.New(cloud.Options{
		Provider:   cfg.Remote.Provider,
		APIKey:     cfg.Remote.APIKey,
		BaseURL:    cfg.Remote.BaseURL,
		Model:      cfg.Remote.NormalModel,
		Timeout:    cfg.Remote.Timeout(),
		MaxRetries: cfg.Remote.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	failures := cfg.Remote.BreakerFailures
	if failures < 0 {
		failures = 0
	}
	return cloud.NewGuard(raw, cloud.GuardOptions{
		RatePerMinute:   cfg.Remote.RatePerMinute,
		BreakerFailures: uint32(failures),
		Logger:          logger,
	}), nil
}

// Store opens the configured presentation store.
func (a *App) Store() (storage.Store, error) {
	a.storeOnce.Do(func() {
		sc := a.Config.Storage
		switch sc.Backend {
		case "sqlite":
			s, err := storage.OpenSQLite(config.ExpandPath(sc.SQLitePath))
			if err != nil {
				a.storeErr = fmt.Errorf("open sqlite store: %w", err)
				return
			}
			if sc.MaxPresentations > 0 {
				s.MaxPresentations = sc.MaxPresentations
			}
			a.store, a.closeFn = s, s.Close
		default:
			s, err := storage.NewFileStore(config.ExpandPath(sc.Dir))
			if err != nil {
				a.storeErr = fmt.Errorf("open file store: %w", err)
				return
			}
			if sc.MaxPresentations > 0 {
				s.MaxPresentations = sc.MaxPresentations
			}
			a.store = s
		}
		a.Logger.Debug("store opened", zap.String("backend", sc.Backend))
	})
	return a.store, a.storeErr
}

// DefaultMode is the configured generation mode.
func (a *App) DefaultMode() model.GenerationMode {
	mode, err := model.ParseMode(a.Config.Generation.DefaultMode)
	if err != nil {
		return model.ModeNormal
	}
	return mode
}

// Close persists usage and releases the store.
func (a *App) Close() error {
	var errs []error
	if a.Usage != nil {
		if err := a.Usage.SaveCurrentSession(); err != nil {
			errs = append(errs, fmt.Errorf("save usage: %w", err))
		}
	}
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
