// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - The serve command: HTTP API with live config reload.

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nhancris/KPresent/internal/config"
	"github.com/nhancris/KPresent/internal/logging"
	"github.com/nhancris/KPresent/internal/server"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 15 * time.Second

// HandleServe runs the HTTP API until interrupted.
//
// While running, edits to the config file adjust the log level and reload
// custom themes, and files added to the theme directory are picked up.
// Listener, auth and storage settings need a restart.
func (a *App) HandleServe(ctx context.Context, args Args) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := a.Config.Server
	srv := server.New(a.Asm, store, server.Options{
		Addr:          args.Cmd.FlagOrDefault("addr", sc.Addr),
		AuthToken:     args.Cmd.FlagOrDefault("token", sc.AuthToken),
		CORSOrigins:   sc.CORSOrigins,
		RateLimit:     sc.RateLimit,
		DefaultSlides: a.Config.Generation.DefaultSlides,
		DefaultMode:   a.DefaultMode(),
		Metrics:       a.Metrics,
		Logger:        a.Logger,
	})

	var wg sync.WaitGroup
	a.watchConfig(ctx, &wg, args)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if startErr := <-errCh; startErr != nil && err == nil {
		err = startErr
	}
	wg.Wait()
	if a.Usage != nil {
		if uerr := a.Usage.EndSession(); uerr != nil {
			a.Logger.Warn("usage session not saved", zap.Error(uerr))
		}
	}
	return err
}

// watchConfig starts the config file and theme directory watchers.
func (a *App) watchConfig(ctx context.Context, wg *sync.WaitGroup, args Args) {
	logger := a.Logger.Named("reload")
	a.themeDir = a.Config.Theme.CustomDir

	path, err := configPath(args)
	if err == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
				if err != nil {
					logger.Warn("config reload failed", zap.String("path", path), zap.Error(err))
					return
				}
				a.applyReload(cfg, logger)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	dir := config.ExpandPath(a.Config.Theme.CustomDir)
	if a.Config.Theme.CustomDir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Debug("theme directory not watched", zap.String("dir", dir))
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.WatchDir(ctx, dir, func(name string) {
			logger.Info("theme directory changed", zap.String("file", filepath.Base(name)))
			a.reloadThemes(dir, logger)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("theme watcher stopped", zap.Error(err))
		}
	}()
}

// applyReload applies the settings that can change without a restart.
func (a *App) applyReload(cfg *config.Config, logger *zap.Logger) {
	if !a.opts.Verbose && !a.opts.Quiet {
		if lvl, err := logging.ParseLevel(cfg.Log.Level); err == nil && lvl != a.Level.Level() {
			a.Level.SetLevel(lvl)
			logger.Info("log level changed", zap.String("level", lvl.String()))
		}
	}
	a.reloadMu.Lock()
	changed := cfg.Theme.CustomDir != a.themeDir
	a.themeDir = cfg.Theme.CustomDir
	a.reloadMu.Unlock()
	if changed {
		a.reloadThemes(config.ExpandPath(cfg.Theme.CustomDir), logger)
	}
	config.SetGlobal(cfg)
}

func (a *App) reloadThemes(dir string, logger *zap.Logger) {
	a.Themes.ResetCustom()
	if dir == "" {
		return
	}
	n, err := a.Themes.LoadDir(dir)
	if err != nil {
		logger.Warn("custom themes not reloaded", zap.String("dir", dir), zap.Error(err))
		return
	}
	logger.Info("custom themes reloaded", zap.Int("count", n))
}
