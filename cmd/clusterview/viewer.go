// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/diagramui"
	"github.com/bureau-foundation/clusterview/lib/vizmetrics"
)

// runViewer runs the full-screen viewer until the user quits or ctx
// is cancelled.
//
// Background logging goes through a TUILogHandler that shows warnings
// in the status bar instead of writing to stderr, which would corrupt
// the alt-screen display. --log-output additionally captures every
// record to a JSON file.
func runViewer(ctx context.Context, cfg *config.Config, opts *options) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	tuiHandler := diagramui.NewTUILogHandler(level)

	var logger *slog.Logger
	if opts.logOutput != "" {
		fileHandler, closeFile, err := cli.OpenFileLogHandler(opts.logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", opts.logOutput, err)
		}
		defer closeFile()
		logger = slog.New(cli.FanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *vizmetrics.Metrics
	if cfg.Metrics.Listen != "" {
		registry, viewerMetrics := newMetrics()
		if err := serveMetrics(ctx, cfg.Metrics.Listen, registry, logger); err != nil {
			return err
		}
		metrics = viewerMetrics
	}

	inputs, err := openFeeds(ctx, cfg, logger)
	if err != nil {
		return err
	}

	model := diagramui.NewModel(diagramui.Config{
		Source:  inputs.source,
		Updates: inputs.updates,
		Changes: inputs.changes,
		Timing:  timing(cfg.Animation),
		Canvas:  cfg.Canvas,
		Refresh: cfg.Refresh,
		Timeout: cfg.Source.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
