// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/clock"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/reconcile"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
	"github.com/bureau-foundation/clusterview/lib/source"
	"github.com/bureau-foundation/clusterview/lib/vizmetrics"
)

// watchFrame is the pipeline advance interval while animating.
const watchFrame = 50 * time.Millisecond

func runWatch(ctx context.Context, cfg *config.Config, opts *options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level).With("command", "watch")
	if opts.logOutput != "" {
		fileHandler, closeFile, err := cli.OpenFileLogHandler(opts.logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", opts.logOutput, err)
		}
		defer closeFile()
		logger = slog.New(cli.FanoutHandler{logger.Handler(), fileHandler})
	}

	var metrics *vizmetrics.Metrics
	if cfg.Metrics.Listen != "" {
		registry, watchMetrics := newMetrics()
		if err := serveMetrics(ctx, cfg.Metrics.Listen, registry, logger); err != nil {
			return err
		}
		metrics = watchMetrics
	}

	inputs, err := openFeeds(ctx, cfg, logger)
	if err != nil {
		return err
	}

	loop := &watchLoop{
		source:     inputs.source,
		updates:    inputs.updates,
		changes:    inputs.changes,
		reconciler: reconcile.New(reconcile.Config{Timing: timing(cfg.Animation), Logger: logger}),
		clock:      clock.Real(),
		logger:     logger,
		metrics:    metrics,
		refresh:    cfg.Refresh,
		timeout:    cfg.Source.Timeout,
	}
	return loop.run(ctx)
}

// watchLoop drives a reconciler without a display: fetches on the
// refresh intervals, applies pushed updates, and advances the redraw
// pipeline on a frame timer while it is busy. Fetches run in their own
// goroutines; only the loop goroutine touches the reconciler.
type watchLoop struct {
	source  source.Source
	updates <-chan source.Update
	changes <-chan struct{}

	reconciler *reconcile.Reconciler
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *vizmetrics.Metrics

	refresh config.RefreshConfig
	timeout time.Duration

	// results, when non-nil, receives every reconcile result.
	results chan<- reconcile.Result

	fetched  chan fetchResult
	inFlight map[string]bool
	again    map[string]bool
}

// fetchResult is a completed fetch posted back to the loop.
type fetchResult struct {
	endpoint string
	envelope *cluster.Envelope
	snapshot *diagram.Snapshot
	err      error
}

func (loop *watchLoop) run(ctx context.Context) error {
	loop.fetched = make(chan fetchResult, 2)
	loop.inFlight = make(map[string]bool)
	loop.again = make(map[string]bool)

	loop.fetch(ctx, source.EndpointState)
	loop.fetch(ctx, source.EndpointDiagram)

	stateTicker := loop.clock.NewTicker(loop.refresh.StateInterval)
	defer stateTicker.Stop()
	diagramTicker := loop.clock.NewTicker(loop.refresh.DiagramInterval)
	defer diagramTicker.Stop()

	updates, changes := loop.updates, loop.changes
	var frame <-chan time.Time
	for {
		if frame == nil && loop.reconciler.Busy() {
			frame = loop.clock.After(watchFrame)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-stateTicker.C:
			loop.fetch(ctx, source.EndpointState)
		case <-diagramTicker.C:
			loop.fetch(ctx, source.EndpointDiagram)
		case result := <-loop.fetched:
			loop.handleFetch(ctx, result)
		case <-frame:
			frame = nil
			loop.record(loop.reconciler.Advance(loop.clock.Now()))
		case update, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			loop.apply(update)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			loop.logger.Debug("files changed")
			loop.fetch(ctx, source.EndpointState)
			loop.fetch(ctx, source.EndpointDiagram)
		}
	}
}

// fetch starts a fetch of endpoint unless one is already running, in
// which case another is started when it completes.
func (loop *watchLoop) fetch(ctx context.Context, endpoint string) {
	if loop.inFlight[endpoint] {
		loop.again[endpoint] = true
		return
	}
	loop.inFlight[endpoint] = true
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, loop.timeout)
		defer cancel()
		start := loop.clock.Now()
		result := fetchResult{endpoint: endpoint}
		if endpoint == source.EndpointState {
			result.envelope, result.err = loop.source.FetchState(fetchCtx)
		} else {
			result.snapshot, result.err = loop.source.FetchDiagram(fetchCtx)
		}
		if loop.metrics != nil {
			loop.metrics.ObserveFetch(endpoint, loop.clock.Now().Sub(start), result.err)
		}
		// At most one fetch per endpoint is in flight, so the buffer
		// always has room.
		loop.fetched <- result
	}()
}

func (loop *watchLoop) handleFetch(ctx context.Context, result fetchResult) {
	loop.inFlight[result.endpoint] = false
	if loop.again[result.endpoint] {
		loop.again[result.endpoint] = false
		defer loop.fetch(ctx, result.endpoint)
	}
	if result.err != nil {
		loop.logger.Warn("fetch failed", "endpoint", result.endpoint, "error", result.err)
		return
	}
	now := loop.clock.Now()
	if result.endpoint == source.EndpointState {
		loop.record(loop.reconciler.ApplyEnvelope(result.envelope, now))
		return
	}
	loop.record(loop.reconciler.ApplyDiagram(result.snapshot, now))
}

func (loop *watchLoop) apply(update source.Update) {
	now := loop.clock.Now()
	switch update.Kind {
	case source.UpdateState:
		loop.record(loop.reconciler.ApplyEnvelope(update.State, now))
	case source.UpdateDiagram:
		loop.record(loop.reconciler.ApplyDiagram(update.Diagram, now))
	}
}

func (loop *watchLoop) record(result reconcile.Result) {
	if result.Mode != reconcile.ModeNone {
		loop.logger.Info("reconciled",
			"mode", result.Mode.String(),
			"generation", result.Generation,
			"changes", len(result.Changes),
		)
	}
	if result.Drawn {
		loop.logger.Info("diagram drawn",
			"generation", result.Generation,
			"nodes", loop.reconciler.Scene().Len(),
			"skipped_connections", result.Skipped,
		)
	}
	if len(result.Duplicates) > 0 {
		loop.logger.Warn("duplicate node ids", "ids", result.Duplicates)
	}
	for _, change := range result.Changes {
		loop.logger.Info("status changed", "node", change.ID, "from", string(change.From), "to", string(change.To))
	}
	if result.Settled {
		loop.logger.Debug("redraw settled", "generation", loop.reconciler.Generation())
	}

	if loop.metrics != nil {
		loop.metrics.ObserveResult(result)
		if snapshot := loop.reconciler.Store().Diagram(); snapshot != nil {
			nodes, _ := snapshot.UniqueNodes()
			loop.metrics.SetNodeCounts(nodestatus.Counts(nodes, loop.reconciler.Store().State()))
		}
	}
	if loop.results != nil {
		loop.results <- result
	}
}
