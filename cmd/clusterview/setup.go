// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/source"
	"github.com/bureau-foundation/clusterview/lib/vizmetrics"
)

// metricsShutdownTimeout bounds the metrics server drain on exit.
const metricsShutdownTimeout = 2 * time.Second

// timing converts the configured durations to scene timing. Durations
// with no config knob keep their defaults.
func timing(animation config.AnimationConfig) scene.Timing {
	result := scene.DefaultTiming()
	result.Entrance = animation.Entrance
	result.Transition = animation.Transition
	result.StatusTransition = animation.StatusTransition
	result.Fade = animation.Fade
	result.ConnectionDraw = animation.ConnectionDraw
	result.Stagger = animation.Stagger
	return result
}

// feeds is everything a reconcile loop reads from.
type feeds struct {
	source source.Source

	// changes fires when a watched file changes. Nil for http.
	changes <-chan struct{}

	// updates carries pushed updates. Nil without a stream URL.
	updates <-chan source.Update
}

// openFeeds builds the source for cfg and starts the file watch and
// the push stream. Both stop when ctx is done.
func openFeeds(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*feeds, error) {
	result := &feeds{}

	switch cfg.Source.Kind {
	case config.SourceFile:
		files, err := source.NewFile(source.FileConfig{
			StatePath:   cfg.Source.StateFile,
			DiagramPath: cfg.Source.DiagramFile,
		})
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		changes, err := source.Watch(ctx, files.Paths()...)
		if err != nil {
			return nil, cli.Internal("watching %v: %w", files.Paths(), err)
		}
		result.source = files
		result.changes = changes
	default:
		remote, err := source.NewHTTP(source.HTTPConfig{
			BaseURL:     cfg.Source.BaseURL,
			StatePath:   cfg.Source.StatePath,
			DiagramPath: cfg.Source.DiagramPath,
			PreferCBOR:  cfg.Source.CBOR,
			Timeout:     cfg.Source.Timeout,
		})
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		result.source = remote
	}

	if cfg.Source.StreamURL != "" {
		stream := source.NewStream(source.StreamConfig{
			URL:    cfg.Source.StreamURL,
			Logger: logger.With("component", "stream"),
		})
		result.updates = stream.Run(ctx)
	}
	return result, nil
}

// newMetrics returns a registry with the Go and process collectors
// plus the viewer metrics.
func newMetrics() (*prometheus.Registry, *vizmetrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, vizmetrics.New(registry)
}

func metricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// serveMetrics serves /metrics on address until ctx is done. The
// listener is bound before returning so a bad address fails startup.
func serveMetrics(ctx context.Context, address string, registry *prometheus.Registry, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return cli.Transient("metrics listener %s: %w", address, err)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler(registry))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownContext, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownContext)
	}()
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "address", listener.Addr().String())
	return nil
}
