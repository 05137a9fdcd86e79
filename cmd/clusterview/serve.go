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

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/fixture"
)

// runServe serves the configured state file (and optional diagram
// file) as a state server on opts.addr, with /metrics alongside.
func runServe(ctx context.Context, cfg *config.Config, opts *options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level).With("command", "serve")

	if cfg.Source.StateFile == "" {
		return cli.Validation("serve needs a state file").
			WithHint("Pass --state-file, or set source.state_file in the config file.")
	}
	server, err := fixture.New(fixture.Config{
		StatePath:   cfg.Source.StateFile,
		DiagramPath: cfg.Source.DiagramFile,
		Logger:      logger,
	})
	if err != nil {
		return cli.Validation("%w", err)
	}
	if _, err := server.Watch(ctx); err != nil {
		return cli.Internal("watching fixture files: %w", err)
	}

	registry, _ := newMetrics()
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler(registry))
	mux.Handle("/", server.Handler())

	listener, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return cli.Transient("listen %s: %w", opts.addr, err)
	}
	httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownContext, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownContext)
	}()

	logger.Info("serving fixture",
		"address", listener.Addr().String(),
		"state_file", cfg.Source.StateFile,
		"diagram_file", cfg.Source.DiagramFile,
	)
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.Internal("serving: %w", err)
	}
	return nil
}
