// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The headless watcher and the fetch loops take a Clock instead of
// calling time.Now and time.NewTicker. Real is the wall clock. Fake
// stands still until Advance, which makes refresh intervals and redraw
// pipelines deterministic under test:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go watcher.Run(ctx)          // registers its tickers
//	c.WaitForTimers(3)           // state, diagram, animation
//	c.Advance(3 * time.Second)   // one state refresh fires
package clock
