// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scene holds the retained rendering model of a cluster
// diagram: one element per node keyed by node id, one element per
// drawable connection, and the time windows that animate them.
//
// The scene never reads a clock. Every mutating call takes the current
// time and records animation windows relative to it; renderers sample
// opacity, draw progress, and status blends by passing the frame time.
// This keeps the scene deterministic under test and lets the terminal
// rasterizer and the headless watcher share it.
package scene
