// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile keeps a [scene.Scene] consistent with the latest
// cluster state and diagram while preserving user interaction.
//
// Each input is classified against the diagram last committed to the
// scene. A change in the node id set or the connection endpoint set
// starts a full redraw pipeline (fade out, clear and draw, fade in,
// restore selection); anything else patches node statuses in place.
// Inputs that arrive while a pipeline runs are deferred and
// re-evaluated, latest first, when it settles.
//
// Time is passed in by the caller. The terminal UI drives
// [Reconciler.Advance] from its animation tick and the headless
// watcher from a clock ticker.
package reconcile
