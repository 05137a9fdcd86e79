// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diagramui is the terminal frontend of the cluster diagram
// viewer, built on bubbletea.
//
// The Model owns a reconcile.Reconciler and feeds it from a
// source.Source: state and diagram fetches run as commands on their
// refresh timers, optional push updates and file change notifications
// trigger immediate application, and a 50ms animation tick advances
// the redraw pipeline only while something on screen is moving.
//
// Rendering maps the scene's canvas coordinates through a Viewport
// onto terminal cells. The Raster records which node owns each cell,
// so mouse hover and clicks resolve with the same geometry that drew
// the frame.
package diagramui
