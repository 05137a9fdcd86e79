// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the diagram viewer.
type KeyMap struct {
	// View.
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ResetView key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding

	// Selection.
	NextNode     key.Binding // Cycle the selection forward in drawn order.
	PreviousNode key.Binding
	Deselect     key.Binding

	// Search.
	SearchActivate key.Binding
	SearchConfirm  key.Binding
	SearchCancel   key.Binding

	// Refresh fetches state and diagram now instead of waiting for
	// the timers.
	Refresh key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	ResetView: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "fit"),
	),
	PanUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑", "pan"),
	),
	PanDown: key.NewBinding(
		key.WithKeys("j", "down"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("h", "left"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("l", "right"),
	),
	NextNode: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next node"),
	),
	PreviousNode: key.NewBinding(
		key.WithKeys("shift+tab"),
	),
	Deselect: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "deselect"),
	),
	SearchActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	SearchConfirm: key.NewBinding(
		key.WithKeys("enter"),
	),
	SearchCancel: key.NewBinding(
		key.WithKeys("esc"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings lists the bindings shown in the status bar, in order.
func (keys KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		keys.ZoomIn, keys.ZoomOut, keys.ResetView, keys.PanUp,
		keys.NextNode, keys.SearchActivate, keys.Deselect, keys.Refresh, keys.Quit,
	}
}
