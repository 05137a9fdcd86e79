// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
)

// Theme defines the palette for the diagram viewer. Colors are hex
// truecolor values; lipgloss degrades them to the terminal's profile.
// Hex is required because the rasterizer blends between colors during
// status transitions and fades.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Canvas background and the color elements fade toward.
	CanvasBackground lipgloss.Color

	// Node fill per derived status.
	StatusHealthy lipgloss.Color
	StatusWarning lipgloss.Color
	StatusError   lipgloss.Color
	StatusUnknown lipgloss.Color

	// Selection ring and highlighted connections.
	Primary lipgloss.Color

	// Connection lines: normal, highlighted, and dimmed while another
	// node is selected.
	ConnectionNormal      lipgloss.Color
	ConnectionHighlighted lipgloss.Color
	ConnectionDimmed      lipgloss.Color

	// Node labels drawn below shapes.
	LabelForeground lipgloss.Color

	// Title region and status bar.
	HeaderForeground lipgloss.Color
	HeaderBackground lipgloss.Color
	StatusBarText    lipgloss.Color
	HelpText         lipgloss.Color

	// Accent for nodes whose status changed recently.
	ChangeAccent lipgloss.Color

	// Hover tooltips.
	TooltipForeground lipgloss.Color
	TooltipBackground lipgloss.Color
	TooltipBorder     lipgloss.Color
}

// StatusColor returns the fill color for a node status. Unrecognized
// values get the unknown color.
func (theme Theme) StatusColor(status nodestatus.Status) lipgloss.Color {
	switch status {
	case nodestatus.Healthy:
		return theme.StatusHealthy
	case nodestatus.Warning:
		return theme.StatusWarning
	case nodestatus.Error:
		return theme.StatusError
	default:
		return theme.StatusUnknown
	}
}

// DefaultTheme is the built-in dark scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("#C9D1D9"),
	FaintText:  lipgloss.Color("#8B949E"),

	CanvasBackground: lipgloss.Color("#0D1117"),

	StatusHealthy: lipgloss.Color("#3FB950"),
	StatusWarning: lipgloss.Color("#D29922"),
	StatusError:   lipgloss.Color("#F85149"),
	StatusUnknown: lipgloss.Color("#6E7681"),

	Primary: lipgloss.Color("#58A6FF"),

	ConnectionNormal:      lipgloss.Color("#484F58"),
	ConnectionHighlighted: lipgloss.Color("#58A6FF"),
	ConnectionDimmed:      lipgloss.Color("#21262D"),

	LabelForeground: lipgloss.Color("#C9D1D9"),

	HeaderForeground: lipgloss.Color("#F0F6FC"),
	HeaderBackground: lipgloss.Color("#161B22"),
	StatusBarText:    lipgloss.Color("#8B949E"),
	HelpText:         lipgloss.Color("#6E7681"),

	ChangeAccent: lipgloss.Color("#F0F6FC"),

	TooltipForeground: lipgloss.Color("#C9D1D9"),
	TooltipBackground: lipgloss.Color("#161B22"),
	TooltipBorder:     lipgloss.Color("#30363D"),
}
