// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Blend interpolates from one hex color to another in CIE L*a*b*
// space, which keeps midpoints from going muddy the way RGB lerps do.
// progress is clamped to [0, 1]. A color that is not six-digit hex is
// returned unblended: from below progress 1, to at 1.
func Blend(from, to lipgloss.Color, progress float64) lipgloss.Color {
	progress = max(0, min(1, progress))
	start, err := colorful.Hex(string(from))
	if err != nil {
		return pick(from, to, progress)
	}
	end, err := colorful.Hex(string(to))
	if err != nil {
		return pick(from, to, progress)
	}
	return lipgloss.Color(start.BlendLab(end, progress).Clamped().Hex())
}

func pick(from, to lipgloss.Color, progress float64) lipgloss.Color {
	if progress >= 1 {
		return to
	}
	return from
}

// Fade mixes color toward background by 1-opacity. Opacity 1 returns
// color unchanged; opacity 0 returns background.
func Fade(color, background lipgloss.Color, opacity float64) lipgloss.Color {
	return Blend(background, color, opacity)
}

// Darken scales a hex color's lightness by factor in L*a*b*, for the
// outlines drawn around filled shapes.
func Darken(color lipgloss.Color, factor float64) lipgloss.Color {
	parsed, err := colorful.Hex(string(color))
	if err != nil {
		return color
	}
	l, a, b := parsed.Lab()
	return lipgloss.Color(colorful.Lab(l*factor, a, b).Clamped().Hex())
}
