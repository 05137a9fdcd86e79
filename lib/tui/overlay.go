// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay lines placed at (anchorX, anchorY). Truncation is
// ANSI-aware, so escape sequences in the view survive on both sides of
// the overlay. Lines outside the view are dropped.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}

		viewLine := viewLines[row]
		var result strings.Builder
		if anchorX > 0 {
			result.WriteString(ansi.Truncate(viewLine, anchorX, ""))
			if gap := anchorX - ansi.StringWidth(viewLine); gap > 0 {
				result.WriteString(strings.Repeat(" ", gap))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		if suffixStart := anchorX + overlayWidth; suffixStart < ansi.StringWidth(viewLine) {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}
		viewLines[row] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// PlaceNear picks an anchor for a box of the given size next to the
// pointer at (x, y): below and to the right by default, flipped to the
// other side of the pointer when it would run off the screen.
func PlaceNear(x, y, boxWidth, boxHeight, screenWidth, screenHeight int) (int, int) {
	anchorX, anchorY := x+2, y+1
	if anchorX+boxWidth > screenWidth {
		anchorX = x - boxWidth - 1
	}
	if anchorY+boxHeight > screenHeight {
		anchorY = y - boxHeight
	}
	return max(0, anchorX), max(0, anchorY)
}

// TooltipBox renders a header, body lines, and an optional faint
// footer as a bordered box, returned one line per row and every row
// the same width, ready for SpliceOverlay.
func TooltipBox(theme Theme, header string, body []string, footer string) []string {
	background := lipgloss.NewStyle().Background(theme.TooltipBackground)
	headerStyle := background.Foreground(theme.HeaderForeground).Bold(true)
	bodyStyle := background.Foreground(theme.TooltipForeground)
	footerStyle := background.Foreground(theme.FaintText).Italic(true)

	rows := []string{headerStyle.Render(header)}
	for _, line := range body {
		rows = append(rows, bodyStyle.Render(line))
	}
	if footer != "" {
		rows = append(rows, footerStyle.Render(footer))
	}

	innerWidth := 0
	for _, row := range rows {
		innerWidth = max(innerWidth, ansi.StringWidth(row))
	}
	for index, row := range rows {
		rows[index] = PadOverlayLine(row, innerWidth, background)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.TooltipBorder).
		BorderBackground(theme.TooltipBackground).
		Render(strings.Join(rows, "\n"))
	return strings.Split(box, "\n")
}

// PadOverlayLine pads styled content to innerWidth with
// background-colored spaces, plus one space of margin on each side.
func PadOverlayLine(styledContent string, innerWidth int, backgroundStyle lipgloss.Style) string {
	rightPad := max(0, innerWidth-ansi.StringWidth(styledContent))
	return backgroundStyle.Render(" ") +
		styledContent +
		backgroundStyle.Render(strings.Repeat(" ", rightPad+1))
}
