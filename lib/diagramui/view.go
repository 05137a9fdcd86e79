// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/tui"
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}
	now := model.clock.Now()

	canvas := Rasterize(model.reconciler.Scene(), model.viewport, model.theme, model.flash, now).String()
	if tooltip, ok := model.reconciler.Tooltip(); ok {
		body := []string{"Status: " + string(tooltip.Status)}
		body = append(body, tooltip.Details...)
		lines := tui.TooltipBox(model.theme, tooltip.Header, body, tooltip.Footer)
		width := 0
		for _, line := range lines {
			width = max(width, lipgloss.Width(line))
		}
		column, row := canvasCell(tooltip.X, tooltip.Y)
		x, y := tui.PlaceNear(column, row, width, len(lines), model.viewport.Columns, model.viewport.Rows)
		canvas = tui.SpliceOverlay(canvas, lines, x, y)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.renderHeader(now),
		canvas,
		model.renderStatusBar(now),
	)
}

// renderHeader draws the title line: diagram title on the left, game
// progress and the connection indicator on the right.
func (model Model) renderHeader(now time.Time) string {
	store := model.reconciler.Store()
	title := "No diagram"
	if snapshot := store.Diagram(); snapshot != nil && snapshot.Title != "" {
		title = snapshot.Title
	}
	game := store.Game()
	progress := fmt.Sprintf("%s · %s · %d XP", game.WorldLabel(), game.LevelLabel(), game.TotalXP)

	right := progress + "  " + model.connectionIndicator(now)
	headerStyle := lipgloss.NewStyle().
		Foreground(model.theme.HeaderForeground).
		Background(model.theme.HeaderBackground)

	gap := model.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if gap < 1 {
		title = ansi.Truncate(title, max(model.width-lipgloss.Width(right)-3, 0), "…")
		gap = 1
	}
	line := " " + lipgloss.NewStyle().Bold(true).Render(title) + strings.Repeat(" ", gap) + right + " "
	return headerStyle.Width(model.width).MaxWidth(model.width).Render(line)
}

func (model Model) connectionIndicator(now time.Time) string {
	if model.lastUpdate.IsZero() {
		return lipgloss.NewStyle().Foreground(model.theme.StatusUnknown).Render("○ connecting")
	}
	age := now.Sub(model.lastUpdate).Truncate(time.Second)
	if model.stale {
		return lipgloss.NewStyle().Foreground(model.theme.StatusWarning).
			Render(fmt.Sprintf("● stale %s", age))
	}
	return lipgloss.NewStyle().Foreground(model.theme.StatusHealthy).
		Render("● live " + model.lastUpdate.Format("15:04:05"))
}

// renderStatusBar draws the bottom line: the search prompt while
// searching, otherwise a recent log line, otherwise the cluster
// summary and key help.
func (model Model) renderStatusBar(now time.Time) string {
	if model.search.Active() {
		return model.search.View(model.theme, model.reconciler.Scene().Nodes(), model.width)
	}
	barStyle := lipgloss.NewStyle().
		Foreground(model.theme.StatusBarText).
		Width(model.width).
		MaxWidth(model.width)

	if model.logLine != nil {
		return barStyle.Render(" " + model.logLine.Summary)
	}

	var parts []string
	store := model.reconciler.Store()
	if snapshot := store.Diagram(); snapshot != nil {
		nodes, _ := snapshot.UniqueNodes()
		counts := nodestatus.Counts(nodes, store.State())
		for _, status := range nodestatus.All {
			if counts[status] == 0 {
				continue
			}
			parts = append(parts, lipgloss.NewStyle().
				Foreground(model.theme.StatusColor(status)).
				Render(fmt.Sprintf("%d %s", counts[status], status)))
		}
	}
	if state := store.State(); state != nil {
		issues := cluster.DetectIssues(state)
		if len(issues) > 0 {
			parts = append(parts, fmt.Sprintf("%d issues (%d high)", len(issues), cluster.CountHigh(issues)))
		}
		if state.Error != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(model.theme.StatusError).Render("cluster: "+state.Error))
		}
	}
	if id, status, ok := model.flash.Latest(now); ok {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(model.theme.ChangeAccent).
			Render(fmt.Sprintf("%s → %s", id, status)))
	}

	help := model.renderHelp()
	summary := " " + strings.Join(parts, "  ")
	gap := model.width - lipgloss.Width(summary) - lipgloss.Width(help) - 1
	if gap < 1 {
		return barStyle.Render(summary)
	}
	return barStyle.Render(summary + strings.Repeat(" ", gap) + help)
}

func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	var items []string
	for _, binding := range model.keys.helpBindings() {
		help := binding.Help()
		if help.Key == "" {
			continue
		}
		items = append(items, help.Key+" "+help.Desc)
	}
	return style.Render(strings.Join(items, " · "))
}
