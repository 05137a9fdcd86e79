// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/tui"
)

// SearchModel is the "/" prompt that jumps the selection to the node
// best matching the typed query. While active it takes every key.
type SearchModel struct {
	input  textinput.Model
	active bool
	slab   *util.Slab
}

// NewSearchModel returns an inactive search prompt.
func NewSearchModel() SearchModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "node label or id"
	input.CharLimit = 64
	return SearchModel{input: input, slab: util.MakeSlab(100*1024, 2048)}
}

// Active reports whether the prompt has focus.
func (search *SearchModel) Active() bool { return search.active }

// Query returns the typed text.
func (search *SearchModel) Query() string { return search.input.Value() }

// Activate focuses an empty prompt.
func (search *SearchModel) Activate() tea.Cmd {
	search.active = true
	search.input.SetValue("")
	return search.input.Focus()
}

// Deactivate blurs and clears the prompt.
func (search *SearchModel) Deactivate() {
	search.active = false
	search.input.Blur()
	search.input.SetValue("")
}

// Update forwards a message to the text input.
func (search *SearchModel) Update(message tea.Msg) tea.Cmd {
	var command tea.Cmd
	search.input, command = search.input.Update(message)
	return command
}

// Match returns the best match for the current query among nodes.
func (search *SearchModel) Match(nodes []*scene.NodeElement) (*scene.NodeElement, bool) {
	return bestMatch(nodes, search.input.Value(), search.slab)
}

// View renders the prompt line with a preview of the current best
// match. Returns "" when inactive.
func (search *SearchModel) View(theme tui.Theme, nodes []*scene.NodeElement, width int) string {
	if !search.active {
		return ""
	}
	line := search.input.View()
	if match, ok := search.Match(nodes); ok {
		line += lipgloss.NewStyle().Foreground(theme.FaintText).Render("  → " + match.FullLabel)
	}
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(theme.HeaderBackground).
		Render(line)
}
