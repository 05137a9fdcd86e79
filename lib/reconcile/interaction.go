// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"unicode"
	"unicode/utf8"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/scene"
)

// TooltipFooter is the hint line shown under every tooltip.
const TooltipFooter = "Click to select and highlight connections"

// Tooltip is the content and anchor of the hover tooltip. X and Y are
// the pointer position in whatever units the caller hovered with.
type Tooltip struct {
	ID     string
	Header string
	Type   string
	Status nodestatus.Status
	Footer string

	// Details are extra lines about the resolved resources (issues,
	// pod summaries). Empty for types without live data.
	Details []string

	X, Y int
}

// Interaction is the selection and hover state machine. At most one
// node is selected. Hover never changes the selection.
type Interaction struct {
	scene *scene.Scene

	selected string

	hovered            string
	pointerX, pointerY int
}

// NewInteraction returns an Interaction that styles s.
func NewInteraction(s *scene.Scene) *Interaction {
	return &Interaction{scene: s}
}

// Selected returns the selected node id, or "".
func (interaction *Interaction) Selected() string {
	return interaction.selected
}

// Click handles a click on node id. Clicking the selected node
// deselects it; clicking any other node selects it exclusively and
// highlights its connections. Clicks on ids without an element are
// ignored. Reports whether the selection changed.
func (interaction *Interaction) Click(id string) bool {
	if _, ok := interaction.scene.Node(id); !ok {
		return false
	}
	if interaction.selected == id {
		interaction.deselect()
		return true
	}
	interaction.scene.ClearHighlight()
	interaction.selected = id
	interaction.scene.Highlight(id)
	return true
}

// ClickBackground deselects. Reports whether anything was selected.
func (interaction *Interaction) ClickBackground() bool {
	if interaction.selected == "" {
		return false
	}
	interaction.deselect()
	return true
}

func (interaction *Interaction) deselect() {
	interaction.selected = ""
	interaction.scene.ClearHighlight()
}

// Hover records the pointer over node id at (x, y). Hovering an id
// without an element hides the tooltip.
func (interaction *Interaction) Hover(id string, x, y int) {
	if _, ok := interaction.scene.Node(id); !ok {
		interaction.Unhover()
		return
	}
	interaction.hovered = id
	interaction.pointerX = x
	interaction.pointerY = y
}

// Unhover hides the tooltip.
func (interaction *Interaction) Unhover() {
	interaction.hovered = ""
}

// Hovered returns the hovered node id.
func (interaction *Interaction) Hovered() (string, bool) {
	return interaction.hovered, interaction.hovered != ""
}

// Tooltip returns the tooltip for the hovered node with its live
// status. Returns false when nothing is hovered or the hovered element
// no longer exists.
func (interaction *Interaction) Tooltip() (Tooltip, bool) {
	if interaction.hovered == "" {
		return Tooltip{}, false
	}
	element, ok := interaction.scene.Node(interaction.hovered)
	if !ok {
		return Tooltip{}, false
	}
	return Tooltip{
		ID:     element.ID,
		Header: capitalize(string(element.Type)) + ": " + element.FullLabel,
		Type:   string(element.Type),
		Status: element.Status(),
		Footer: TooltipFooter,
		X:      interaction.pointerX,
		Y:      interaction.pointerY,
	}, true
}

// restore re-applies the selection to a freshly drawn scene, or clears
// it when the selected id did not survive. A hover made on the new
// scene is kept while its element exists.
func (interaction *Interaction) restore() {
	if _, ok := interaction.scene.Node(interaction.hovered); !ok {
		interaction.hovered = ""
	}
	if interaction.selected == "" {
		return
	}
	if _, ok := interaction.scene.Node(interaction.selected); !ok {
		interaction.deselect()
		return
	}
	interaction.scene.Highlight(interaction.selected)
}

func capitalize(text string) string {
	first, size := utf8.DecodeRuneInString(text)
	if first == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(first)) + text[size:]
}
