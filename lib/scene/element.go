// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"time"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// NodeElement is the rendered form of one diagram node. Elements are
// created by DrawNodes and mutated in place by status updates; a full
// redraw discards them.
type NodeElement struct {
	ID   string
	Type diagram.NodeType

	// Label is the display label, truncated to LabelLimit runes.
	// FullLabel keeps the untruncated text for tooltips and search.
	Label     string
	FullLabel string

	Icon  string
	Shape Shape

	// X and Y are the node center in canvas units.
	X, Y float64

	// Index is the node's position in the drawn order. It drives the
	// entrance stagger.
	Index int

	// Squares holds the row of a pod group. It is nil for every other
	// type.
	Squares []Square

	// Selected marks the node currently selected by the user.
	Selected bool

	// The status transition blends the fill and the glow ring (the
	// outline) together.
	status     nodestatus.Status
	fromStatus nodestatus.Status
	transition Window

	entrance Window
	label    Window
	badge    *badge
}

// Square is one pod square of a pod group.
type Square struct {
	X, Y     float64
	entrance Window
}

// Opacity returns the square's entrance opacity at now.
func (square Square) Opacity(now time.Time) float64 {
	return square.entrance.Progress(now)
}

// badge fades from opacity from toward 1, or toward 0 when removing.
type badge struct {
	status   nodestatus.Status
	fade     Window
	from     float64
	removing bool
}

func (b *badge) opacity(now time.Time) float64 {
	target := 1.0
	if b.removing {
		target = 0
	}
	return b.from + (target-b.from)*b.fade.Progress(now)
}

// started reports whether the fade has begun moving at now.
func (b *badge) started(now time.Time) bool {
	return now.After(b.fade.Start)
}

// IsPodGroup reports whether the element is drawn as a row of squares.
func (element *NodeElement) IsPodGroup() bool {
	return element.Type == diagram.TypePodGroup
}

// Status returns the status the element is showing or transitioning
// toward.
func (element *NodeElement) Status() nodestatus.Status {
	return element.status
}

// StatusBlend returns the color endpoints of an in-flight status
// transition and eased progress toward to. Outside a transition from
// and to are equal and progress is 1.
func (element *NodeElement) StatusBlend(now time.Time) (from, to nodestatus.Status, progress float64) {
	progress = element.transition.Progress(now)
	if progress >= 1 {
		return element.status, element.status, 1
	}
	return element.fromStatus, element.status, progress
}

// Opacity returns the entrance opacity of the node body at now. Pod
// groups have per-square entrances; their body opacity is the label's.
func (element *NodeElement) Opacity(now time.Time) float64 {
	return element.entrance.Progress(now)
}

// LabelOpacity returns the opacity of the node label at now.
func (element *NodeElement) LabelOpacity(now time.Time) float64 {
	return element.label.Progress(now)
}

// Badge returns the badge color and opacity at now. visible is false
// when the node has no badge or its removal fade has finished.
func (element *NodeElement) Badge(now time.Time) (status nodestatus.Status, opacity float64, visible bool) {
	if element.badge == nil {
		return "", 0, false
	}
	opacity = element.badge.opacity(now)
	if element.badge.removing && opacity <= 0 {
		return "", 0, false
	}
	return element.badge.status, opacity, true
}

// BadgePosition returns the badge center in canvas units.
func (element *NodeElement) BadgePosition() (x, y float64) {
	return element.X + BadgeOffsetX, element.Y + BadgeOffsetY
}

func (element *NodeElement) animating(now time.Time) bool {
	if !element.entrance.Done(now) || !element.label.Done(now) || !element.transition.Done(now) {
		return true
	}
	for _, square := range element.Squares {
		if !square.entrance.Done(now) {
			return true
		}
	}
	return element.badge != nil && !element.badge.fade.Done(now)
}

// ConnectionElement is the rendered form of one connection whose
// endpoints both resolved.
type ConnectionElement struct {
	From, To string
	Label    string

	// Endpoint coordinates in canvas units.
	X1, Y1, X2, Y2 float64

	// Highlighted marks a connection incident to the selected node;
	// Dimmed marks every other connection while a node is selected.
	Highlighted bool
	Dimmed      bool

	draw  Window
	label Window
}

// Key returns the "from-to" identity of the connection.
func (connection *ConnectionElement) Key() string {
	return connection.From + "-" + connection.To
}

// DrawProgress returns how much of the line, from its source end, has
// been drawn at now.
func (connection *ConnectionElement) DrawProgress(now time.Time) float64 {
	return connection.draw.Progress(now)
}

// Dashed reports whether the line is in its static dashed style. While
// drawing in, the line is solid up to DrawProgress.
func (connection *ConnectionElement) Dashed(now time.Time) bool {
	return connection.draw.Done(now)
}

// LabelOpacity returns the label opacity at now.
func (connection *ConnectionElement) LabelOpacity(now time.Time) float64 {
	return connection.label.Progress(now)
}

// Midpoint returns where the label is anchored.
func (connection *ConnectionElement) Midpoint() (x, y float64) {
	return (connection.X1 + connection.X2) / 2, (connection.Y1 + connection.Y2) / 2
}

func (connection *ConnectionElement) animating(now time.Time) bool {
	return !connection.draw.Done(now) || !connection.label.Done(now)
}
