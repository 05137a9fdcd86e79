// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"time"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// Scene is the retained set of rendered elements. Node elements are
// keyed by diagram node id, so status updates address exactly one
// element without searching the drawn output.
//
// Scene is not safe for concurrent use. It is owned by the event loop
// that owns the reconciler.
type Scene struct {
	timing Timing

	nodes       map[string]*NodeElement
	order       []*NodeElement
	connections []*ConnectionElement

	fadeFrom float64
	fadeTo   float64
	fade     Window
}

// New returns an empty scene at full opacity.
func New(timing Timing) *Scene {
	return &Scene{
		timing:   timing,
		nodes:    make(map[string]*NodeElement),
		fadeFrom: 1,
		fadeTo:   1,
	}
}

// Timing returns the durations the scene animates with.
func (scene *Scene) Timing() Timing {
	return scene.timing
}

// Clear removes every element. Whole-scene opacity is unaffected.
func (scene *Scene) Clear() {
	scene.nodes = make(map[string]*NodeElement)
	scene.order = nil
	scene.connections = nil
}

// DrawConnections adds one element per connection whose endpoints both
// appear in nodes, and returns how many were skipped because an
// endpoint was missing. When ids repeat, the first node with an id
// supplies its position.
func (scene *Scene) DrawConnections(connections []diagram.Connection, nodes []diagram.Node, now time.Time) int {
	type point struct{ x, y float64 }
	positions := make(map[string]point, len(nodes))
	for _, node := range nodes {
		if _, exists := positions[node.ID]; !exists {
			positions[node.ID] = point{node.X, node.Y}
		}
	}

	skipped := 0
	for _, connection := range connections {
		from, fromOK := positions[connection.From]
		to, toOK := positions[connection.To]
		if !fromOK || !toOK {
			skipped++
			continue
		}
		scene.connections = append(scene.connections, &ConnectionElement{
			From:  connection.From,
			To:    connection.To,
			Label: connection.Label,
			X1:    from.x,
			Y1:    from.y,
			X2:    to.x,
			Y2:    to.y,
			draw:  NewWindow(now, 0, scene.timing.ConnectionDraw, EaseCubicInOut),
			label: NewWindow(now, scene.timing.LabelDelay, scene.timing.Transition, Linear),
		})
	}
	return skipped
}

// DrawNodes adds one element per node with its entrance staggered by
// position. statusOf supplies each node's initial status. Nodes whose
// id already has an element are ignored.
func (scene *Scene) DrawNodes(nodes []diagram.Node, statusOf func(diagram.Node) nodestatus.Status, now time.Time) {
	timing := scene.timing
	for _, node := range nodes {
		if _, exists := scene.nodes[node.ID]; exists {
			continue
		}
		index := len(scene.order)
		delay := time.Duration(index) * timing.Stagger
		status := statusOf(node)

		element := &NodeElement{
			ID:         node.ID,
			Type:       node.Type,
			Label:      TruncateLabel(node.Label, LabelLimit),
			FullLabel:  node.Label,
			Icon:       Icon(node.Type),
			Shape:      ShapeFor(node.Type),
			X:          node.X,
			Y:          node.Y,
			Index:      index,
			status:     status,
			fromStatus: status,
		}

		if node.Type == diagram.TypePodGroup {
			element.entrance = NewWindow(now, delay, timing.Transition, Linear)
			element.label = element.entrance
			for position, x := range PodSquareCenters(node.X, node.PodCount()) {
				element.Squares = append(element.Squares, Square{
					X: x,
					Y: node.Y,
					entrance: NewWindow(now,
						delay+time.Duration(position)*timing.PodStagger,
						timing.Entrance, EaseCubicOut),
				})
			}
		} else {
			element.entrance = NewWindow(now, delay, timing.Entrance, EaseCubicOut)
			element.label = element.entrance
			if status.NeedsBadge() {
				element.badge = &badge{
					status: status,
					fade:   NewWindow(now, delay+timing.Entrance, timing.Transition, Linear),
				}
			}
		}

		scene.nodes[node.ID] = element
		scene.order = append(scene.order, element)
	}
}

// UpdateStatus patches one element to a new status, starting the color
// transition and any badge fade. It returns false, changing nothing,
// when no element has the id or the element already shows status.
func (scene *Scene) UpdateStatus(id string, status nodestatus.Status, now time.Time) bool {
	element, ok := scene.nodes[id]
	if !ok || element.status == status {
		return false
	}

	from, _, _ := element.StatusBlend(now)
	element.fromStatus = from
	element.status = status
	element.transition = NewWindow(now, 0, scene.timing.StatusTransition, Linear)

	if element.IsPodGroup() {
		return true
	}

	// Fades restart from the opacity showing at now so a badge never
	// jumps.
	_, opacity, visible := element.Badge(now)
	removing := visible && element.badge.removing
	switch {
	case status.NeedsBadge() && !visible:
		element.badge = &badge{
			status: status,
			fade:   NewWindow(now, 0, scene.timing.Transition, Linear),
		}
	case status.NeedsBadge() && removing:
		element.badge = &badge{
			status: status,
			fade:   NewWindow(now, 0, scene.timing.Transition, Linear),
			from:   opacity,
		}
	case status.NeedsBadge():
		element.badge.status = status
	case !visible:
		element.badge = nil
	case removing:
	case !element.badge.started(now):
		element.badge = nil
	default:
		element.badge.removing = true
		element.badge.from = opacity
		element.badge.fade = NewWindow(now, 0, scene.timing.Transition, Linear)
	}
	return true
}

// Sweep drops badges whose removal fade has completed.
func (scene *Scene) Sweep(now time.Time) {
	for _, element := range scene.order {
		if element.badge != nil && element.badge.removing && element.badge.fade.Done(now) {
			element.badge = nil
		}
	}
}

// Highlight marks id as selected, highlights its incident connections
// and dims the rest.
func (scene *Scene) Highlight(id string) {
	for _, element := range scene.order {
		element.Selected = element.ID == id
	}
	for _, connection := range scene.connections {
		incident := connection.From == id || connection.To == id
		connection.Highlighted = incident
		connection.Dimmed = !incident
	}
}

// ClearHighlight removes selection and connection styling.
func (scene *Scene) ClearHighlight() {
	for _, element := range scene.order {
		element.Selected = false
	}
	for _, connection := range scene.connections {
		connection.Highlighted = false
		connection.Dimmed = false
	}
}

// FadeOut starts fading the whole scene to the timing's floor opacity.
func (scene *Scene) FadeOut(now time.Time) {
	scene.fadeToward(scene.timing.FadeFloor, now)
}

// FadeIn starts fading the whole scene back to full opacity.
func (scene *Scene) FadeIn(now time.Time) {
	scene.fadeToward(1, now)
}

func (scene *Scene) fadeToward(target float64, now time.Time) {
	scene.fadeFrom = scene.Opacity(now)
	scene.fadeTo = target
	scene.fade = NewWindow(now, 0, scene.timing.Fade, Linear)
}

// Opacity returns the whole-scene opacity at now.
func (scene *Scene) Opacity(now time.Time) float64 {
	progress := scene.fade.Progress(now)
	return scene.fadeFrom + (scene.fadeTo-scene.fadeFrom)*progress
}

// FadeDone reports whether the last whole-scene fade has finished.
func (scene *Scene) FadeDone(now time.Time) bool {
	return scene.fade.Done(now)
}

// Animating reports whether any element or fade is still in motion at
// now.
func (scene *Scene) Animating(now time.Time) bool {
	if !scene.fade.Done(now) {
		return true
	}
	for _, element := range scene.order {
		if element.animating(now) {
			return true
		}
	}
	for _, connection := range scene.connections {
		if connection.animating(now) {
			return true
		}
	}
	return false
}

// Node returns the element for id.
func (scene *Scene) Node(id string) (*NodeElement, bool) {
	element, ok := scene.nodes[id]
	return element, ok
}

// Nodes returns the elements in drawn order. The slice is shared;
// callers must not modify it.
func (scene *Scene) Nodes() []*NodeElement {
	return scene.order
}

// Connections returns the connection elements in drawn order. The
// slice is shared; callers must not modify it.
func (scene *Scene) Connections() []*ConnectionElement {
	return scene.connections
}

// Len returns the number of node elements.
func (scene *Scene) Len() int {
	return len(scene.order)
}
