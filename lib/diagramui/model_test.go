// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/clusterview/lib/clock"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/reconcile"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
	"github.com/bureau-foundation/clusterview/lib/source"
)

// stubSource serves fixed payloads.
type stubSource struct {
	mu       sync.Mutex
	envelope *cluster.Envelope
	snapshot *diagram.Snapshot
	err      error
}

func (s *stubSource) FetchState(context.Context) (*cluster.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envelope, s.err
}

func (s *stubSource) FetchDiagram(context.Context) (*diagram.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.err
}

func testEnvelope(ready bool) *cluster.Envelope {
	return &cluster.Envelope{
		Game: cluster.GameInfo{CurrentWorld: 1, CurrentLevel: 2, TotalXP: 150},
		Cluster: cluster.State{
			Pods:     []cluster.Pod{{Name: "web-1", Status: cluster.PhaseRunning, Ready: ready}},
			Services: []cluster.Service{{Name: "web", Endpoints: 1}},
		},
	}
}

func testDiagram() *diagram.Snapshot {
	return &diagram.Snapshot{
		Title: "World 1 - Level 2: Pod Basics",
		Nodes: []diagram.Node{
			{ID: "pod", Type: diagram.TypePod, Label: "web-1", X: 300, Y: 325},
			{ID: "svc", Type: diagram.TypeService, Label: "web", X: 600, Y: 325},
		},
		Connections: []diagram.Connection{{From: "svc", To: "pod"}},
	}
}

type harness struct {
	t      *testing.T
	model  Model
	clock  *clock.FakeClock
	source *stubSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := clock.Fake(epoch)
	stub := &stubSource{envelope: testEnvelope(true), snapshot: testDiagram()}
	defaults := config.Default()
	model := NewModel(Config{
		Source:  stub,
		Timing:  scene.DefaultTiming(),
		Canvas:  defaults.Canvas,
		Refresh: defaults.Refresh,
		Clock:   fake,
	})
	h := &harness{t: t, model: model, clock: fake, source: stub}
	h.send(tea.WindowSizeMsg{Width: 200, Height: 40})
	return h
}

func (h *harness) send(message tea.Msg) tea.Cmd {
	h.t.Helper()
	updated, command := h.model.Update(message)
	h.model = updated.(Model)
	return command
}

// load runs both fetch commands and animates until the first redraw
// has settled.
func (h *harness) load() {
	h.t.Helper()
	h.send(h.model.fetchState()())
	h.send(h.model.fetchDiagram()())
	h.settle()
}

// settle drives animation ticks until the pipeline, every element
// animation and every flash have finished, leaving the model idle.
func (h *harness) settle() {
	h.t.Helper()
	for range 200 {
		now := h.clock.Now()
		if !h.model.reconciler.Busy() && !h.model.reconciler.Animating(now) && !h.model.flash.HasHot(now) {
			if h.model.animating {
				h.send(animationTickMsg{})
			}
			return
		}
		h.clock.Advance(animationTickInterval)
		h.send(animationTickMsg{})
	}
	h.t.Fatalf("model still animating in phase %s", h.model.reconciler.Phase())
}

func keyRunes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func TestModelLoadsAndDraws(t *testing.T) {
	h := newHarness(t)

	if view := h.model.View(); !strings.Contains(view, "No diagram") {
		t.Error("header does not show the empty state before the first fetch")
	}

	h.send(h.model.fetchState()())
	if command := h.send(h.model.fetchDiagram()()); command == nil {
		t.Fatal("first diagram did not start the animation tick")
	}
	if !h.model.reconciler.Busy() {
		t.Fatal("first diagram did not start the redraw pipeline")
	}
	h.settle()

	if n := h.model.reconciler.Scene().Len(); n != 2 {
		t.Fatalf("scene has %d nodes, want 2", n)
	}
	view := h.model.View()
	for _, want := range []string{"World 1 - Level 2: Pod Basics", "World 1", "Level 2", "150 XP", "live", "2 healthy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelStatusChangeFlashes(t *testing.T) {
	h := newHarness(t)
	h.load()

	h.source.mu.Lock()
	h.source.envelope = testEnvelope(false)
	h.source.mu.Unlock()

	if h.model.animating {
		t.Fatal("model still animating after settle")
	}
	if command := h.send(h.model.fetchState()()); command == nil {
		t.Error("status change did not schedule an animation tick")
	}
	if !h.model.animating {
		t.Error("status change did not start animating")
	}
	if h.model.reconciler.Busy() {
		t.Error("status-only change started a full redraw")
	}
	element, _ := h.model.reconciler.Scene().Node("pod")
	if element.Status() != nodestatus.Error {
		t.Errorf("pod status = %s, want error", element.Status())
	}
	if !h.model.flash.HasHot(h.clock.Now()) {
		t.Error("changed node is not flashing")
	}
	if view := h.model.View(); !strings.Contains(view, "pod → error") {
		t.Error("status bar does not show the latest change")
	}
}

func TestModelFetchErrorMarksStale(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.send(h.model.fetchState()())

	h.source.mu.Lock()
	h.source.err = errors.New("connection refused")
	h.source.mu.Unlock()

	h.clock.Advance(5 * time.Second)
	h.send(h.model.fetchState()())
	if !h.model.stale {
		t.Fatal("failed fetch did not mark the view stale")
	}
	if view := h.model.View(); !strings.Contains(view, "stale 5s") {
		t.Error("header does not show the stale indicator")
	}
	if n := h.model.reconciler.Scene().Len(); n != 2 {
		t.Errorf("failed fetch changed the scene: %d nodes", n)
	}
}

func TestModelKeyboardSelection(t *testing.T) {
	h := newHarness(t)
	h.load()
	nodes := h.model.reconciler.Scene().Nodes()
	interaction := h.model.reconciler.Interaction()

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := interaction.Selected(); got != nodes[0].ID {
		t.Fatalf("tab selected %q, want %q", got, nodes[0].ID)
	}
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := interaction.Selected(); got != nodes[1].ID {
		t.Fatalf("second tab selected %q, want %q", got, nodes[1].ID)
	}
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := interaction.Selected(); got != nodes[0].ID {
		t.Fatalf("tab did not wrap: selected %q", got)
	}
	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := interaction.Selected(); got != nodes[1].ID {
		t.Fatalf("shift+tab selected %q, want %q", got, nodes[1].ID)
	}
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if got := interaction.Selected(); got != "" {
		t.Errorf("esc left %q selected", got)
	}
}

func TestModelSearchSelects(t *testing.T) {
	h := newHarness(t)
	h.load()

	h.send(keyRunes("/"))
	if !h.model.search.Active() {
		t.Fatal("/ did not activate search")
	}
	for _, r := range "svc" {
		h.send(keyRunes(string(r)))
	}
	if got := h.model.search.Query(); got != "svc" {
		t.Fatalf("query = %q, want svc", got)
	}
	h.send(keyRunes("q"))
	if got := h.model.search.Query(); got != "svcq" {
		t.Fatalf("search did not capture q: query %q", got)
	}
	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	if h.model.search.Active() {
		t.Error("enter did not close search")
	}
	if got := h.model.reconciler.Interaction().Selected(); got != "svc" {
		t.Errorf("search selected %q, want svc", got)
	}
}

// cellOf finds a screen position (canvas row plus the header) where id
// is drawn.
func cellOf(t *testing.T, model Model, id string) (int, int) {
	t.Helper()
	raster := Rasterize(model.reconciler.Scene(), model.viewport, model.theme, model.flash, model.clock.Now())
	for row := range model.viewport.Rows {
		for column := range model.viewport.Columns {
			if raster.HitAt(column, row) == id {
				return column, row + 1
			}
		}
	}
	t.Fatalf("node %s is not drawn", id)
	return 0, 0
}

func TestModelMouseClickAndHover(t *testing.T) {
	h := newHarness(t)
	h.load()
	interaction := h.model.reconciler.Interaction()
	x, y := cellOf(t, h.model, "svc")

	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := interaction.Selected(); got != "svc" {
		t.Fatalf("click selected %q, want svc", got)
	}
	h.send(tea.MouseMsg{X: 0, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := interaction.Selected(); got != "" {
		t.Fatalf("background click left %q selected", got)
	}

	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	tooltip, ok := h.model.reconciler.Tooltip()
	if !ok || tooltip.ID != "svc" {
		t.Fatalf("hover tooltip = %+v, %v", tooltip, ok)
	}
	if tooltip.Footer != reconcile.TooltipFooter {
		t.Errorf("tooltip footer = %q", tooltip.Footer)
	}
	h.send(tea.MouseMsg{X: 0, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if _, ok := h.model.reconciler.Tooltip(); ok {
		t.Error("tooltip still shown after leaving the node")
	}
}

func TestModelWheelZooms(t *testing.T) {
	h := newHarness(t)

	h.send(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if h.model.viewport.Zoom <= 1 {
		t.Errorf("wheel up did not zoom in: %v", h.model.viewport.Zoom)
	}
	h.send(keyRunes("0"))
	if h.model.viewport.Zoom != 1 {
		t.Errorf("reset left zoom at %v", h.model.viewport.Zoom)
	}
	h.send(keyRunes("-"))
	if h.model.viewport.Zoom >= 1 {
		t.Errorf("- did not zoom out: %v", h.model.viewport.Zoom)
	}
}

func TestModelStreamUpdate(t *testing.T) {
	h := newHarness(t)
	h.send(h.model.fetchDiagram()())
	h.settle()

	updates := make(chan source.Update, 1)
	updates <- source.Update{Kind: source.UpdateState, State: testEnvelope(true)}
	message := listenForUpdate(updates)()
	if _, ok := message.(streamUpdateMsg); !ok {
		t.Fatalf("listener returned %T", message)
	}
	h.send(message)
	if h.model.lastUpdate.IsZero() {
		t.Error("pushed state did not update the connection indicator")
	}
	if h.model.reconciler.Store().Game().TotalXP != 150 {
		t.Error("pushed envelope did not store game info")
	}

	close(updates)
	if message := listenForUpdate(updates)(); message != nil {
		t.Errorf("closed channel produced %T", message)
	}
	if listenForUpdate(nil) != nil {
		t.Error("nil channel produced a listener")
	}
}

func TestModelLogLineFades(t *testing.T) {
	h := newHarness(t)
	stamp := epoch.Add(time.Second)

	h.send(logRecordMsg{Summary: "WARN diagram fetch failed", Time: stamp})
	if view := h.model.View(); !strings.Contains(view, "diagram fetch failed") {
		t.Fatal("status bar does not show the log line")
	}
	h.send(logRecordFadeMsg{Stamp: epoch})
	if h.model.logLine == nil {
		t.Fatal("fade for an older record cleared the line")
	}
	h.send(logRecordFadeMsg{Stamp: stamp})
	if h.model.logLine != nil {
		t.Error("log line not cleared by its fade")
	}
}

func TestModelQuit(t *testing.T) {
	h := newHarness(t)
	command := h.send(keyRunes("q"))
	if command == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := command().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
