// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/clusterview/lib/clock"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/reconcile"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
	"github.com/bureau-foundation/clusterview/lib/source"
	"github.com/bureau-foundation/clusterview/lib/tui"
	"github.com/bureau-foundation/clusterview/lib/vizmetrics"
)

// animationTickInterval is the frame interval while anything moves.
const animationTickInterval = 50 * time.Millisecond

// Pan step per key press, in cells.
const (
	panColumns = 4
	panRows    = 2
)

// chromeRows is the header line plus the status bar line.
const chromeRows = 2

// Config configures a Model.
type Config struct {
	// Source is polled for state and diagrams. Required.
	Source source.Source

	// Updates, when non-nil, delivers pushed updates applied like
	// fetch results.
	Updates <-chan source.Update

	// Changes, when non-nil, triggers an immediate fetch of both
	// endpoints on every receive.
	Changes <-chan struct{}

	Timing  scene.Timing
	Canvas  config.CanvasConfig
	Refresh config.RefreshConfig

	// Timeout bounds each fetch.
	Timeout time.Duration

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *vizmetrics.Metrics
}

// Messages delivered to Update.
type (
	stateFetchedMsg struct {
		envelope *cluster.Envelope
		err      error
		elapsed  time.Duration
	}
	diagramFetchedMsg struct {
		snapshot *diagram.Snapshot
		err      error
		elapsed  time.Duration
	}
	stateTickMsg     struct{}
	diagramTickMsg   struct{}
	animationTickMsg struct{}
	streamUpdateMsg  struct{ update source.Update }
	filesChangedMsg  struct{}
)

// Model is the bubbletea model for the diagram viewer. It owns the
// reconciler; fetches run as commands and post their results back, so
// all reconciliation happens in Update.
type Model struct {
	reconciler *reconcile.Reconciler
	source     source.Source
	updates    <-chan source.Update
	changes    <-chan struct{}

	clock   clock.Clock
	logger  *slog.Logger
	metrics *vizmetrics.Metrics

	refresh config.RefreshConfig
	timeout time.Duration

	theme    tui.Theme
	keys     KeyMap
	viewport *Viewport
	flash    *tui.FlashTracker
	search   SearchModel

	width  int
	height int
	ready  bool

	// Connection indicator: time of the last successful state fetch
	// and whether the most recent fetch of either endpoint failed.
	lastUpdate time.Time
	stale      bool

	// logLine is the most recent TUILogHandler record, shown in the
	// status bar until it fades.
	logLine *logRecordMsg

	animating bool
}

// NewModel creates a Model from config.
func NewModel(config Config) Model {
	modelClock := config.Clock
	if modelClock == nil {
		modelClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	viewport := NewViewport(config.Canvas.Width, config.Canvas.Height, config.Canvas.MinZoom, config.Canvas.MaxZoom)
	return Model{
		reconciler: reconcile.New(reconcile.Config{Timing: config.Timing, Logger: logger}),
		source:     config.Source,
		updates:    config.Updates,
		changes:    config.Changes,
		clock:      modelClock,
		logger:     logger,
		metrics:    config.Metrics,
		refresh:    config.Refresh,
		timeout:    timeout,
		theme:      tui.DefaultTheme,
		keys:       DefaultKeyMap,
		viewport:   &viewport,
		flash:      tui.NewFlashTracker(),
		search:     NewSearchModel(),
	}
}

// Reconciler returns the model's reconciler.
func (model Model) Reconciler() *reconcile.Reconciler { return model.reconciler }

// Init fetches both endpoints and starts the refresh timers and the
// push listeners.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		model.fetchState(),
		model.fetchDiagram(),
		scheduleStateTick(model.refresh.StateInterval),
		scheduleDiagramTick(model.refresh.DiagramInterval),
		listenForUpdate(model.updates),
		listenForChange(model.changes),
	)
}

func (model Model) fetchState() tea.Cmd {
	fetchSource, timeout, fetchClock := model.source, model.timeout, model.clock
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := fetchClock.Now()
		envelope, err := fetchSource.FetchState(ctx)
		return stateFetchedMsg{envelope: envelope, err: err, elapsed: fetchClock.Now().Sub(start)}
	}
}

func (model Model) fetchDiagram() tea.Cmd {
	fetchSource, timeout, fetchClock := model.source, model.timeout, model.clock
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := fetchClock.Now()
		snapshot, err := fetchSource.FetchDiagram(ctx)
		return diagramFetchedMsg{snapshot: snapshot, err: err, elapsed: fetchClock.Now().Sub(start)}
	}
}

func scheduleStateTick(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return stateTickMsg{} })
}

func scheduleDiagramTick(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return diagramTickMsg{} })
}

func scheduleAnimationTick() tea.Cmd {
	return tea.Tick(animationTickInterval, func(time.Time) tea.Msg { return animationTickMsg{} })
}

// listenForUpdate blocks until a pushed update arrives. A closed
// channel ends the listener.
func listenForUpdate(updates <-chan source.Update) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return nil
		}
		return streamUpdateMsg{update: update}
	}
}

func listenForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return filesChangedMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.MouseMsg:
		model.handleMouse(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.viewport.Resize(message.Width, message.Height-chromeRows)

	case stateFetchedMsg:
		return model, model.handleState(message)

	case diagramFetchedMsg:
		return model, model.handleDiagram(message)

	case stateTickMsg:
		return model, tea.Batch(model.fetchState(), scheduleStateTick(model.refresh.StateInterval))

	case diagramTickMsg:
		return model, tea.Batch(model.fetchDiagram(), scheduleDiagramTick(model.refresh.DiagramInterval))

	case streamUpdateMsg:
		return model, tea.Batch(model.applyUpdate(message.update), listenForUpdate(model.updates))

	case filesChangedMsg:
		return model, tea.Batch(model.fetchState(), model.fetchDiagram(), listenForChange(model.changes))

	case animationTickMsg:
		return model, model.handleAnimationTick()

	case logRecordMsg:
		model.logLine = &message
		stamp := message.Time
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{Stamp: stamp}
		})

	case logRecordFadeMsg:
		if model.logLine != nil && model.logLine.Time.Equal(message.Stamp) {
			model.logLine = nil
		}
	}
	return model, nil
}

func (model *Model) handleState(message stateFetchedMsg) tea.Cmd {
	if model.metrics != nil {
		model.metrics.ObserveFetch(source.EndpointState, message.elapsed, message.err)
	}
	if message.err != nil {
		model.stale = true
		model.logger.Warn("state fetch failed", "error", message.err)
		return nil
	}
	now := model.clock.Now()
	model.stale = false
	model.lastUpdate = now
	return model.observe(model.reconciler.ApplyEnvelope(message.envelope, now), now)
}

func (model *Model) handleDiagram(message diagramFetchedMsg) tea.Cmd {
	if model.metrics != nil {
		model.metrics.ObserveFetch(source.EndpointDiagram, message.elapsed, message.err)
	}
	if message.err != nil {
		model.stale = true
		model.logger.Warn("diagram fetch failed", "error", message.err)
		return nil
	}
	now := model.clock.Now()
	return model.observe(model.reconciler.ApplyDiagram(message.snapshot, now), now)
}

func (model *Model) applyUpdate(update source.Update) tea.Cmd {
	now := model.clock.Now()
	switch update.Kind {
	case source.UpdateState:
		model.stale = false
		model.lastUpdate = now
		return model.observe(model.reconciler.ApplyEnvelope(update.State, now), now)
	case source.UpdateDiagram:
		return model.observe(model.reconciler.ApplyDiagram(update.Diagram, now), now)
	}
	return nil
}

// observe records a reconcile result: flashes changed nodes, feeds
// metrics, and starts the animation tick when something moves.
func (model *Model) observe(result reconcile.Result, now time.Time) tea.Cmd {
	if result.Drawn {
		model.flash.Reset()
	}
	for _, change := range result.Changes {
		model.flash.Ignite(change.ID, change.To, now)
	}
	if model.metrics != nil {
		model.metrics.ObserveResult(result)
		if snapshot := model.reconciler.Store().Diagram(); snapshot != nil {
			nodes, _ := snapshot.UniqueNodes()
			model.metrics.SetNodeCounts(nodestatus.Counts(nodes, model.reconciler.Store().State()))
		}
	}
	return model.ensureAnimation(now)
}

func (model *Model) ensureAnimation(now time.Time) tea.Cmd {
	if model.animating {
		return nil
	}
	if !model.reconciler.Animating(now) && !model.flash.HasHot(now) {
		return nil
	}
	model.animating = true
	return scheduleAnimationTick()
}

func (model *Model) handleAnimationTick() tea.Cmd {
	now := model.clock.Now()
	result := model.reconciler.Advance(now)
	command := model.observe(result, now)
	if model.reconciler.Animating(now) || model.flash.HasHot(now) {
		return tea.Batch(command, scheduleAnimationTick())
	}
	model.animating = false
	return command
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	interaction := model.reconciler.Interaction()

	if model.search.Active() {
		switch {
		case key.Matches(message, model.keys.SearchConfirm):
			if match, ok := model.search.Match(model.reconciler.Scene().Nodes()); ok {
				model.selectNode(match.ID)
			}
			model.search.Deactivate()
		case key.Matches(message, model.keys.SearchCancel):
			model.search.Deactivate()
		default:
			return model, model.search.Update(message)
		}
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.ZoomIn):
		model.viewport.ZoomCenter(keyZoomFactor)
	case key.Matches(message, model.keys.ZoomOut):
		model.viewport.ZoomCenter(1 / keyZoomFactor)
	case key.Matches(message, model.keys.ResetView):
		model.viewport.Reset()
	case key.Matches(message, model.keys.PanUp):
		model.viewport.Pan(0, -panRows)
	case key.Matches(message, model.keys.PanDown):
		model.viewport.Pan(0, panRows)
	case key.Matches(message, model.keys.PanLeft):
		model.viewport.Pan(-panColumns, 0)
	case key.Matches(message, model.keys.PanRight):
		model.viewport.Pan(panColumns, 0)
	case key.Matches(message, model.keys.NextNode):
		model.cycleSelection(1)
	case key.Matches(message, model.keys.PreviousNode):
		model.cycleSelection(-1)
	case key.Matches(message, model.keys.Deselect):
		interaction.ClickBackground()
	case key.Matches(message, model.keys.SearchActivate):
		return model, model.search.Activate()
	case key.Matches(message, model.keys.Refresh):
		return model, tea.Batch(model.fetchState(), model.fetchDiagram())
	}
	return model, nil
}

// selectNode selects id unless it already is selected; Click would
// toggle it off.
func (model *Model) selectNode(id string) {
	interaction := model.reconciler.Interaction()
	if interaction.Selected() != id {
		interaction.Click(id)
	}
}

// cycleSelection moves the selection by step through the nodes in
// drawn order, wrapping at either end.
func (model *Model) cycleSelection(step int) {
	nodes := model.reconciler.Scene().Nodes()
	if len(nodes) == 0 {
		return
	}
	current := -1
	selected := model.reconciler.Interaction().Selected()
	for index, node := range nodes {
		if node.ID == selected {
			current = index
			break
		}
	}
	next := 0
	switch {
	case current >= 0:
		next = (current + step + len(nodes)) % len(nodes)
	case step < 0:
		next = len(nodes) - 1
	}
	model.selectNode(nodes[next].ID)
}

// canvasCell converts screen coordinates to canvas cell coordinates.
func canvasCell(x, y int) (int, int) {
	return x, y - 1
}

func (model *Model) hitTest(x, y int) string {
	column, row := canvasCell(x, y)
	raster := Rasterize(model.reconciler.Scene(), model.viewport, model.theme, model.flash, model.clock.Now())
	return raster.HitAt(column, row)
}

func (model *Model) handleMouse(message tea.MouseMsg) {
	interaction := model.reconciler.Interaction()
	switch {
	case message.Button == tea.MouseButtonWheelUp:
		column, row := canvasCell(message.X, message.Y)
		model.viewport.ZoomAt(column, row, wheelZoomFactor)
	case message.Button == tea.MouseButtonWheelDown:
		column, row := canvasCell(message.X, message.Y)
		model.viewport.ZoomAt(column, row, 1/wheelZoomFactor)
	case message.Action == tea.MouseActionPress && message.Button == tea.MouseButtonLeft:
		if id := model.hitTest(message.X, message.Y); id != "" {
			interaction.Click(id)
		} else {
			interaction.ClickBackground()
		}
	case message.Action == tea.MouseActionMotion:
		if id := model.hitTest(message.X, message.Y); id != "" {
			interaction.Hover(id, message.X, message.Y)
		} else {
			interaction.Unhover()
		}
	}
}
