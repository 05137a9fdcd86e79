// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// Mode is how a reconciliation touched the scene.
type Mode int

const (
	// ModeNone means nothing was done: no diagram yet, or an input
	// equal to the held one.
	ModeNone Mode = iota

	// ModeFullRedraw means a redraw pipeline was started.
	ModeFullRedraw

	// ModeStatusUpdate means node statuses were patched in place.
	ModeStatusUpdate

	// ModeDeferred means a pipeline was running; the input is held
	// and re-evaluated when the pipeline settles.
	ModeDeferred
)

func (mode Mode) String() string {
	switch mode {
	case ModeFullRedraw:
		return "full-redraw"
	case ModeStatusUpdate:
		return "status-update"
	case ModeDeferred:
		return "deferred"
	default:
		return "none"
	}
}

// Phase is the step of the redraw pipeline.
type Phase int

const (
	PhaseIdle Phase = iota

	// PhaseFadeOut dims the old scene. Clearing and drawing happen
	// when it completes.
	PhaseFadeOut

	// PhaseFadeIn brings the new scene to full opacity. Selection is
	// restored when it completes.
	PhaseFadeIn
)

func (phase Phase) String() string {
	switch phase {
	case PhaseFadeOut:
		return "fade-out"
	case PhaseFadeIn:
		return "fade-in"
	default:
		return "idle"
	}
}

// StatusChange is one node whose displayed status changed.
type StatusChange struct {
	ID       string
	From, To nodestatus.Status
}

func (change StatusChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", change.ID, change.From, change.To)
}

// Result describes what one call did.
type Result struct {
	Mode Mode

	// Generation is the pipeline generation current after the call.
	Generation uint64

	// Changes lists the status transitions of a status update.
	Changes []StatusChange

	// Drawn reports that the pipeline cleared and redrew the scene
	// during this call. Skipped counts connections dropped for a
	// missing endpoint; Duplicates lists node ids that appeared more
	// than once (only the first was drawn).
	Drawn      bool
	Skipped    int
	Duplicates []string

	// Settled reports that a redraw pipeline completed during this
	// call. Mode then describes any deferred work run afterward.
	Settled bool
}

// Config configures a Reconciler.
type Config struct {
	Timing scene.Timing
	Logger *slog.Logger
}

// Reconciler brings the scene in line with the store. It decides
// between a full redraw and an in-place status update, sequences the
// redraw pipeline, and defers inputs that arrive while a pipeline is
// running.
//
// All methods must be called from one goroutine.
type Reconciler struct {
	logger *slog.Logger

	store       Store
	scene       *scene.Scene
	interaction *Interaction

	generation uint64
	phase      Phase
	drawing    *diagram.Snapshot
	pending    bool
}

// New returns an idle reconciler with an empty scene.
func New(config Config) *Reconciler {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := scene.New(config.Timing)
	return &Reconciler{
		logger:      logger,
		scene:       s,
		interaction: NewInteraction(s),
	}
}

// Store returns the snapshot store.
func (reconciler *Reconciler) Store() *Store { return &reconciler.store }

// Scene returns the scene for rendering.
func (reconciler *Reconciler) Scene() *scene.Scene { return reconciler.scene }

// Interaction returns the selection and hover state machine.
func (reconciler *Reconciler) Interaction() *Interaction { return reconciler.interaction }

// Generation returns the number of redraw pipelines started.
func (reconciler *Reconciler) Generation() uint64 { return reconciler.generation }

// Busy reports whether a redraw pipeline is running.
func (reconciler *Reconciler) Busy() bool { return reconciler.phase != PhaseIdle }

// Phase returns the current pipeline phase.
func (reconciler *Reconciler) Phase() Phase { return reconciler.phase }

// Pending reports whether input is waiting for the pipeline to settle.
func (reconciler *Reconciler) Pending() bool { return reconciler.pending }

// Animating reports whether the caller must keep calling Advance: a
// pipeline is running or some element is still in motion.
func (reconciler *Reconciler) Animating(now time.Time) bool {
	return reconciler.Busy() || reconciler.scene.Animating(now)
}

// ApplyState accepts a new cluster state and reconciles.
func (reconciler *Reconciler) ApplyState(state *cluster.State, now time.Time) Result {
	reconciler.store.SetState(state, now)
	return reconciler.reconcile(now)
}

// ApplyEnvelope accepts a state endpoint response: the game progress
// and the cluster state.
func (reconciler *Reconciler) ApplyEnvelope(envelope *cluster.Envelope, now time.Time) Result {
	reconciler.store.SetGame(envelope.Game)
	state := envelope.Cluster
	return reconciler.ApplyState(&state, now)
}

// ApplyDiagram accepts a diagram snapshot. A snapshot deeply equal to
// the held one is ignored.
func (reconciler *Reconciler) ApplyDiagram(snapshot *diagram.Snapshot, now time.Time) Result {
	if !reconciler.store.SetDiagram(snapshot) {
		return Result{Mode: ModeNone, Generation: reconciler.generation}
	}
	return reconciler.reconcile(now)
}

func (reconciler *Reconciler) reconcile(now time.Time) Result {
	current := reconciler.store.Diagram()
	if current == nil {
		return Result{Mode: ModeNone, Generation: reconciler.generation}
	}
	if reconciler.Busy() {
		reconciler.pending = true
		reconciler.logger.Debug("reconcile deferred",
			"generation", reconciler.generation, "phase", reconciler.phase)
		return Result{Mode: ModeDeferred, Generation: reconciler.generation}
	}
	if HasStructuralChange(reconciler.store.Previous(), current) {
		return reconciler.startRedraw(current, now)
	}
	reconciler.store.MarkRendered(current)
	return reconciler.updateStatuses(current, now)
}

func (reconciler *Reconciler) startRedraw(current *diagram.Snapshot, now time.Time) Result {
	reconciler.generation++
	reconciler.drawing = current
	reconciler.phase = PhaseFadeOut
	reconciler.scene.FadeOut(now)
	reconciler.logger.Info("full redraw started",
		"generation", reconciler.generation,
		"title", current.Title,
		"nodes", len(current.Nodes),
		"connections", len(current.Connections))
	return Result{Mode: ModeFullRedraw, Generation: reconciler.generation}
}

// updateStatuses derives every node's status from the held state and
// patches the elements whose status differs.
func (reconciler *Reconciler) updateStatuses(current *diagram.Snapshot, now time.Time) Result {
	state := reconciler.store.State()
	nodes, _ := current.UniqueNodes()
	var changes []StatusChange
	for _, node := range nodes {
		element, ok := reconciler.scene.Node(node.ID)
		if !ok {
			continue
		}
		from := element.Status()
		to := nodestatus.Derive(node, state)
		if reconciler.scene.UpdateStatus(node.ID, to, now) {
			changes = append(changes, StatusChange{ID: node.ID, From: from, To: to})
			reconciler.logger.Debug("node status changed",
				"node", node.ID, "from", from, "to", to)
		}
	}
	return Result{Mode: ModeStatusUpdate, Generation: reconciler.generation, Changes: changes}
}

// Advance steps the redraw pipeline to now and retires finished
// animations. Callers invoke it on every animation frame while
// Animating reports true.
func (reconciler *Reconciler) Advance(now time.Time) Result {
	result := Result{Mode: ModeNone, Generation: reconciler.generation}
	switch reconciler.phase {
	case PhaseFadeOut:
		if reconciler.scene.FadeDone(now) {
			result = reconciler.draw(now)
		}
	case PhaseFadeIn:
		if reconciler.scene.FadeDone(now) {
			result = reconciler.settle(now)
		}
	}
	reconciler.scene.Sweep(now)
	return result
}

// draw clears the scene and draws the snapshot being rendered,
// connections first so nodes paint over them.
func (reconciler *Reconciler) draw(now time.Time) Result {
	snapshot := reconciler.drawing
	state := reconciler.store.State()
	nodes, duplicates := snapshot.UniqueNodes()
	for _, id := range duplicates {
		reconciler.logger.Warn("duplicate node id, keeping first", "node", id,
			"generation", reconciler.generation)
	}

	// Clearing destroys the hovered element; selection is restored by id
	// at settle.
	reconciler.interaction.Unhover()
	reconciler.scene.Clear()
	skipped := reconciler.scene.DrawConnections(snapshot.Connections, nodes, now)
	reconciler.scene.DrawNodes(nodes, func(node diagram.Node) nodestatus.Status {
		return nodestatus.Derive(node, state)
	}, now)
	reconciler.scene.FadeIn(now)
	reconciler.phase = PhaseFadeIn

	reconciler.logger.Debug("scene drawn",
		"generation", reconciler.generation,
		"nodes", len(nodes),
		"connections", len(snapshot.Connections)-skipped,
		"skipped_connections", skipped)
	return Result{
		Mode:       ModeNone,
		Generation: reconciler.generation,
		Drawn:      true,
		Skipped:    skipped,
		Duplicates: duplicates,
	}
}

// settle restores selection, commits the drawn snapshot as previous,
// and runs any deferred reconciliation against it.
func (reconciler *Reconciler) settle(now time.Time) Result {
	reconciler.interaction.restore()
	reconciler.store.MarkRendered(reconciler.drawing)
	reconciler.drawing = nil
	reconciler.phase = PhaseIdle
	reconciler.logger.Info("full redraw complete",
		"generation", reconciler.generation,
		"selected", reconciler.interaction.Selected())

	result := Result{Mode: ModeNone, Generation: reconciler.generation}
	if reconciler.pending {
		reconciler.pending = false
		result = reconciler.reconcile(now)
	}
	result.Settled = true
	return result
}

// Tooltip returns the hover tooltip enriched with details about the
// resources the hovered node resolves to in the held state.
func (reconciler *Reconciler) Tooltip() (Tooltip, bool) {
	tooltip, ok := reconciler.interaction.Tooltip()
	if !ok {
		return tooltip, false
	}
	state := reconciler.store.State()
	snapshot := reconciler.store.Previous()
	if state == nil || snapshot == nil {
		return tooltip, true
	}
	node, found := snapshot.Node(tooltip.ID)
	if !found {
		return tooltip, true
	}
	tooltip.Details = resourceDetails(node, state)
	return tooltip, true
}

func resourceDetails(node diagram.Node, state *cluster.State) []string {
	var details []string
	switch node.Type {
	case diagram.TypePod, diagram.TypePodGroup:
		classes := make(map[string]int)
		for _, pod := range state.Pods {
			classes[pod.StatusClass()]++
			for _, issue := range pod.Issues {
				details = append(details, pod.Name+": "+issue)
			}
		}
		summary := fmt.Sprintf("%d pods", len(state.Pods))
		for _, class := range []string{"healthy", "warning", "error", "unknown"} {
			if count := classes[class]; count > 0 {
				summary += fmt.Sprintf(", %d %s", count, class)
			}
		}
		details = append([]string{summary}, details...)
	case diagram.TypeService:
		if service, ok := state.FindService(node.ResourceName); ok {
			details = append(details, fmt.Sprintf("%s: %d endpoints", service.Name, service.Endpoints))
			details = append(details, service.Issues...)
		}
	case diagram.TypeDeployment:
		if deployment, ok := state.FindDeployment(node.ResourceName); ok {
			details = append(details, fmt.Sprintf("%s: %d/%d ready",
				deployment.Name, deployment.ReadyReplicas, deployment.Replicas))
			details = append(details, deployment.Issues...)
		}
	}
	return details
}
