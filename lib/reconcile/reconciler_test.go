// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/scene"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const frame = 50 * time.Millisecond

func newReconciler() *Reconciler {
	return New(Config{Timing: scene.DefaultTiming()})
}

func healthyState() *cluster.State {
	return &cluster.State{
		Pods: []cluster.Pod{
			{Name: "web-1", Status: cluster.PhaseRunning, Ready: true},
			{Name: "web-2", Status: cluster.PhaseRunning, Ready: true},
		},
		Services:    []cluster.Service{{Name: "web", Endpoints: 2}},
		Deployments: []cluster.Deployment{{Name: "web", Replicas: 2, ReadyReplicas: 2}},
	}
}

// finish advances frame by frame until the pipeline is idle and
// returns the time reached.
func finish(t *testing.T, reconciler *Reconciler, now time.Time) time.Time {
	t.Helper()
	for range 100 {
		if !reconciler.Busy() {
			return now
		}
		now = now.Add(frame)
		reconciler.Advance(now)
	}
	t.Fatalf("pipeline still busy in phase %s", reconciler.Phase())
	return now
}

func TestFirstDiagramRunsPipeline(t *testing.T) {
	reconciler := newReconciler()
	timing := scene.DefaultTiming()

	if result := reconciler.ApplyState(healthyState(), epoch); result.Mode != ModeNone {
		t.Errorf("state before any diagram: mode %s, want none", result.Mode)
	}

	result := reconciler.ApplyDiagram(defaultDiagram(), epoch)
	if result.Mode != ModeFullRedraw || result.Generation != 1 {
		t.Fatalf("first diagram: mode %s generation %d", result.Mode, result.Generation)
	}
	if !reconciler.Busy() || reconciler.Phase() != PhaseFadeOut {
		t.Fatalf("phase = %s, want fade-out", reconciler.Phase())
	}

	if drawn := reconciler.Advance(epoch.Add(timing.Fade - time.Millisecond)); drawn.Drawn {
		t.Error("drew before fade-out finished")
	}
	drawn := reconciler.Advance(epoch.Add(timing.Fade))
	if !drawn.Drawn || reconciler.Phase() != PhaseFadeIn {
		t.Fatalf("after fade-out: drawn=%v phase=%s", drawn.Drawn, reconciler.Phase())
	}
	if reconciler.Scene().Len() != 3 {
		t.Errorf("scene has %d nodes, want 3", reconciler.Scene().Len())
	}
	if reconciler.Store().Previous() != nil {
		t.Error("previous committed before the pipeline completed")
	}

	settled := reconciler.Advance(epoch.Add(2 * timing.Fade))
	if !settled.Settled || reconciler.Busy() {
		t.Fatalf("after fade-in: settled=%v busy=%v", settled.Settled, reconciler.Busy())
	}
	if !reconciler.Store().Previous().Equal(defaultDiagram()) {
		t.Error("previous is not the drawn diagram")
	}
	for _, element := range reconciler.Scene().Nodes() {
		if element.Status() != nodestatus.Healthy {
			t.Errorf("%s drawn as %s, want healthy", element.ID, element.Status())
		}
	}
}

func TestEqualDiagramIsIgnored(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)

	result := reconciler.ApplyDiagram(defaultDiagram(), now)
	if result.Mode != ModeNone {
		t.Errorf("equal diagram: mode %s, want none", result.Mode)
	}
	if reconciler.Generation() != 1 {
		t.Errorf("generation = %d, want 1", reconciler.Generation())
	}
}

func TestPermutedDiagramPatchesStatus(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)

	permuted := defaultDiagram()
	slices.Reverse(permuted.Nodes)
	result := reconciler.ApplyDiagram(permuted, now)
	if result.Mode != ModeStatusUpdate {
		t.Errorf("permuted diagram: mode %s, want status-update", result.Mode)
	}
	if reconciler.Busy() {
		t.Error("permuted diagram started a pipeline")
	}
}

func TestStatusUpdateIsIdempotent(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyState(healthyState(), epoch)
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)

	broken := healthyState()
	broken.Pods[1].Status = cluster.ReasonCrashLoopBackOff
	broken.Deployments[0].ReadyReplicas = 1

	first := reconciler.ApplyState(broken, now)
	if first.Mode != ModeStatusUpdate {
		t.Fatalf("mode = %s, want status-update", first.Mode)
	}
	want := []StatusChange{
		{ID: "deployment", From: nodestatus.Healthy, To: nodestatus.Warning},
		{ID: "pods", From: nodestatus.Healthy, To: nodestatus.Error},
	}
	if !slices.Equal(first.Changes, want) {
		t.Errorf("changes = %v, want %v", first.Changes, want)
	}

	again := reconciler.ApplyState(broken, now.Add(frame))
	if again.Mode != ModeStatusUpdate || len(again.Changes) != 0 {
		t.Errorf("repeat: mode %s changes %v, want no changes", again.Mode, again.Changes)
	}
	if reconciler.Generation() != 1 {
		t.Errorf("status updates bumped generation to %d", reconciler.Generation())
	}
}

func TestStructuralChangeDuringPipelineIsDeferred(t *testing.T) {
	reconciler := newReconciler()
	timing := scene.DefaultTiming()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)

	grown := defaultDiagram()
	grown.Nodes = append(grown.Nodes, diagram.Node{ID: "hpa", Type: diagram.TypeHPA, Label: "HPA"})
	result := reconciler.ApplyDiagram(grown, epoch.Add(frame))
	if result.Mode != ModeDeferred || !reconciler.Pending() {
		t.Fatalf("mid-pipeline diagram: mode %s pending %v", result.Mode, reconciler.Pending())
	}
	if reconciler.Generation() != 1 {
		t.Errorf("deferred diagram bumped generation to %d", reconciler.Generation())
	}

	// A state arriving mid-pipeline is deferred too.
	if state := reconciler.ApplyState(healthyState(), epoch.Add(2*frame)); state.Mode != ModeDeferred {
		t.Errorf("mid-pipeline state: mode %s, want deferred", state.Mode)
	}

	reconciler.Advance(epoch.Add(timing.Fade))
	if reconciler.Scene().Len() != 3 {
		t.Errorf("first pipeline drew %d nodes, want 3", reconciler.Scene().Len())
	}
	settled := reconciler.Advance(epoch.Add(2 * timing.Fade))
	if !settled.Settled || settled.Mode != ModeFullRedraw || settled.Generation != 2 {
		t.Fatalf("settle: settled=%v mode=%s generation=%d", settled.Settled, settled.Mode, settled.Generation)
	}
	if !reconciler.Store().Previous().Equal(defaultDiagram()) {
		t.Error("previous after first settle is not the first diagram")
	}

	finish(t, reconciler, epoch.Add(2*timing.Fade))
	if _, ok := reconciler.Scene().Node("hpa"); !ok {
		t.Error("deferred diagram was never drawn")
	}
	if reconciler.Pending() {
		t.Error("still pending after the deferred pipeline")
	}
}

func TestDeferredStatusOnlyInputPatchesOnSettle(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyState(healthyState(), epoch)
	reconciler.ApplyDiagram(defaultDiagram(), epoch)

	broken := healthyState()
	broken.Services[0].Endpoints = 0
	reconciler.ApplyState(broken, epoch.Add(frame))

	now := finish(t, reconciler, epoch)
	if reconciler.Generation() != 1 {
		t.Errorf("generation = %d, want 1", reconciler.Generation())
	}
	element, _ := reconciler.Scene().Node("service")
	if element.Status() != nodestatus.Warning {
		t.Errorf("service status = %s, want warning", element.Status())
	}
	if reconciler.Animating(now.Add(time.Minute)) {
		t.Error("still animating long after settling")
	}
}

func TestSelectionSurvivesRedraw(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)

	if !reconciler.Interaction().Click("pods") {
		t.Fatal("click on pods changed nothing")
	}

	grown := defaultDiagram()
	grown.Nodes = append(grown.Nodes, diagram.Node{ID: "hpa", Type: diagram.TypeHPA})
	grown.Connections = append(grown.Connections, diagram.Connection{From: "hpa", To: "deployment"})
	reconciler.ApplyDiagram(grown, now)
	finish(t, reconciler, now)

	if got := reconciler.Interaction().Selected(); got != "pods" {
		t.Fatalf("selected = %q, want pods", got)
	}
	element, _ := reconciler.Scene().Node("pods")
	if !element.Selected {
		t.Error("pods element not marked selected after restore")
	}
	for _, connection := range reconciler.Scene().Connections() {
		incident := connection.From == "pods" || connection.To == "pods"
		if connection.Highlighted != incident || connection.Dimmed == incident {
			t.Errorf("%s: highlighted=%v dimmed=%v", connection.Key(), connection.Highlighted, connection.Dimmed)
		}
	}
}

func TestHoverAcrossRedraw(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)

	grown := defaultDiagram()
	grown.Nodes = append(grown.Nodes, diagram.Node{ID: "hpa", Type: diagram.TypeHPA})
	reconciler.ApplyDiagram(grown, now)

	// A hover on the old scene goes away with its element.
	reconciler.Interaction().Hover("deployment", 3, 3)
	for reconciler.Phase() == PhaseFadeOut {
		now = now.Add(frame)
		reconciler.Advance(now)
	}
	if _, ok := reconciler.Interaction().Hovered(); ok {
		t.Error("hover on a cleared element survived the draw")
	}

	// A hover on the new scene survives settle.
	reconciler.Interaction().Hover("hpa", 5, 6)
	finish(t, reconciler, now)
	tooltip, ok := reconciler.Tooltip()
	if !ok || tooltip.ID != "hpa" {
		t.Fatalf("tooltip after settle = %+v, %v, want hpa", tooltip, ok)
	}
	if tooltip.X != 5 || tooltip.Y != 6 {
		t.Errorf("tooltip anchor = (%d, %d), want (5, 6)", tooltip.X, tooltip.Y)
	}
}

func TestSelectionResetsWhenNodeRemoved(t *testing.T) {
	reconciler := newReconciler()
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	now := finish(t, reconciler, epoch)
	reconciler.Interaction().Click("service")

	shrunk := defaultDiagram()
	shrunk.Nodes = shrunk.Nodes[:1]
	shrunk.Nodes = append(shrunk.Nodes, defaultDiagram().Nodes[2])
	reconciler.ApplyDiagram(shrunk, now)
	finish(t, reconciler, now)

	if got := reconciler.Interaction().Selected(); got != "" {
		t.Errorf("selected = %q, want none", got)
	}
	for _, connection := range reconciler.Scene().Connections() {
		if connection.Highlighted || connection.Dimmed {
			t.Errorf("%s still styled after selection reset", connection.Key())
		}
	}
}

func TestDanglingConnectionIsOmitted(t *testing.T) {
	reconciler := newReconciler()
	snapshot := defaultDiagram()
	snapshot.Connections = append(snapshot.Connections, diagram.Connection{From: "service", To: "nowhere"})
	reconciler.ApplyDiagram(snapshot, epoch)

	drawn := reconciler.Advance(epoch.Add(scene.DefaultTiming().Fade))
	if !drawn.Drawn || drawn.Skipped != 1 {
		t.Fatalf("drawn=%v skipped=%d, want one skipped", drawn.Drawn, drawn.Skipped)
	}
	for _, connection := range reconciler.Scene().Connections() {
		if connection.To == "nowhere" {
			t.Error("dangling connection was drawn")
		}
	}
	if len(reconciler.Scene().Connections()) != 2 {
		t.Errorf("drew %d connections, want 2", len(reconciler.Scene().Connections()))
	}
}

func TestDuplicateNodeKeepsFirst(t *testing.T) {
	reconciler := newReconciler()
	snapshot := defaultDiagram()
	duplicate := snapshot.Nodes[0]
	duplicate.Label = "Shadow"
	snapshot.Nodes = append(snapshot.Nodes, duplicate)
	reconciler.ApplyDiagram(snapshot, epoch)

	drawn := reconciler.Advance(epoch.Add(scene.DefaultTiming().Fade))
	if !slices.Equal(drawn.Duplicates, []string{"deployment"}) {
		t.Errorf("duplicates = %v", drawn.Duplicates)
	}
	element, _ := reconciler.Scene().Node("deployment")
	if element.FullLabel != "Deployment" {
		t.Errorf("kept label %q, want the first node's", element.FullLabel)
	}
	if reconciler.Scene().Len() != 3 {
		t.Errorf("scene has %d nodes, want 3", reconciler.Scene().Len())
	}
}

func TestApplyEnvelopeStoresGame(t *testing.T) {
	reconciler := newReconciler()
	envelope := &cluster.Envelope{
		Game:    cluster.GameInfo{CurrentWorld: 2, CurrentLevel: 14},
		Cluster: *healthyState(),
	}
	reconciler.ApplyEnvelope(envelope, epoch)
	if got := reconciler.Store().Game().WorldLabel(); got != "World 2" {
		t.Errorf("world label = %q", got)
	}
	if len(reconciler.Store().State().Pods) != 2 {
		t.Error("envelope cluster state not stored")
	}
}

func TestTooltipDetails(t *testing.T) {
	reconciler := newReconciler()
	state := healthyState()
	state.Deployments[0].ReadyReplicas = 1
	state.Deployments[0].Issues = []string{"Only 1/2 replicas ready"}
	state.Pods[0].Issues = []string{"Pod not ready"}
	reconciler.ApplyState(state, epoch)
	reconciler.ApplyDiagram(defaultDiagram(), epoch)
	finish(t, reconciler, epoch)

	reconciler.Interaction().Hover("deployment", 4, 2)
	tooltip, ok := reconciler.Tooltip()
	if !ok {
		t.Fatal("no tooltip while hovering")
	}
	if tooltip.Status != nodestatus.Warning {
		t.Errorf("status = %s, want warning", tooltip.Status)
	}
	wantDetails := []string{"web: 1/2 ready", "Only 1/2 replicas ready"}
	if !slices.Equal(tooltip.Details, wantDetails) {
		t.Errorf("details = %v, want %v", tooltip.Details, wantDetails)
	}

	reconciler.Interaction().Hover("pods", 4, 2)
	tooltip, _ = reconciler.Tooltip()
	if len(tooltip.Details) != 2 || !strings.HasPrefix(tooltip.Details[0], "2 pods") ||
		tooltip.Details[1] != "web-1: Pod not ready" {
		t.Errorf("pod details = %v", tooltip.Details)
	}
}
