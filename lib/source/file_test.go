// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/clusterview/lib/codec"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestFileFetchState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeFile(t, path, stateJSON)

	source, err := NewFile(FileConfig{StatePath: path})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	envelope, err := source.FetchState(context.Background())
	if err != nil {
		t.Fatalf("FetchState: %v", err)
	}
	if envelope.Game.CurrentWorld != 2 || len(envelope.Cluster.Pods) != 1 {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestFileFetchState_CBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	data, err := codec.Marshal(&cluster.Envelope{
		Game:    cluster.GameInfo{CurrentWorld: 3, CurrentLevel: 1},
		Cluster: cluster.State{Services: []cluster.Service{{Name: "web", Endpoints: 2}}},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	source, _ := NewFile(FileConfig{StatePath: path})
	envelope, err := source.FetchState(context.Background())
	if err != nil {
		t.Fatalf("FetchState: %v", err)
	}
	if envelope.Game.CurrentWorld != 3 || envelope.Cluster.Services[0].Endpoints != 2 {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestFileFetchDiagram_FromCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeFile(t, path, stateJSON)

	source, _ := NewFile(FileConfig{StatePath: path})
	snapshot, err := source.FetchDiagram(context.Background())
	if err != nil {
		t.Fatalf("FetchDiagram: %v", err)
	}
	if !strings.HasPrefix(snapshot.Title, "World 2 - Level 7: ") {
		t.Errorf("title = %q, want the world 2 level 7 template", snapshot.Title)
	}
}

func TestFileFetchDiagram_FromFile(t *testing.T) {
	directory := t.TempDir()
	statePath := filepath.Join(directory, "state.json")
	diagramPath := filepath.Join(directory, "diagram.jsonc")
	writeFile(t, statePath, stateJSON)
	writeFile(t, diagramPath, `{
		// hand-drawn
		"title": "Custom",
		"nodes": [{"id": "a", "type": "pod", "label": "A", "x": 1, "y": 2},],
		"connections": [],
	}`)

	source, _ := NewFile(FileConfig{StatePath: statePath, DiagramPath: diagramPath})
	snapshot, err := source.FetchDiagram(context.Background())
	if err != nil {
		t.Fatalf("FetchDiagram: %v", err)
	}
	if snapshot.Title != "Custom" || len(snapshot.Nodes) != 1 {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if paths := source.Paths(); len(paths) != 2 {
		t.Errorf("Paths() = %v", paths)
	}
}

func TestFileFetchState_Missing(t *testing.T) {
	source, _ := NewFile(FileConfig{StatePath: filepath.Join(t.TempDir(), "absent.json")})
	if _, err := source.FetchState(context.Background()); err == nil {
		t.Fatal("expected error for missing state file")
	}
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeFile(t, path, stateJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, path, stateJSON)
	testutil.RequireReceive(t, changes, 5*time.Second, "in-place write")

	envelope, err := ReadEnvelope(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEnvelope(path, envelope); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	testutil.RequireReceive(t, changes, 5*time.Second, "atomic rename")

	cancel()
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "state.json")
	writeFile(t, path, stateJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, filepath.Join(directory, "other.json"), "{}")
	testutil.RequireNoReceive(t, changes, 300*time.Millisecond, "sibling write")
}
