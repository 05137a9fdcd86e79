// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"time"

	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// Store holds the latest accepted cluster state and diagram, plus the
// diagram most recently committed to the scene. Every set replaces the
// held value wholesale.
type Store struct {
	state        *cluster.State
	game         cluster.GameInfo
	stateUpdated time.Time

	diagram  *diagram.Snapshot
	previous *diagram.Snapshot
}

// SetState replaces the held cluster state.
func (store *Store) SetState(state *cluster.State, now time.Time) {
	store.state = state
	store.stateUpdated = now
}

// SetGame replaces the held game progress.
func (store *Store) SetGame(game cluster.GameInfo) {
	store.game = game
}

// SetDiagram replaces the held diagram with a private copy of snapshot
// and reports true, or reports false when snapshot is deeply equal to
// the held diagram and leaves the store untouched.
func (store *Store) SetDiagram(snapshot *diagram.Snapshot) bool {
	if snapshot == nil || store.diagram.Equal(snapshot) {
		return false
	}
	store.diagram = snapshot.Clone()
	return true
}

// MarkRendered records snapshot as the diagram the scene reflects.
func (store *Store) MarkRendered(snapshot *diagram.Snapshot) {
	store.previous = snapshot
}

// State returns the held cluster state, or nil before the first one.
func (store *Store) State() *cluster.State { return store.state }

// StateUpdated returns when the held state was accepted.
func (store *Store) StateUpdated() time.Time { return store.stateUpdated }

// Game returns the held game progress.
func (store *Store) Game() cluster.GameInfo { return store.game }

// Diagram returns the held diagram, or nil before the first one.
func (store *Store) Diagram() *diagram.Snapshot { return store.diagram }

// Previous returns the diagram last committed to the scene, or nil.
func (store *Store) Previous() *diagram.Snapshot { return store.previous }
