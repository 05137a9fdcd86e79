// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package source fetches cluster state envelopes and diagram snapshots.
//
// Sources are adapters only: they turn a transport (HTTP endpoints,
// local files, a WebSocket push stream) into decoded values and carry
// no reconciliation logic. A failed fetch returns an error and nothing
// else; the caller keeps showing the last good data.
package source

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// Source provides cluster state and the diagram to draw it on.
type Source interface {
	// FetchState returns the current state envelope.
	FetchState(ctx context.Context) (*cluster.Envelope, error)

	// FetchDiagram returns the current diagram snapshot.
	FetchDiagram(ctx context.Context) (*diagram.Snapshot, error)
}

// Endpoint names used in errors, logs, and metrics labels.
const (
	EndpointState   = "state"
	EndpointDiagram = "diagram"
)

// FetchError describes a failed fetch. StatusCode is zero when the
// failure happened before a response arrived or while decoding one.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UpdateKind tags a pushed update.
type UpdateKind string

const (
	UpdateState   UpdateKind = "state"
	UpdateDiagram UpdateKind = "diagram"
)

// Update is one pushed message: a state envelope or a diagram,
// selected by Kind.
type Update struct {
	Kind    UpdateKind        `json:"kind"`
	State   *cluster.Envelope `json:"state,omitempty"`
	Diagram *diagram.Snapshot `json:"diagram,omitempty"`
}

// Validate reports whether the update carries the payload its kind
// names. Diagram content is not checked here; duplicate ids are
// resolved by the reconciler.
func (update *Update) Validate() error {
	switch update.Kind {
	case UpdateState:
		if update.State == nil {
			return fmt.Errorf("state update without state")
		}
	case UpdateDiagram:
		if update.Diagram == nil {
			return fmt.Errorf("diagram update without diagram")
		}
	default:
		return fmt.Errorf("unknown update kind %q", update.Kind)
	}
	return nil
}
