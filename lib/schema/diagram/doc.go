// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diagram defines the diagram description served by the
// level-diagram endpoint: a titled [Snapshot] of positioned [Node]
// values and directed [Connection] edges.
//
// A snapshot is a value: consumers compare snapshots with
// [Snapshot.Equal] to suppress no-op refreshes, and keep private
// copies with [Snapshot.Clone]. Node ids are the identity of a node
// across snapshots.
package diagram
