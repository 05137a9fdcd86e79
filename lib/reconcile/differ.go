// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"slices"
	"strings"

	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// HasStructuralChange reports whether current differs from previous in
// its node id set or its connection endpoint set. Order is irrelevant.
// Labels, positions, and other node attributes never count. A nil
// previous is always a change.
func HasStructuralChange(previous, current *diagram.Snapshot) bool {
	if previous == nil {
		return true
	}
	return nodeSignature(previous) != nodeSignature(current) ||
		connectionSignature(previous) != connectionSignature(current)
}

func nodeSignature(snapshot *diagram.Snapshot) string {
	if snapshot == nil {
		return ""
	}
	ids := make([]string, len(snapshot.Nodes))
	for index, node := range snapshot.Nodes {
		ids[index] = node.ID
	}
	slices.Sort(ids)
	return strings.Join(ids, ",")
}

func connectionSignature(snapshot *diagram.Snapshot) string {
	if snapshot == nil {
		return ""
	}
	keys := make([]string, len(snapshot.Connections))
	for index, connection := range snapshot.Connections {
		keys[index] = connection.Key()
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}
