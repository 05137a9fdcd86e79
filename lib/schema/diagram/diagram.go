// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagram

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// NodeType identifies the resource kind a node depicts. The set is
// open: unrecognized types are carried through and rendered with the
// default shape.
type NodeType string

const (
	TypePod           NodeType = "pod"
	TypePodGroup      NodeType = "pod-group"
	TypeDeployment    NodeType = "deployment"
	TypeService       NodeType = "service"
	TypeIngress       NodeType = "ingress"
	TypeConfigMap     NodeType = "configmap"
	TypeSecret        NodeType = "secret"
	TypeNetworkPolicy NodeType = "networkpolicy"
	TypeStatefulSet   NodeType = "statefulset"
	TypePVC           NodeType = "pvc"
	TypeReplicaSet    NodeType = "replicaset"
	TypeHPA           NodeType = "hpa"
	TypeRole          NodeType = "role"
	TypeNamespace     NodeType = "namespace"
)

// DefaultPodGroupCount is the number of squares drawn for a pod-group
// node that does not specify a count.
const DefaultPodGroupCount = 3

// Node is one element of the diagram. Positions are assigned by the
// diagram source and are immutable within a snapshot.
type Node struct {
	// ID is unique within a snapshot and is the node's identity
	// across snapshots: selection and visual elements are keyed by it.
	ID string `json:"id"`

	Type  NodeType `json:"type"`
	Label string   `json:"label"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`

	// Count is the number of repeated pod squares. Only meaningful for
	// pod-group nodes; see PodCount.
	Count int `json:"count,omitempty"`

	// ResourceName links the node to a named resource in the cluster
	// state. Empty means "the first resource of this kind".
	ResourceName string `json:"resource_name,omitempty"`

	// Parent is the id of the enclosing node, when the template models
	// containment (a container inside a pod). Informational only.
	Parent string `json:"parent,omitempty"`
}

// PodCount returns the number of squares to draw for a pod-group.
func (node Node) PodCount() int {
	if node.Count <= 0 {
		return DefaultPodGroupCount
	}
	return node.Count
}

// Connection is a directed edge between two nodes of the same
// snapshot. An endpoint that does not resolve is not an error; the
// edge is simply not drawn.
type Connection struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Key returns the "from-to" identity used by structural diffing.
func (connection Connection) Key() string {
	return connection.From + "-" + connection.To
}

// Touches reports whether id is either endpoint.
func (connection Connection) Touches(id string) bool {
	return connection.From == id || connection.To == id
}

// CheckPattern is a level check hint attached by the diagram source
// ({"type": "pod", "expected_status": "Running"}). The keys vary by
// level, so the pattern is kept as a generic map.
type CheckPattern map[string]any

// Snapshot is the complete node and edge description of the diagram
// at one point in time. Snapshots are replaced wholesale.
type Snapshot struct {
	Title       string       `json:"title"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`

	// ExpectedResources names the cluster state lists the level is
	// about ("pods", "services"). Display only.
	ExpectedResources []string `json:"expected_resources,omitempty"`

	CheckPatterns []CheckPattern `json:"check_patterns,omitempty"`
}

// Equal reports deep equality of two snapshots. Nil and empty slices
// compare equal, matching the JSON content they were decoded from.
func (snapshot *Snapshot) Equal(other *Snapshot) bool {
	if snapshot == nil || other == nil {
		return snapshot == other
	}
	return snapshot.Title == other.Title &&
		slices.Equal(snapshot.Nodes, other.Nodes) &&
		slices.Equal(snapshot.Connections, other.Connections) &&
		slices.Equal(snapshot.ExpectedResources, other.ExpectedResources) &&
		checkPatternsEqual(snapshot.CheckPatterns, other.CheckPatterns)
}

func checkPatternsEqual(left, right []CheckPattern) bool {
	if len(left) != len(right) {
		return false
	}
	for index := range left {
		if !reflect.DeepEqual(map[string]any(left[index]), map[string]any(right[index])) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. The store keeps clones so that a caller
// mutating a snapshot it handed over cannot corrupt diff state.
func (snapshot *Snapshot) Clone() *Snapshot {
	if snapshot == nil {
		return nil
	}
	clone := &Snapshot{
		Title:             snapshot.Title,
		Nodes:             slices.Clone(snapshot.Nodes),
		Connections:       slices.Clone(snapshot.Connections),
		ExpectedResources: slices.Clone(snapshot.ExpectedResources),
	}
	if snapshot.CheckPatterns != nil {
		clone.CheckPatterns = make([]CheckPattern, len(snapshot.CheckPatterns))
		for index, pattern := range snapshot.CheckPatterns {
			clone.CheckPatterns[index] = maps.Clone(pattern)
		}
	}
	return clone
}

// Node returns the first node with the given id.
func (snapshot *Snapshot) Node(id string) (Node, bool) {
	for _, node := range snapshot.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return Node{}, false
}

// Has reports whether a node with the given id exists.
func (snapshot *Snapshot) Has(id string) bool {
	_, found := snapshot.Node(id)
	return found
}

// UniqueNodes returns the nodes in order with later duplicates of an
// id removed, plus the ids that were duplicated.
func (snapshot *Snapshot) UniqueNodes() (nodes []Node, duplicates []string) {
	seen := make(map[string]bool, len(snapshot.Nodes))
	nodes = make([]Node, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		if seen[node.ID] {
			duplicates = append(duplicates, node.ID)
			continue
		}
		seen[node.ID] = true
		nodes = append(nodes, node)
	}
	return nodes, duplicates
}

// Validate reports structural problems: empty or duplicate node ids.
// Dangling connections are not reported; they are legal and skipped
// at render time.
func (snapshot *Snapshot) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(snapshot.Nodes))
	for index, node := range snapshot.Nodes {
		if node.ID == "" {
			errs = append(errs, fmt.Errorf("nodes[%d]: id is required", index))
			continue
		}
		if seen[node.ID] {
			errs = append(errs, fmt.Errorf("nodes[%d]: duplicate id %q", index, node.ID))
		}
		seen[node.ID] = true
	}
	return errors.Join(errs...)
}
