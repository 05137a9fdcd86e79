// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import "github.com/bureau-foundation/clusterview/lib/schema/diagram"

// Shape is the outline drawn for a node.
type Shape int

const (
	// ShapeCircle is the default for every type not listed below.
	ShapeCircle Shape = iota

	// ShapeRect is used for box-like resources.
	ShapeRect

	// ShapeCylinder is used for storage-like resources.
	ShapeCylinder

	// ShapePodSquare is one square of a pod-group row.
	ShapePodSquare
)

func (shape Shape) String() string {
	switch shape {
	case ShapeRect:
		return "rect"
	case ShapeCylinder:
		return "cylinder"
	case ShapePodSquare:
		return "pod-square"
	default:
		return "circle"
	}
}

// Geometry in canvas units.
const (
	// PodSpacing is the horizontal center distance between squares of
	// a pod group.
	PodSpacing = 45.0

	// LabelLimit is the longest label drawn without truncation.
	LabelLimit = 20

	// BadgeOffsetX and BadgeOffsetY place the status badge relative
	// to the node center (upper right).
	BadgeOffsetX = 30.0
	BadgeOffsetY = -25.0
)

// ShapeFor returns the outline for a node type.
func ShapeFor(nodeType diagram.NodeType) Shape {
	switch nodeType {
	case diagram.TypeStatefulSet, diagram.TypePVC:
		return ShapeCylinder
	case diagram.TypeDeployment, diagram.TypeService, diagram.TypeConfigMap, diagram.TypeSecret:
		return ShapeRect
	case diagram.TypePodGroup:
		return ShapePodSquare
	default:
		return ShapeCircle
	}
}

// icons maps node types to the short resource names kubectl uses.
var icons = map[diagram.NodeType]string{
	diagram.TypePod:           "po",
	diagram.TypePodGroup:      "po",
	diagram.TypeDeployment:    "deploy",
	diagram.TypeService:       "svc",
	diagram.TypeIngress:       "ing",
	diagram.TypeConfigMap:     "cm",
	diagram.TypeSecret:        "secret",
	diagram.TypeNetworkPolicy: "netpol",
	diagram.TypeStatefulSet:   "sts",
	diagram.TypePVC:           "pvc",
	diagram.TypeReplicaSet:    "rs",
	diagram.TypeHPA:           "hpa",
	diagram.TypeRole:          "role",
	diagram.TypeNamespace:     "ns",
}

// Icon returns the glyph text drawn inside a node. Unrecognized types
// fall back to the pod icon.
func Icon(nodeType diagram.NodeType) string {
	if icon, ok := icons[nodeType]; ok {
		return icon
	}
	return icons[diagram.TypePod]
}

// TruncateLabel shortens label to at most limit runes, replacing the
// tail with "..." when it does not fit.
func TruncateLabel(label string, limit int) string {
	runes := []rune(label)
	if len(runes) <= limit {
		return label
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// PodSquareCenters returns the x coordinates of a pod group's squares:
// count squares PodSpacing apart, centered on x.
func PodSquareCenters(x float64, count int) []float64 {
	start := x - float64(count-1)*PodSpacing/2
	centers := make([]float64, count)
	for index := range centers {
		centers[index] = start + float64(index)*PodSpacing
	}
	return centers
}
