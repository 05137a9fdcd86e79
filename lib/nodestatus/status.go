// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package nodestatus

import (
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// Status is the health of a diagram node.
type Status string

const (
	Healthy Status = "healthy"
	Warning Status = "warning"
	Error   Status = "error"
	Unknown Status = "unknown"
)

// All lists the statuses in severity order, worst last. Metrics and
// summaries iterate it for a stable label order.
var All = []Status{Healthy, Unknown, Warning, Error}

// NeedsBadge reports whether a node in this status carries a status
// indicator badge. Only warning and error are flagged; unknown is
// already conveyed by the gray fill.
func (status Status) NeedsBadge() bool {
	return status == Warning || status == Error
}

// Derive maps a node and the current cluster state to a status. It is
// a pure function of its inputs: neither is modified and nothing is
// cached. A nil state means no state has been fetched yet.
//
// Only pods, pod groups, services, and deployments are tracked. Every
// other node type is healthy unconditionally.
func Derive(node diagram.Node, state *cluster.State) Status {
	if state == nil {
		return Unknown
	}
	switch node.Type {
	case diagram.TypePod, diagram.TypePodGroup:
		return derivePods(state.Pods)
	case diagram.TypeService:
		return deriveService(node.ResourceName, state)
	case diagram.TypeDeployment:
		return deriveDeployment(node.ResourceName, state)
	default:
		return Healthy
	}
}

// derivePods treats the namespace's pods as one population. A pod that
// is not Running, not ready, or carries any issue fails the whole
// population; there is no warning tier for pods, so a pod that is
// still starting counts the same as a crashed one.
func derivePods(pods []cluster.Pod) Status {
	if len(pods) == 0 {
		return Unknown
	}
	for _, pod := range pods {
		if pod.Status != cluster.PhaseRunning || !pod.Ready || len(pod.Issues) > 0 {
			return Error
		}
	}
	return Healthy
}

func deriveService(resourceName string, state *cluster.State) Status {
	if len(state.Services) == 0 {
		return Unknown
	}
	service, found := state.FindService(resourceName)
	if !found {
		return Healthy
	}
	if len(service.Issues) > 0 {
		return Error
	}
	if service.Endpoints == 0 {
		return Warning
	}
	return Healthy
}

func deriveDeployment(resourceName string, state *cluster.State) Status {
	if len(state.Deployments) == 0 {
		return Unknown
	}
	deployment, found := state.FindDeployment(resourceName)
	if !found {
		return Healthy
	}
	if deployment.ReadyReplicas == 0 {
		return Error
	}
	if deployment.ReadyReplicas < deployment.Replicas {
		return Warning
	}
	return Healthy
}

// Counts tallies the derived status of every node in a snapshot.
func Counts(nodes []diagram.Node, state *cluster.State) map[Status]int {
	counts := make(map[Status]int, len(All))
	for _, node := range nodes {
		counts[Derive(node, state)]++
	}
	return counts
}
