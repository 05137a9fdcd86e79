// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

// Pod phase values reported by the state endpoint. Only PhaseRunning
// matters for node status derivation; the rest feed the per-pod
// status class shown in tooltips.
const (
	PhaseRunning   = "Running"
	PhasePending   = "Pending"
	PhaseSucceeded = "Succeeded"
	PhaseFailed    = "Failed"
	PhaseUnknown   = "Unknown"

	// Waiting reasons that some servers report in place of the phase.
	ReasonCrashLoopBackOff = "CrashLoopBackOff"
	ReasonImagePullBackOff = "ImagePullBackOff"
)

// State is one snapshot of the observed cluster namespace. It is
// replaced wholesale on every successful poll and never merged.
//
// Every list may be absent on the wire; absent lists decode to nil and
// are treated as empty by every consumer.
type State struct {
	Pods            []Pod           `json:"pods"`
	Services        []Service       `json:"services"`
	Deployments     []Deployment    `json:"deployments"`
	ConfigMaps      []NamedResource `json:"configmaps"`
	Secrets         []NamedResource `json:"secrets"`
	Ingresses       []NamedResource `json:"ingresses"`
	NetworkPolicies []NamedResource `json:"networkpolicies"`
	PVCs            []NamedResource `json:"pvcs"`
	StatefulSets    []NamedResource `json:"statefulsets"`

	// Error is set by the state server when the cluster query itself
	// failed. The lists may then be partially populated.
	Error string `json:"error,omitempty"`
}

// Pod is the summarized view of one pod.
type Pod struct {
	Name string `json:"name"`

	// Status is the pod phase ("Running", "Pending", "Failed", ...).
	Status string `json:"status"`

	// Ready mirrors the pod's Ready condition.
	Ready bool `json:"ready"`

	// Restarts is the sum of restart counts across containers.
	Restarts int `json:"restarts"`

	// Conditions lists the condition types currently True.
	Conditions []string `json:"conditions,omitempty"`

	Labels map[string]string `json:"labels,omitempty"`

	// Issues are human-readable problems detected server-side
	// ("Pod not ready", "Container waiting: CrashLoopBackOff").
	Issues []string `json:"issues,omitempty"`
}

// StatusClass buckets the pod into a display class. This is a
// presentation helper for tooltips; node status derivation uses the
// stricter rules in lib/nodestatus.
func (pod Pod) StatusClass() string {
	switch {
	case pod.Status == PhaseRunning && pod.Ready:
		return "healthy"
	case pod.Status == PhasePending:
		return "warning"
	case pod.Status == PhaseFailed,
		pod.Status == ReasonCrashLoopBackOff,
		pod.Status == ReasonImagePullBackOff:
		return "error"
	default:
		return "unknown"
	}
}

// Service is the summarized view of one service.
type Service struct {
	Name      string            `json:"name"`
	Type      string            `json:"type,omitempty"`
	ClusterIP string            `json:"clusterIP,omitempty"`
	Ports     []ServicePort     `json:"ports,omitempty"`
	Selector  map[string]string `json:"selector,omitempty"`

	// Endpoints is the number of ready endpoint addresses.
	Endpoints int `json:"endpoints"`

	Issues []string `json:"issues,omitempty"`
}

// ServicePort is one port of a service. TargetPort may be a number or
// a named port, so it is kept untyped.
type ServicePort struct {
	Name       string `json:"name,omitempty"`
	Protocol   string `json:"protocol,omitempty"`
	Port       int    `json:"port"`
	TargetPort any    `json:"targetPort,omitempty"`
}

// Deployment is the summarized view of one deployment.
type Deployment struct {
	Name              string            `json:"name"`
	Replicas          int               `json:"replicas"`
	ReadyReplicas     int               `json:"ready_replicas"`
	AvailableReplicas int               `json:"available_replicas"`
	Labels            map[string]string `json:"labels,omitempty"`
	Issues            []string          `json:"issues,omitempty"`
}

// NamedResource is a resource the state endpoint reports by name only.
type NamedResource struct {
	Name string `json:"name"`
}

// FindService resolves a service reference. An empty name selects the
// first service; otherwise the service with that exact name. Returns
// false when nothing resolves.
func (state *State) FindService(name string) (Service, bool) {
	for _, service := range state.Services {
		if name == "" || service.Name == name {
			return service, true
		}
	}
	return Service{}, false
}

// FindDeployment resolves a deployment reference the same way
// FindService does.
func (state *State) FindDeployment(name string) (Deployment, bool) {
	for _, deployment := range state.Deployments {
		if name == "" || deployment.Name == name {
			return deployment, true
		}
	}
	return Deployment{}, false
}

// ResourceCount returns the total number of resources across all
// lists.
func (state *State) ResourceCount() int {
	return len(state.Pods) + len(state.Services) + len(state.Deployments) +
		len(state.ConfigMaps) + len(state.Secrets) + len(state.Ingresses) +
		len(state.NetworkPolicies) + len(state.PVCs) + len(state.StatefulSets)
}
