// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import "fmt"

// Severity ranks a detected issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Issue is one problem attributed to a named resource.
type Issue struct {
	Kind     string
	Name     string
	Message  string
	Severity Severity
}

// String formats the issue for the status bar and tooltips.
func (issue Issue) String() string {
	return fmt.Sprintf("%s/%s: %s", issue.Kind, issue.Name, issue.Message)
}

// DetectIssues flattens the server-reported issue lists into one
// ordered list: pods, then services, then deployments, each in list
// order. Pod issues are high severity when the pod has Failed;
// deployment issues are high severity when no replica is ready.
func DetectIssues(state *State) []Issue {
	var issues []Issue

	for _, pod := range state.Pods {
		severity := SeverityMedium
		if pod.Status == PhaseFailed {
			severity = SeverityHigh
		}
		for _, message := range pod.Issues {
			issues = append(issues, Issue{Kind: "pod", Name: pod.Name, Message: message, Severity: severity})
		}
	}

	for _, service := range state.Services {
		for _, message := range service.Issues {
			issues = append(issues, Issue{Kind: "service", Name: service.Name, Message: message, Severity: SeverityMedium})
		}
	}

	for _, deployment := range state.Deployments {
		severity := SeverityMedium
		if deployment.ReadyReplicas == 0 {
			severity = SeverityHigh
		}
		for _, message := range deployment.Issues {
			issues = append(issues, Issue{Kind: "deployment", Name: deployment.Name, Message: message, Severity: severity})
		}
	}

	return issues
}

// CountHigh returns how many issues are high severity.
func CountHigh(issues []Issue) int {
	count := 0
	for _, issue := range issues {
		if issue.Severity == SeverityHigh {
			count++
		}
	}
	return count
}
