// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"encoding/json"
	"testing"

	"github.com/bureau-foundation/clusterview/lib/codec"
)

const referencePayload = `{
	"game": {"current_world": 1, "current_level": 7, "total_xp": 350},
	"cluster": {
		"pods": [
			{"name": "web-1", "status": "Running", "ready": true, "restarts": 0, "conditions": ["Ready"], "labels": {"app": "web"}, "issues": []},
			{"name": "web-2", "status": "Pending", "ready": false, "restarts": 2, "issues": ["Container restarted 2 times", "Pod not ready"]}
		],
		"services": [
			{"name": "web", "type": "ClusterIP", "clusterIP": "10.0.0.1", "ports": [{"port": 80, "targetPort": "http"}], "selector": {"app": "web"}, "endpoints": 1, "issues": []}
		],
		"deployments": [
			{"name": "web", "replicas": 2, "ready_replicas": 1, "available_replicas": 1, "issues": ["Only 1/2 replicas ready"]}
		],
		"configmaps": [{"name": "settings"}]
	},
	"timestamp": "1760000000"
}`

func TestEnvelopeDecode(t *testing.T) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(referencePayload), &envelope); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if envelope.Game.CurrentWorld != 1 || envelope.Game.CurrentLevel != 7 || envelope.Game.TotalXP != 350 {
		t.Errorf("Game = %+v", envelope.Game)
	}
	if envelope.Timestamp != 1760000000 {
		t.Errorf("Timestamp = %d, want 1760000000", envelope.Timestamp)
	}
	if len(envelope.Cluster.Pods) != 2 || len(envelope.Cluster.Services) != 1 {
		t.Fatalf("Cluster = %+v", envelope.Cluster)
	}
	if envelope.Cluster.Secrets != nil {
		t.Errorf("absent secrets list decoded as %v, want nil", envelope.Cluster.Secrets)
	}
	if got := envelope.Cluster.ResourceCount(); got != 5 {
		t.Errorf("ResourceCount() = %d, want 5", got)
	}
}

func TestEnvelopeDecodeCBOR(t *testing.T) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(referencePayload), &envelope); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	data, err := codec.Marshal(envelope)
	if err != nil {
		t.Fatalf("codec.Marshal: %v", err)
	}
	var decoded Envelope
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("codec.Unmarshal: %v", err)
	}
	if decoded.Game.CurrentLevel != 7 || decoded.Timestamp != 1760000000 {
		t.Errorf("decoded Game = %+v, Timestamp = %d", decoded.Game, decoded.Timestamp)
	}
	if len(decoded.Cluster.Deployments) != 1 || decoded.Cluster.Deployments[0].ReadyReplicas != 1 {
		t.Errorf("decoded deployments = %+v", decoded.Cluster.Deployments)
	}
}

func TestOrdinalAcceptsLabels(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Ordinal
	}{
		{"number", `3`, 3},
		{"numeric string", `"4"`, 4},
		{"label", `"World 5"`, 5},
		{"unparseable label", `"Finale"`, 0},
		{"null", `null`, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ordinal Ordinal
			if err := json.Unmarshal([]byte(test.payload), &ordinal); err != nil {
				t.Fatalf("Unmarshal(%s): %v", test.payload, err)
			}
			if ordinal != test.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", test.payload, ordinal, test.want)
			}
		})
	}
}

func TestGameLabels(t *testing.T) {
	var game GameInfo
	if got := game.WorldLabel(); got != "World 1" {
		t.Errorf("WorldLabel() of empty game = %q, want World 1", got)
	}
	game.CurrentLevel = 12
	if got := game.LevelLabel(); got != "Level 12" {
		t.Errorf("LevelLabel() = %q, want Level 12", got)
	}
	if got := game.CurrentWorld.Or(1); got != 1 {
		t.Errorf("Or(1) of absent world = %d, want 1", got)
	}
}

func TestUnixSecondLenient(t *testing.T) {
	for payload, want := range map[string]UnixSecond{
		`"1700000000"`: 1700000000,
		`1700000001`:   1700000001,
		`"garbage"`:    0,
		`null`:         0,
	} {
		var second UnixSecond
		if err := json.Unmarshal([]byte(payload), &second); err != nil {
			t.Errorf("Unmarshal(%s): %v", payload, err)
			continue
		}
		if second != want {
			t.Errorf("Unmarshal(%s) = %d, want %d", payload, second, want)
		}
	}
}

func TestFindServiceResolution(t *testing.T) {
	state := &State{Services: []Service{{Name: "frontend"}, {Name: "backend"}}}

	if service, ok := state.FindService(""); !ok || service.Name != "frontend" {
		t.Errorf("FindService(\"\") = %+v, %v; want frontend", service, ok)
	}
	if service, ok := state.FindService("backend"); !ok || service.Name != "backend" {
		t.Errorf("FindService(backend) = %+v, %v", service, ok)
	}
	if _, ok := state.FindService("missing"); ok {
		t.Error("FindService(missing) resolved")
	}
	if _, ok := (&State{}).FindDeployment(""); ok {
		t.Error("FindDeployment on an empty list resolved")
	}
}

func TestPodStatusClass(t *testing.T) {
	tests := []struct {
		pod  Pod
		want string
	}{
		{Pod{Status: PhaseRunning, Ready: true}, "healthy"},
		{Pod{Status: PhaseRunning, Ready: false}, "unknown"},
		{Pod{Status: PhasePending}, "warning"},
		{Pod{Status: PhaseFailed}, "error"},
		{Pod{Status: ReasonCrashLoopBackOff}, "error"},
		{Pod{Status: ReasonImagePullBackOff}, "error"},
		{Pod{Status: PhaseSucceeded}, "unknown"},
	}
	for _, test := range tests {
		if got := test.pod.StatusClass(); got != test.want {
			t.Errorf("StatusClass(%s, ready=%v) = %q, want %q", test.pod.Status, test.pod.Ready, got, test.want)
		}
	}
}

func TestDetectIssuesSeverity(t *testing.T) {
	state := &State{
		Pods: []Pod{
			{Name: "crashed", Status: PhaseFailed, Issues: []string{"Pod in Failed state"}},
			{Name: "starting", Status: PhasePending, Issues: []string{"Pod not ready"}},
			{Name: "fine", Status: PhaseRunning, Ready: true},
		},
		Services: []Service{{Name: "web", Issues: []string{"No endpoints - selector might not match any pods"}}},
		Deployments: []Deployment{
			{Name: "down", Replicas: 2, ReadyReplicas: 0, Issues: []string{"Only 0/2 replicas ready"}},
			{Name: "partial", Replicas: 2, ReadyReplicas: 1, Issues: []string{"Only 1/2 replicas ready"}},
		},
	}

	issues := DetectIssues(state)
	want := []struct {
		name     string
		severity Severity
	}{
		{"crashed", SeverityHigh},
		{"starting", SeverityMedium},
		{"web", SeverityMedium},
		{"down", SeverityHigh},
		{"partial", SeverityMedium},
	}
	if len(issues) != len(want) {
		t.Fatalf("DetectIssues returned %d issues, want %d: %v", len(issues), len(want), issues)
	}
	for index, expected := range want {
		if issues[index].Name != expected.name || issues[index].Severity != expected.severity {
			t.Errorf("issues[%d] = %+v, want %s/%s", index, issues[index], expected.name, expected.severity)
		}
	}
	if got := CountHigh(issues); got != 2 {
		t.Errorf("CountHigh() = %d, want 2", got)
	}
	if got := issues[0].String(); got != "pod/crashed: Pod in Failed state" {
		t.Errorf("String() = %q", got)
	}
}
