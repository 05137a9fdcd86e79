// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
)

// FlashDuration is how long a node's outline glows after its status
// changes. The glow starts at 1.0 and decays linearly to 0.0.
const FlashDuration = 2 * time.Second

type flashEntry struct {
	ignition time.Time
	status   nodestatus.Status
}

// FlashTracker records recent status changes per node id so the
// canvas can outline changed nodes and the status bar can name the
// most recent one.
type FlashTracker struct {
	entries map[string]flashEntry
	latest  string
}

// NewFlashTracker creates an empty tracker.
func NewFlashTracker() *FlashTracker {
	return &FlashTracker{entries: make(map[string]flashEntry)}
}

// Ignite records that id changed to status at now. It restarts the
// decay if id was already glowing.
func (tracker *FlashTracker) Ignite(id string, status nodestatus.Status, now time.Time) {
	tracker.entries[id] = flashEntry{ignition: now, status: status}
	tracker.latest = id
}

// Heat returns the glow intensity for id: 1.0 at ignition, 0.0 once
// FlashDuration has passed or for ids never ignited.
func (tracker *FlashTracker) Heat(id string, now time.Time) float64 {
	entry, exists := tracker.entries[id]
	if !exists {
		return 0
	}
	elapsed := now.Sub(entry.ignition)
	if elapsed >= FlashDuration || elapsed < 0 {
		return 0
	}
	return 1 - float64(elapsed)/float64(FlashDuration)
}

// Latest returns the most recently ignited id and the status it
// changed to, while that id is still glowing.
func (tracker *FlashTracker) Latest(now time.Time) (string, nodestatus.Status, bool) {
	if tracker.latest == "" || tracker.Heat(tracker.latest, now) == 0 {
		return "", "", false
	}
	return tracker.latest, tracker.entries[tracker.latest].status, true
}

// Reset forgets every entry. Called when the scene is redrawn and the
// old ids no longer mean anything.
func (tracker *FlashTracker) Reset() {
	clear(tracker.entries)
	tracker.latest = ""
}

// HasHot reports whether any entry is still glowing, meaning the
// animation tick must keep running. Decayed entries are dropped.
func (tracker *FlashTracker) HasHot(now time.Time) bool {
	hot := false
	for id, entry := range tracker.entries {
		if now.Sub(entry.ignition) < FlashDuration {
			hot = true
			continue
		}
		delete(tracker.entries, id)
	}
	return hot
}
