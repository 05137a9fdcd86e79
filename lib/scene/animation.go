// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"math"
	"time"
)

// Timing holds every animation duration used by the scene. Durations
// are data, not timers: the scene records when each animation starts
// and callers sample progress by passing the current time.
type Timing struct {
	// Entrance is how long a node takes to appear after a full redraw.
	Entrance time.Duration

	// Stagger delays each node's entrance by its index times Stagger.
	Stagger time.Duration

	// PodStagger additionally delays each square of a pod group by its
	// position in the row.
	PodStagger time.Duration

	// Transition is the fade used for badges and labels appearing or
	// disappearing.
	Transition time.Duration

	// StatusTransition is the color change duration of a status-only
	// update.
	StatusTransition time.Duration

	// ConnectionDraw is the draw-in duration of a connection line.
	ConnectionDraw time.Duration

	// LabelDelay delays connection labels relative to their line.
	LabelDelay time.Duration

	// Fade is the duration of each whole-scene fade step of a full
	// redraw (out before clearing, in after drawing).
	Fade time.Duration

	// FadeFloor is the whole-scene opacity reached by the fade-out.
	FadeFloor float64
}

// DefaultTiming returns the standard durations.
func DefaultTiming() Timing {
	return Timing{
		Entrance:         400 * time.Millisecond,
		Stagger:          50 * time.Millisecond,
		PodStagger:       30 * time.Millisecond,
		Transition:       200 * time.Millisecond,
		StatusTransition: 300 * time.Millisecond,
		ConnectionDraw:   800 * time.Millisecond,
		LabelDelay:       300 * time.Millisecond,
		Fade:             150 * time.Millisecond,
		FadeFloor:        0.6,
	}
}

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(float64) float64

// Linear is the identity easing.
func Linear(progress float64) float64 { return progress }

// EaseCubicOut decelerates toward the end.
func EaseCubicOut(progress float64) float64 {
	inverse := 1 - progress
	return 1 - inverse*inverse*inverse
}

// EaseCubicInOut accelerates then decelerates.
func EaseCubicInOut(progress float64) float64 {
	if progress < 0.5 {
		return 4 * progress * progress * progress
	}
	return 1 - math.Pow(-2*progress+2, 3)/2
}

// Window is a one-shot animation interval. The zero Window is always
// complete.
type Window struct {
	Start    time.Time
	Duration time.Duration
	Ease     Easing
}

// NewWindow returns a window that starts delay after now.
func NewWindow(now time.Time, delay, duration time.Duration, ease Easing) Window {
	return Window{Start: now.Add(delay), Duration: duration, Ease: ease}
}

// Progress returns eased progress at now: 0 before Start, 1 at or
// after the end.
func (window Window) Progress(now time.Time) float64 {
	if window.Duration <= 0 {
		if now.Before(window.Start) {
			return 0
		}
		return 1
	}
	elapsed := now.Sub(window.Start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= window.Duration {
		return 1
	}
	linear := float64(elapsed) / float64(window.Duration)
	if window.Ease == nil {
		return linear
	}
	return window.Ease(linear)
}

// End returns the time the window completes.
func (window Window) End() time.Time {
	return window.Start.Add(window.Duration)
}

// Done reports whether the window has completed at now.
func (window Window) Done(now time.Time) bool {
	return !now.Before(window.End())
}
