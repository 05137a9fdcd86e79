// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cluster defines the wire types of the state endpoint: the
// summarized cluster snapshot ([State]) and the [Envelope] that wraps
// it with game progress ([GameInfo]) and a server timestamp.
//
// The types decode from JSON or CBOR (the CBOR codec falls back to the
// json struct tags). Decoding is lenient: absent lists
// are empty, ordinals accept numbers or labels, and timestamps accept
// strings or numbers. A malformed optional field degrades to its zero
// value instead of rejecting the snapshot, so a partially broken server
// response still renders.
//
// [DetectIssues] flattens per-resource issue strings into a severity
// ranked list for display. Node health is not derived here; see
// lib/nodestatus.
package cluster
