// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireClosed], and [RequireNoReceive] wrap the
// select-with-timeout safety valve so that tests waiting on goroutines
// (stream readers, file watchers, the headless watcher) never hang and
// never call time.After directly. Logic under test takes a
// clock.Clock; these helpers are the only wall-clock waits.
//
// All helpers call t.Fatalf on failure.
package testutil
