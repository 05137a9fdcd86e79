// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// clusterview draws a live diagram of a Kubernetes practice cluster in
// the terminal and keeps it in step with the state server.
//
// Three modes of operation:
//
// Viewer (default): a full-screen TUI. State is polled every few
// seconds and the level diagram less often; a changed diagram fades
// the canvas out, redraws it, and fades back in, while status-only
// changes recolor nodes in place.
//
// Watch (clusterview watch): the same reconciliation loop without a
// terminal UI, logging every redraw and status transition. Useful in
// CI and for checking a state server from a script.
//
// Serve (clusterview serve): serves a state file and diagram file as
// the state server's HTTP and WebSocket endpoints, pushing updates on
// every file change. Point a viewer at it to develop level templates
// without a cluster.
package main

import (
	"os"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
)

func main() {
	os.Exit(cli.Report(os.Stderr, run(os.Args[1:])))
}
