// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line plumbing shared by the clusterview
// subcommands: categorized errors with exit codes and hints, and the
// stderr and file log handlers.
package cli
