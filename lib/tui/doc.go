// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal building blocks shared by the
// diagram viewer: the color theme, Lab-space color blending for
// animated transitions, change flash tracking, and ANSI-aware overlay
// splicing for tooltips.
package tui
