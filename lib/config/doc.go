// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the clusterview YAML configuration.
//
// A file is named by the CLUSTERVIEW_CONFIG environment variable (via
// [Load]) or a --config flag (via [LoadFile]); there is no discovery.
// File values are layered over [Default]. Command-line flags then
// override individual fields.
//
// After loading, ${VAR} and ${VAR:-default} references in the URL and
// path fields are expanded from the environment. Durations use Go
// syntax ("3s", "150ms").
package config
