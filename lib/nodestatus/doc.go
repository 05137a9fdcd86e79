// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package nodestatus derives the health [Status] of a diagram node from
// the latest cluster state.
//
// [Derive] is re-evaluated from scratch on every refresh. The scene
// stores the result per visual element but never feeds it back, so a
// status can always be recomputed from (node, state) alone.
//
// Rules by node type:
//
//   - pod, pod-group: unknown with no pods; error if any pod is not
//     Running, not ready, or has issues; healthy otherwise.
//   - service: unknown with no services; resolve by resource name (or
//     the first service); error with issues, warning with zero
//     endpoints, healthy otherwise.
//   - deployment: unknown with no deployments; resolve like services;
//     error with zero ready replicas, warning with fewer ready than
//     desired, healthy otherwise.
//   - everything else: healthy.
package nodestatus
