// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagramui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/clusterview/lib/scene"
)

var initAlgo sync.Once

// fuzzyScore scores text against a lowercase pattern with fzf's V2
// algorithm, case-insensitively. A negative score means no match.
func fuzzyScore(text string, pattern []rune, slab *util.Slab) int {
	initAlgo.Do(func() { algo.Init("default") })
	chars := util.ToChars([]byte(text))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
	if result.Start < 0 {
		return -1
	}
	return result.Score
}

// bestMatch returns the node whose label or id best matches query.
// Ties go to the node drawn first. Returns false for an empty query or
// when nothing matches.
func bestMatch(nodes []*scene.NodeElement, query string, slab *util.Slab) (*scene.NodeElement, bool) {
	pattern := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(pattern) == 0 {
		return nil, false
	}
	var best *scene.NodeElement
	bestScore := -1
	for _, node := range nodes {
		score := max(
			fuzzyScore(node.FullLabel, pattern, slab),
			fuzzyScore(node.ID, pattern, slab),
		)
		if score > bestScore {
			best, bestScore = node, score
		}
	}
	if best == nil || bestScore < 0 {
		return nil, false
	}
	return best, true
}
