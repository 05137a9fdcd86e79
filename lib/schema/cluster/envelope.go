// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bureau-foundation/clusterview/lib/codec"
)

// Envelope is the payload of the state endpoint: the cluster snapshot
// wrapped with the game progress block and a server timestamp.
type Envelope struct {
	Game      GameInfo   `json:"game"`
	Cluster   State      `json:"cluster"`
	Timestamp UnixSecond `json:"timestamp"`
}

// GameInfo is the game progress metadata. It is displayed in the title
// region and selects the level diagram template; it never affects node
// status.
type GameInfo struct {
	CurrentWorld Ordinal `json:"current_world"`
	CurrentLevel Ordinal `json:"current_level"`
	TotalXP      int     `json:"total_xp"`
	LevelName    string  `json:"level_name,omitempty"`
}

// WorldLabel returns the display label for the current world,
// defaulting to "World 1" when the server did not report one.
func (game GameInfo) WorldLabel() string {
	return game.CurrentWorld.Label("World")
}

// LevelLabel returns the display label for the current level,
// defaulting to "Level 1".
func (game GameInfo) LevelLabel() string {
	return game.CurrentLevel.Label("Level")
}

// Ordinal is a 1-based world or level number. State servers report it
// either as a JSON number (3) or as a label ("World 3"); both decode
// to the same value. Zero means absent.
type Ordinal int

// Label formats the ordinal as "<prefix> <n>", treating zero as 1.
func (ordinal Ordinal) Label(prefix string) string {
	number := int(ordinal)
	if number <= 0 {
		number = 1
	}
	return fmt.Sprintf("%s %d", prefix, number)
}

// Or returns the ordinal, or fallback when it is zero.
func (ordinal Ordinal) Or(fallback int) int {
	if ordinal <= 0 {
		return fallback
	}
	return int(ordinal)
}

// UnmarshalJSON accepts a number, a numeric string, or a label whose
// trailing word is numeric. Anything else decodes to zero rather than
// failing the whole envelope.
func (ordinal *Ordinal) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ordinal = ordinalFrom(raw)
	return nil
}

// UnmarshalCBOR mirrors UnmarshalJSON for CBOR-encoded envelopes.
func (ordinal *Ordinal) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ordinal = ordinalFrom(raw)
	return nil
}

func ordinalFrom(raw any) Ordinal {
	switch value := raw.(type) {
	case float64:
		return Ordinal(value)
	case int64:
		return Ordinal(value)
	case uint64:
		return Ordinal(value)
	case string:
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return 0
		}
		number, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return 0
		}
		return Ordinal(number)
	default:
		return 0
	}
}

// UnixSecond is a server timestamp in seconds since the epoch. The
// reference server emits it as a decimal string; numbers are accepted
// too. Unparseable values decode to zero.
type UnixSecond int64

// UnmarshalJSON accepts "1700000000" or 1700000000.
func (second *UnixSecond) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*second = 0
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*second = 0
		return nil
	}
	*second = UnixSecond(value)
	return nil
}
