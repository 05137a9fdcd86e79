// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/clusterview/lib/codec"
	"github.com/bureau-foundation/clusterview/lib/levels"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// FileConfig configures a file source.
type FileConfig struct {
	// StatePath is a state envelope file: JSON, or CBOR when the name
	// ends in ".cbor".
	StatePath string

	// DiagramPath is an optional JSONC diagram file. When empty the
	// diagram is chosen from the level catalog by the progress in the
	// state file.
	DiagramPath string
}

// File reads state and diagrams from local files. Each fetch re-reads
// the file; pair it with Watch to refetch on change.
type File struct {
	statePath   string
	diagramPath string
}

// NewFile returns a file source.
func NewFile(config FileConfig) (*File, error) {
	if config.StatePath == "" {
		return nil, errors.New("source: StatePath is required")
	}
	return &File{statePath: config.StatePath, diagramPath: config.DiagramPath}, nil
}

// Paths returns the files the source reads, for watching.
func (source *File) Paths() []string {
	if source.diagramPath == "" {
		return []string{source.statePath}
	}
	return []string{source.statePath, source.diagramPath}
}

// FetchState reads and decodes the state file.
func (source *File) FetchState(ctx context.Context) (*cluster.Envelope, error) {
	envelope, err := ReadEnvelope(source.statePath)
	if err != nil {
		return nil, &FetchError{Endpoint: EndpointState, Err: err}
	}
	return envelope, nil
}

// FetchDiagram reads the diagram file, or picks the catalog template
// for the state file's progress.
func (source *File) FetchDiagram(ctx context.Context) (*diagram.Snapshot, error) {
	if source.diagramPath != "" {
		snapshot, err := levels.ReadFile(source.diagramPath)
		if err != nil {
			return nil, &FetchError{Endpoint: EndpointDiagram, Err: err}
		}
		return snapshot, nil
	}

	envelope, err := ReadEnvelope(source.statePath)
	if err != nil {
		return nil, &FetchError{Endpoint: EndpointDiagram, Err: err}
	}
	snapshot, err := levels.ForLevel(envelope.Game.CurrentWorld.Or(1), envelope.Game.CurrentLevel.Or(1))
	if err != nil {
		return nil, &FetchError{Endpoint: EndpointDiagram, Err: err}
	}
	return snapshot, nil
}

// ReadEnvelope reads a state envelope file. Files ending in ".cbor"
// are decoded as CBOR, everything else as JSON.
func ReadEnvelope(path string) (*cluster.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	contentType := codec.MediaTypeJSON
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		contentType = codec.MediaTypeCBOR
	}
	var envelope cluster.Envelope
	if err := codec.DecodeBody(contentType, data, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &envelope, nil
}

// WriteEnvelope writes a state envelope as indented JSON, replacing
// path atomically.
func WriteEnvelope(path string, envelope *cluster.Envelope) error {
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(temporary, path)
}
