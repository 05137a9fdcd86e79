// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package levels provides the embedded catalog of diagram templates,
// one per stage of game progress, and the JSONC parser shared with
// on-disk diagram files.
//
// Templates are JSONC (JSON with comments and trailing commas) in the
// same shape the diagram endpoint serves. Titles carry {world} and
// {level} placeholders that ForLevel fills in.
package levels

import (
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

//go:embed templates/*.jsonc
var templateFiles embed.FS

// Template names, one per embedded file.
const (
	PodBasics           = "pod-basics"
	DeploymentsReplicas = "deployments-replicas"
	ServicesLabels      = "services-labels"
	Scaling             = "scaling"
	Networking          = "networking"
	Storage             = "storage"
	ChaosFinale         = "chaos-finale"
	RBAC                = "rbac"
	Default             = "default"
)

// FinaleLevel is the level that selects the finale template in the
// last world.
const FinaleLevel = 50

// Template is an embedded diagram template.
type Template struct {
	// Name is the filename without extension.
	Name string

	// Snapshot is the parsed template with title placeholders intact.
	Snapshot diagram.Snapshot

	// SourceHash is the BLAKE3 hex digest of the raw JSONC source.
	SourceHash string
}

// NameFor returns the template name for the given progress.
func NameFor(world, level int) string {
	switch world {
	case 1:
		switch {
		case level <= 5:
			return PodBasics
		case level <= 8:
			return DeploymentsReplicas
		default:
			return ServicesLabels
		}
	case 2:
		return Scaling
	case 3:
		return Networking
	case 4:
		return Storage
	case 5:
		if level == FinaleLevel {
			return ChaosFinale
		}
		return RBAC
	default:
		return Default
	}
}

// ForLevel returns a fresh copy of the template for the given progress
// with its title expanded.
func ForLevel(world, level int) (*diagram.Snapshot, error) {
	template, err := Lookup(NameFor(world, level))
	if err != nil {
		return nil, err
	}
	snapshot := template.Snapshot.Clone()
	snapshot.Title = strings.NewReplacer(
		"{world}", strconv.Itoa(world),
		"{level}", strconv.Itoa(level),
	).Replace(snapshot.Title)
	return snapshot, nil
}

// Lookup returns the embedded template with the given name.
func Lookup(name string) (*Template, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	for index := range templates {
		if templates[index].Name == name {
			return &templates[index], nil
		}
	}
	return nil, fmt.Errorf("no diagram template named %q", name)
}

// Templates returns every embedded template, sorted by name. An error
// means the embedded content itself is broken.
func Templates() ([]Template, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return append([]Template(nil), templates...), nil
}

var loadTemplates = sync.OnceValues(func() ([]Template, error) {
	entries, err := templateFiles.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("reading embedded template directory: %w", err)
	}

	var templates []Template
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonc" {
			continue
		}
		path := "templates/" + entry.Name()
		data, err := templateFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading embedded template %s: %w", path, err)
		}
		snapshot, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded template %s: %w", path, err)
		}
		hash := blake3.Sum256(data)
		templates = append(templates, Template{
			Name:       strings.TrimSuffix(entry.Name(), ".jsonc"),
			Snapshot:   *snapshot,
			SourceHash: hex.EncodeToString(hash[:]),
		})
	}
	return templates, nil
})

// Parse strips JSONC comments and trailing commas from data, decodes
// the diagram, and validates its node ids.
func Parse(data []byte) (*diagram.Snapshot, error) {
	var snapshot diagram.Snapshot
	if err := json.Unmarshal(jsonc.ToJSON(data), &snapshot); err != nil {
		return nil, fmt.Errorf("parsing diagram: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid diagram: %w", err)
	}
	return &snapshot, nil
}

// ReadFile reads and parses a JSONC diagram file.
func ReadFile(path string) (*diagram.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	snapshot, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}
