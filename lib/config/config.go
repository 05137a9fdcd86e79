// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceKind selects where cluster state and diagrams come from.
type SourceKind string

const (
	// SourceHTTP polls the state server's JSON (or CBOR) endpoints.
	SourceHTTP SourceKind = "http"

	// SourceFile reads local files and refetches when they change.
	SourceFile SourceKind = "file"
)

// Config is the viewer configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Animation AnimationConfig `yaml:"animation"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SourceConfig configures the state and diagram source.
type SourceConfig struct {
	// Kind is "http" or "file".
	Kind SourceKind `yaml:"kind"`

	// BaseURL is the state server root for the http source.
	// Default: http://localhost:8080
	BaseURL string `yaml:"base_url"`

	// StatePath and DiagramPath are the endpoint paths under BaseURL.
	StatePath   string `yaml:"state_path"`
	DiagramPath string `yaml:"diagram_path"`

	// StateFile is the state envelope JSON for the file source.
	StateFile string `yaml:"state_file"`

	// DiagramFile is an optional JSONC diagram for the file source.
	// When empty, the diagram comes from the embedded level catalog
	// using the progress in the state file.
	DiagramFile string `yaml:"diagram_file"`

	// StreamURL is an optional WebSocket URL pushing state and diagram
	// updates between polls.
	StreamURL string `yaml:"stream_url"`

	// Timeout bounds each fetch.
	Timeout time.Duration `yaml:"timeout"`

	// CBOR asks the http source to negotiate CBOR bodies. Servers that
	// only speak JSON keep working.
	CBOR bool `yaml:"cbor"`
}

// RefreshConfig sets the polling intervals.
type RefreshConfig struct {
	StateInterval   time.Duration `yaml:"state_interval"`
	DiagramInterval time.Duration `yaml:"diagram_interval"`
}

// CanvasConfig describes the logical drawing surface that node
// positions are expressed in, and the zoom range.
type CanvasConfig struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
}

// AnimationConfig sets the scene animation durations.
type AnimationConfig struct {
	Entrance         time.Duration `yaml:"entrance"`
	Transition       time.Duration `yaml:"transition"`
	StatusTransition time.Duration `yaml:"status_transition"`
	Fade             time.Duration `yaml:"fade"`
	ConnectionDraw   time.Duration `yaml:"connection_draw"`
	Stagger          time.Duration `yaml:"stagger"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address serving /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given, and
// the base that a file is loaded over.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:        SourceHTTP,
			BaseURL:     "http://localhost:8080",
			StatePath:   "/api/state",
			DiagramPath: "/api/level-diagram",
			Timeout:     10 * time.Second,
		},
		Refresh: RefreshConfig{
			StateInterval:   3 * time.Second,
			DiagramInterval: 30 * time.Second,
		},
		Canvas: CanvasConfig{
			Width:   900,
			Height:  650,
			MinZoom: 0.5,
			MaxZoom: 3,
		},
		Animation: AnimationConfig{
			Entrance:         400 * time.Millisecond,
			Transition:       200 * time.Millisecond,
			StatusTransition: 300 * time.Millisecond,
			Fade:             150 * time.Millisecond,
			ConnectionDraw:   800 * time.Millisecond,
			Stagger:          50 * time.Millisecond,
		},
	}
}

// Load loads the file named by CLUSTERVIEW_CONFIG. When the variable
// is unset, Load returns the defaults; a viewer pointed at a local
// state server needs no file.
func Load() (*Config, error) {
	path := os.Getenv("CLUSTERVIEW_CONFIG")
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads path over the defaults and expands ${VAR} and
// ${VAR:-default} references in URL and path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Source.BaseURL = expandVars(c.Source.BaseURL)
	c.Source.StreamURL = expandVars(c.Source.StreamURL)
	c.Source.StateFile = expandVars(c.Source.StateFile)
	c.Source.DiagramFile = expandVars(c.Source.DiagramFile)
	c.Metrics.Listen = expandVars(c.Metrics.Listen)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${NAME} with the environment value and
// ${NAME:-fallback} with the value or fallback when unset or empty.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case SourceHTTP:
		if err := validateURL(c.Source.BaseURL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("source.base_url: %w", err))
		}
	case SourceFile:
		if c.Source.StateFile == "" {
			errs = append(errs, errors.New("source.state_file is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourceHTTP, SourceFile, c.Source.Kind))
	}
	if c.Source.StreamURL != "" {
		if err := validateURL(c.Source.StreamURL, "ws", "wss"); err != nil {
			errs = append(errs, fmt.Errorf("source.stream_url: %w", err))
		}
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source.timeout must be positive"))
	}

	if c.Refresh.StateInterval <= 0 {
		errs = append(errs, errors.New("refresh.state_interval must be positive"))
	}
	if c.Refresh.DiagramInterval <= 0 {
		errs = append(errs, errors.New("refresh.diagram_interval must be positive"))
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, errors.New("canvas.width and canvas.height must be positive"))
	}
	if c.Canvas.MinZoom <= 0 || c.Canvas.MinZoom > c.Canvas.MaxZoom {
		errs = append(errs, fmt.Errorf("canvas zoom range [%v, %v] is invalid", c.Canvas.MinZoom, c.Canvas.MaxZoom))
	}

	for name, value := range map[string]time.Duration{
		"entrance":          c.Animation.Entrance,
		"transition":        c.Animation.Transition,
		"status_transition": c.Animation.StatusTransition,
		"fade":              c.Animation.Fade,
		"connection_draw":   c.Animation.ConnectionDraw,
		"stagger":           c.Animation.Stagger,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("animation.%s must not be negative", name))
		}
	}

	return errors.Join(errs...)
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme && parsed.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %v URL", raw, schemes)
}
