// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/clusterview/cmd/clusterview/cli"
	"github.com/bureau-foundation/clusterview/lib/config"
	"github.com/bureau-foundation/clusterview/lib/version"
)

// options holds the command-line flags. Flags left at their zero value
// do not override the config file.
type options struct {
	configPath  string
	baseURL     string
	stateFile   string
	diagramFile string
	streamURL   string
	cbor        bool
	logOutput   string
	listen      string
	addr        string
	verbose     bool
	noColor     bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("clusterview", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config file (default: $CLUSTERVIEW_CONFIG)")
	flagSet.StringVar(&opts.baseURL, "base-url", "", "state server root URL")
	flagSet.StringVar(&opts.stateFile, "state-file", "", "read state from this envelope file instead of a server")
	flagSet.StringVar(&opts.diagramFile, "diagram-file", "", "JSONC diagram file (default: level catalog)")
	flagSet.StringVar(&opts.streamURL, "stream-url", "", "WebSocket URL pushing state and diagram updates")
	flagSet.BoolVar(&opts.cbor, "cbor", false, "negotiate CBOR bodies with the state server")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "also write JSON log records to this file")
	flagSet.StringVar(&opts.listen, "metrics-listen", "", "serve Prometheus metrics on this address")
	flagSet.StringVar(&opts.addr, "addr", ":8080", "listen address for serve")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Bool("version", false, "print version and exit")
	return flagSet
}

func run(args []string) error {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%w", err).WithHint("Run 'clusterview --help' for usage.")
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		version.Print(os.Stdout, "clusterview")
		return nil
	}

	if opts.noColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	mode := ""
	positional := flagSet.Args()
	if len(positional) > 0 {
		mode = positional[0]
		positional = positional[1:]
	}
	if len(positional) > 0 {
		return cli.Validation("unexpected argument: %s", positional[0])
	}

	switch mode {
	case "version":
		version.Print(os.Stdout, "clusterview")
		return nil
	case "levels":
		return listLevels(os.Stdout)
	}

	cfg, err := loadConfig(&opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "":
		return runViewer(ctx, cfg, &opts)
	case "watch":
		return runWatch(ctx, cfg, &opts)
	case "serve":
		return runServe(ctx, cfg, &opts)
	default:
		return cli.Validation("unknown command %q", mode).
			WithHint("Commands are watch, serve, levels, and version. Run 'clusterview --help' for usage.")
	}
}

// loadConfig loads the config file, applies flag overrides, and
// validates the result.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cli.NotFound("config file: %w", err)
		}
		return nil, cli.Validation("config file: %w", err)
	}

	if opts.baseURL != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.BaseURL = opts.baseURL
	}
	if opts.stateFile != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.StateFile = opts.stateFile
	}
	if opts.diagramFile != "" {
		cfg.Source.DiagramFile = opts.diagramFile
	}
	if opts.streamURL != "" {
		cfg.Source.StreamURL = opts.streamURL
	}
	if opts.cbor {
		cfg.Source.CBOR = true
	}
	if opts.listen != "" {
		cfg.Metrics.Listen = opts.listen
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `clusterview: live diagram of a practice cluster.

Usage:
  clusterview [flags]           interactive viewer
  clusterview watch [flags]     headless reconcile loop, logging changes
  clusterview serve [flags]     serve fixture files as a state server
  clusterview levels            list the embedded level templates
  clusterview version

Examples:
  # View the local state server
  clusterview

  # View a remote server with push updates
  clusterview --base-url http://lab:8080 --stream-url ws://lab:8080/ws

  # Iterate on a level template against a fixture
  clusterview serve --state-file state.json --diagram-file level.jsonc &
  clusterview

In the viewer: +/- zoom, arrows or hjkl pan, 0 fits, tab cycles the
selection, / searches, r refreshes, q quits.

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
