// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToolError_ErrorWithHint(t *testing.T) {
	err := Validation("unknown subcommand %q", "serv").
		WithHint("Run 'clusterview --help' for usage.")

	want := "unknown subcommand \"serv\"\n\nRun 'clusterview --help' for usage."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestToolError_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", NotFound("no state file").WithHint("pass --state-file"))

	var toolErr *ToolError
	if !errors.As(wrapped, &toolErr) {
		t.Fatal("errors.As did not find the ToolError")
	}
	if toolErr.Category != CategoryNotFound || toolErr.Hint != "pass --state-file" {
		t.Errorf("unexpected error %+v", toolErr)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{"nil", nil, 0, ""},
		{"validation", Validation("bad flag"), 2, "error: bad flag\n"},
		{"not found", NotFound("missing"), 3, "error: missing\n"},
		{"transient wrapped", fmt.Errorf("fetch: %w", Transient("timeout")), 4, "error: fetch: timeout\n"},
		{"internal", Internal("boom"), 1, "error: boom\n"},
		{"plain", errors.New("plain"), 1, "error: plain\n"},
		{"exit", &ExitError{Code: 5}, 5, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var output bytes.Buffer
			if code := Report(&output, test.err); code != test.wantCode {
				t.Errorf("code = %d, want %d", code, test.wantCode)
			}
			if output.String() != test.wantOutput {
				t.Errorf("output = %q, want %q", output.String(), test.wantOutput)
			}
		})
	}
}

func TestStreamHandlerFormat(t *testing.T) {
	var text, json bytes.Buffer
	slog.New(newStreamHandler(&text, true, slog.LevelInfo)).Info("fetched", "endpoint", "state")
	slog.New(newStreamHandler(&json, false, slog.LevelInfo)).Info("fetched", "endpoint", "state")

	if !strings.Contains(text.String(), "endpoint=state") {
		t.Errorf("terminal output is not text: %q", text.String())
	}
	if !strings.Contains(json.String(), `"endpoint":"state"`) {
		t.Errorf("piped output is not JSON: %q", json.String())
	}
}

func TestFanoutHandler(t *testing.T) {
	var quiet, verbose bytes.Buffer
	logger := slog.New(FanoutHandler{
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}).With("component", "source")

	logger.Debug("polling")
	logger.Warn("fetch failed")

	if strings.Contains(quiet.String(), "polling") || !strings.Contains(quiet.String(), "fetch failed") {
		t.Errorf("warn handler output: %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "polling") || !strings.Contains(verbose.String(), "component=source") {
		t.Errorf("debug handler output: %q", verbose.String())
	}
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug-1) {
		t.Error("fanout enabled below every handler's level")
	}
}

func TestOpenFileLogHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.log")
	handler, closeFile, err := OpenFileLogHandler(path)
	if err != nil {
		t.Fatalf("OpenFileLogHandler: %v", err)
	}
	slog.New(handler).Debug("redraw", "generation", 3)
	closeFile()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"generation":3`) {
		t.Errorf("log file content: %q", data)
	}
}
