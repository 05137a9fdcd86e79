// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the HTTP and connection helpers shared by the
// state sources and the fixture server.
//
// Response bodies are always read through a size bound: a state or
// diagram document is a few kilobytes, and a misbehaving server must
// not be able to exhaust memory. Error response bodies are further
// truncated so they fit in a log line.
package netutil

import (
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds every response body read: 16 MB.
const MaxResponseSize int64 = 16 << 20

// maxErrorBody is how much of an error response is kept for messages.
const maxErrorBody = 512

// ReadResponse reads a response body up to MaxResponseSize bytes and
// fails if the body is larger.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}

// ErrorBody returns the start of an error response body, trimmed, for
// diagnostics. Read errors yield whatever was read.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return strings.TrimSpace(string(data))
}
