// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/clusterview/lib/clock"
	"github.com/bureau-foundation/clusterview/lib/codec"
	"github.com/bureau-foundation/clusterview/lib/netutil"
)

// Reconnect backoff bounds for Stream.
const (
	streamInitialBackoff = 500 * time.Millisecond
	streamMaxBackoff     = 30 * time.Second
)

// StreamConfig configures a push stream.
type StreamConfig struct {
	// URL is the ws:// or wss:// endpoint.
	URL string

	// Header is sent with the upgrade request.
	Header http.Header

	// Clock paces reconnects. Nil means the wall clock.
	Clock clock.Clock

	// Logger receives connect and disconnect events. Nil discards.
	Logger *slog.Logger
}

// Stream receives pushed Update messages over a WebSocket. Text frames
// carry JSON, binary frames carry CBOR. The connection is re-dialed
// with exponential backoff until the context passed to Run is done.
type Stream struct {
	url    string
	header http.Header
	clock  clock.Clock
	logger *slog.Logger
	dialer *websocket.Dialer
}

// NewStream returns a stream for config. It does not dial.
func NewStream(config StreamConfig) *Stream {
	streamClock := config.Clock
	if streamClock == nil {
		streamClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Stream{
		url:    config.URL,
		header: config.Header,
		clock:  streamClock,
		logger: logger,
		dialer: websocket.DefaultDialer,
	}
}

// Run dials the stream and delivers updates on the returned channel
// until ctx is done, then closes it. Malformed messages are logged and
// skipped without dropping the connection.
func (stream *Stream) Run(ctx context.Context) <-chan Update {
	updates := make(chan Update, 16)
	go stream.loop(ctx, updates)
	return updates
}

func (stream *Stream) loop(ctx context.Context, updates chan<- Update) {
	defer close(updates)

	backoff := streamInitialBackoff
	for {
		connected, err := stream.session(ctx, updates)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = streamInitialBackoff
		}
		if err != nil && !netutil.IsExpectedCloseError(err) {
			stream.logger.Warn("update stream disconnected",
				"url", stream.url,
				"error", err,
				"retry_in", backoff,
			)
		} else {
			stream.logger.Debug("update stream closed", "url", stream.url, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-stream.clock.After(backoff):
		}
		backoff = min(backoff*2, streamMaxBackoff)
	}
}

// session runs one connection. connected reports whether the dial
// succeeded, which resets the backoff.
func (stream *Stream) session(ctx context.Context, updates chan<- Update) (connected bool, err error) {
	conn, _, err := stream.dialer.DialContext(ctx, stream.url, stream.header)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	stream.logger.Info("update stream connected", "url", stream.url)

	// ReadMessage does not take a context; closing the connection
	// unblocks it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		update, err := decodeUpdate(messageType, data)
		if err != nil {
			stream.logger.Warn("discarding malformed update", "error", err)
			continue
		}
		select {
		case updates <- update:
		case <-ctx.Done():
			return true, nil
		}
	}
}

func decodeUpdate(messageType int, data []byte) (Update, error) {
	var update Update
	switch messageType {
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &update); err != nil {
			return Update{}, fmt.Errorf("decoding JSON update: %w", err)
		}
	case websocket.BinaryMessage:
		if err := codec.Unmarshal(data, &update); err != nil {
			return Update{}, fmt.Errorf("decoding CBOR update: %w", err)
		}
	default:
		return Update{}, fmt.Errorf("unexpected message type %d", messageType)
	}
	if err := update.Validate(); err != nil {
		return Update{}, err
	}
	return update, nil
}
