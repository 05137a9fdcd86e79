// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixture serves the state and diagram endpoints from local
// files, for running the viewer without a live state server.
//
// GET /api/state returns the state envelope file. GET
// /api/level-diagram returns the diagram file, or the catalog template
// for the progress recorded in the state file. Both honor
// Accept: application/cbor, carry strong ETags over the encoded body,
// and are gzip-compressed for clients that accept it. GET /ws is a
// WebSocket that pushes both payloads on connect and again whenever
// the files change.
package fixture

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/clusterview/lib/codec"
	"github.com/bureau-foundation/clusterview/lib/source"
)

// clientBuffer is the number of pushed messages queued per WebSocket
// client. A client that falls further behind misses messages; the
// next push carries complete state anyway.
const clientBuffer = 8

// Config configures a Server.
type Config struct {
	// StatePath is the state envelope file. Required.
	StatePath string

	// DiagramPath is an optional JSONC diagram file.
	DiagramPath string

	Logger *slog.Logger
}

// Server serves fixture files over HTTP.
type Server struct {
	files    *source.File
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New returns a server for config. Files are read on every request, so
// they need not exist yet.
func New(config Config) (*Server, error) {
	files, err := source.NewFile(source.FileConfig{
		StatePath:   config.StatePath,
		DiagramPath: config.DiagramPath,
	})
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		files:  files,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}, nil
}

// Handler returns the HTTP handler. The WebSocket route is mounted
// outside the gzip wrapper, which does not support hijacking.
func (server *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/state", server.handleState)
	api.HandleFunc("GET /api/level-diagram", server.handleDiagram)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", server.handleStream)
	mux.Handle("/", gzhttp.GzipHandler(api))
	return mux
}

// Run watches the fixture files and pushes both payloads to every
// WebSocket client on change, until ctx is done.
func (server *Server) Run(ctx context.Context) error {
	done, err := server.Watch(ctx)
	if err != nil {
		return err
	}
	<-done
	return ctx.Err()
}

// Watch starts the file watch and returns once it is established. The
// returned channel is closed when publishing stops.
func (server *Server) Watch(ctx context.Context) (<-chan struct{}, error) {
	changes, err := source.Watch(ctx, server.files.Paths()...)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range changes {
			server.logger.Info("fixture files changed, publishing")
			server.Publish(ctx)
		}
	}()
	return done, nil
}

// Publish sends the current state and diagram to every connected
// WebSocket client.
func (server *Server) Publish(ctx context.Context) {
	messages := server.messages(ctx)
	server.mu.Lock()
	defer server.mu.Unlock()
	for client := range server.clients {
		for _, message := range messages {
			select {
			case client.send <- message:
			default:
				server.logger.Warn("websocket client is behind, dropping message")
			}
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (server *Server) ClientCount() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return len(server.clients)
}

// messages encodes one state update and one diagram update. A payload
// that cannot be read is logged and left out.
func (server *Server) messages(ctx context.Context) [][]byte {
	var messages [][]byte
	if envelope, err := server.files.FetchState(ctx); err != nil {
		server.logger.Warn("reading fixture state", "error", err)
	} else if data, err := json.Marshal(source.Update{Kind: source.UpdateState, State: envelope}); err == nil {
		messages = append(messages, data)
	}
	if snapshot, err := server.files.FetchDiagram(ctx); err != nil {
		server.logger.Warn("reading fixture diagram", "error", err)
	} else if data, err := json.Marshal(source.Update{Kind: source.UpdateDiagram, Diagram: snapshot}); err == nil {
		messages = append(messages, data)
	}
	return messages
}

func (server *Server) handleState(w http.ResponseWriter, r *http.Request) {
	envelope, err := server.files.FetchState(r.Context())
	if err != nil {
		server.fail(w, err)
		return
	}
	server.respond(w, r, envelope)
}

func (server *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	snapshot, err := server.files.FetchDiagram(r.Context())
	if err != nil {
		server.fail(w, err)
		return
	}
	server.respond(w, r, snapshot)
}

func (server *Server) fail(w http.ResponseWriter, err error) {
	server.logger.Warn("fixture request failed", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, fs.ErrNotExist) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

// respond encodes v for the request's Accept header and replies, or
// answers 304 when the client already holds the same body.
func (server *Server) respond(w http.ResponseWriter, r *http.Request, v any) {
	body, contentType, err := codec.EncodeBody(r.Header.Get("Accept"), v)
	if err != nil {
		server.fail(w, err)
		return
	}
	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

// ETag returns a strong entity tag for body: the first 128 bits of its
// BLAKE3 digest, quoted.
func ETag(body []byte) string {
	digest := blake3.Sum256(body)
	return `"` + hex.EncodeToString(digest[:16]) + `"`
}

func (server *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := server.upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	for _, message := range server.messages(r.Context()) {
		c.send <- message
	}

	server.mu.Lock()
	server.clients[c] = struct{}{}
	server.mu.Unlock()
	server.logger.Debug("websocket client connected", "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for message := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	server.mu.Lock()
	delete(server.clients, c)
	server.mu.Unlock()
	close(c.send)
	<-writerDone
	conn.Close()
	server.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
}
