// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bureau-foundation/clusterview/lib/codec"
	"github.com/bureau-foundation/clusterview/lib/netutil"
	"github.com/bureau-foundation/clusterview/lib/schema/cluster"
	"github.com/bureau-foundation/clusterview/lib/schema/diagram"
)

// HTTPConfig configures an HTTP source.
type HTTPConfig struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string

	// StatePath and DiagramPath default to "/api/state" and
	// "/api/level-diagram".
	StatePath   string
	DiagramPath string

	// PreferCBOR asks the server for CBOR bodies. JSON responses are
	// still accepted.
	PreferCBOR bool

	// Timeout bounds each request. Zero means 10 seconds.
	Timeout time.Duration

	// Client is the HTTP client. When nil a client with Timeout is
	// created.
	Client *http.Client
}

// HTTP polls the state server. It honors ETags: an unchanged diagram
// answers 304 and is served from the cached body.
//
// HTTP is safe for concurrent use.
type HTTP struct {
	baseURL     string
	statePath   string
	diagramPath string
	accept      string
	client      *http.Client
	cache       *etagCache
}

// NewHTTP validates config and returns an HTTP source.
func NewHTTP(config HTTPConfig) (*HTTP, error) {
	if config.BaseURL == "" {
		return nil, errors.New("source: BaseURL is required")
	}
	client := config.Client
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	accept := codec.MediaTypeJSON
	if config.PreferCBOR {
		accept = codec.MediaTypeCBOR + ", " + codec.MediaTypeJSON + ";q=0.5"
	}
	return &HTTP{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		statePath:   orDefault(config.StatePath, "/api/state"),
		diagramPath: orDefault(config.DiagramPath, "/api/level-diagram"),
		accept:      accept,
		client:      client,
		cache:       newETagCache(),
	}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// FetchState fetches and decodes the state envelope.
func (source *HTTP) FetchState(ctx context.Context) (*cluster.Envelope, error) {
	var envelope cluster.Envelope
	if err := source.get(ctx, EndpointState, source.statePath, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// FetchDiagram fetches and decodes the diagram snapshot.
func (source *HTTP) FetchDiagram(ctx context.Context) (*diagram.Snapshot, error) {
	var snapshot diagram.Snapshot
	if err := source.get(ctx, EndpointDiagram, source.diagramPath, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (source *HTTP) get(ctx context.Context, endpoint, path string, v any) error {
	url := source.baseURL + path
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	request.Header.Set("Accept", source.accept)
	if etag := source.cache.etag(url); etag != "" {
		request.Header.Set("If-None-Match", etag)
	}

	response, err := source.client.Do(request)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	defer response.Body.Close()

	var cached cachedResponse
	switch response.StatusCode {
	case http.StatusOK:
		body, err := netutil.ReadResponse(response.Body)
		if err != nil {
			return &FetchError{Endpoint: endpoint, StatusCode: response.StatusCode, Err: err}
		}
		cached = cachedResponse{
			etag:        response.Header.Get("ETag"),
			contentType: response.Header.Get("Content-Type"),
			body:        body,
		}
		source.cache.put(url, cached)
	case http.StatusNotModified:
		var ok bool
		cached, ok = source.cache.lookup(url)
		if !ok {
			return &FetchError{Endpoint: endpoint, StatusCode: response.StatusCode,
				Err: errors.New("not modified but nothing cached")}
		}
	default:
		return &FetchError{Endpoint: endpoint, StatusCode: response.StatusCode,
			Err: fmt.Errorf("%s", orDefault(netutil.ErrorBody(response.Body), http.StatusText(response.StatusCode)))}
	}

	if err := codec.DecodeBody(cached.contentType, cached.body, v); err != nil {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
