// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import "sync"

// cachedResponse is the last 200 response for a URL.
type cachedResponse struct {
	etag        string
	contentType string
	body        []byte
}

// etagCache remembers the last response per URL so that a 304 Not
// Modified can be answered from the cached body. It is bounded by the
// number of endpoints, two.
type etagCache struct {
	mu      sync.Mutex
	entries map[string]cachedResponse
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]cachedResponse)}
}

// etag returns the cached ETag for url, or "".
func (cache *etagCache) etag(url string) string {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[url].etag
}

// lookup returns the cached response for url.
func (cache *etagCache) lookup(url string) (cachedResponse, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry, ok
}

// put stores a response. Responses without an ETag are not cached,
// and a cached entry for the url is dropped.
func (cache *etagCache) put(url string, entry cachedResponse) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if entry.etag == "" {
		delete(cache.entries, url)
		return
	}
	cache.entries[url] = entry
}
