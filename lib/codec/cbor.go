// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"mime"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Media types understood by the state and diagram endpoints.
const (
	MediaTypeJSON = "application/json"
	MediaTypeCBOR = "application/cbor"
)

// encMode is configured with Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The fixture server hashes encoded bodies
// for ETags, so the same snapshot must always produce the same bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Check patterns and service target ports decode into any.
		// The CBOR default for maps there is map[any]any, which
		// does not compare equal to the map[string]any produced by
		// the JSON path. Snapshot equality must not depend on which
		// wire format delivered the snapshot.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// IsCBOR reports whether a Content-Type or Accept value names CBOR.
// Parameters and letter case are ignored; a malformed value is not
// CBOR.
func IsCBOR(contentType string) bool {
	for _, part := range strings.Split(contentType, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mediaType == MediaTypeCBOR {
			return true
		}
	}
	return false
}

// DecodeBody decodes a response body according to its Content-Type:
// CBOR when the type says so, JSON otherwise. Servers that omit the
// header are assumed to speak JSON.
func DecodeBody(contentType string, data []byte, v any) error {
	if IsCBOR(contentType) {
		return Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// EncodeBody encodes v for a client that sent the given Accept header
// and returns the body with its Content-Type. CBOR is chosen only when
// the client lists it; everything else gets JSON.
func EncodeBody(accept string, v any) ([]byte, string, error) {
	if IsCBOR(accept) {
		data, err := Marshal(v)
		return data, MediaTypeCBOR, err
	}
	data, err := json.Marshal(v)
	return data, MediaTypeJSON, err
}
