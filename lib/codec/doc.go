// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec selects the wire encoding of state and diagram
// payloads.
//
// JSON is the default and the only format the reference state server
// speaks. CBOR is negotiated with Accept/Content-Type
// (application/cbor) and is what the fixture server sends when asked;
// it is smaller for large pod lists and encodes deterministically, so
// identical snapshots produce identical bytes and identical ETags.
//
// Wire types carry only `json` struct tags. fxamacker/cbor falls back
// to `json` tags when `cbor` tags are absent, so one tag controls field
// naming for both formats:
//
//	data, contentType, err := codec.EncodeBody(request.Header.Get("Accept"), envelope)
//	err = codec.DecodeBody(response.Header.Get("Content-Type"), body, &envelope)
package codec
