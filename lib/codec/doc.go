// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration that
// every other package builds on.
//
// CBOR is the underlying core binary encoding: maps, sequences,
// integers, floats, text strings, and byte strings. Application types
// the core encoding cannot represent (typed arrays, timestamps,
// ranges, named records) ride on top of it as extension frames — a
// small integer extension code plus an opaque payload byte string —
// carried in CBOR tags offset by [TagBase]. The dispatch protocol that
// produces and consumes those frames lives in lib/serialize; this
// package only provides the frame representation ([Tag], [AsTag]) and
// the shared encoder/decoder modes.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
