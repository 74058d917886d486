// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

// Package serialize is an extensible binary object codec: it encodes
// application values — including types the core binary encoding knows
// nothing about — into a byte stream and reconstructs equivalent
// values from it, with an optional whole-payload compression pass.
//
// # Dispatch protocol
//
// The core encoding (lib/codec, CBOR) natively represents scalars,
// strings, byte strings, sequences, and string-keyed maps. Everything
// else dispatches through a [Registry]: on encode, a value whose type
// has a registered [Handler] becomes an extension frame (a small
// integer extension code plus an opaque payload); on decode, every
// extension frame resolves its handler by code and is replaced by the
// handler's reconstruction. Handlers that serialize nested values
// recurse through the same entry points, so arrays of records and
// records of arrays compose with no special-casing per nesting depth.
//
// Built-in handlers cover typed N-dimensional arrays (code 1),
// record-dtype arrays (2), timestamps (3), named plain records (4),
// ranges (5), and named validating records (6). Named record types
// must be registered on both the producing and consuming side:
//
//	type Point struct {
//		X float64 `json:"x"`
//		Y float64 `json:"y"`
//	}
//
//	serialize.RegisterRecord(Point{})
//	data, err := serialize.Encode(Point{X: 1, Y: 2})
//	value, err := serialize.Decode(data) // Point{X: 1, Y: 2}
//
// # Compression
//
// Encode compresses the complete encoded buffer (LZ4 frame by
// default); Decode decompresses before parsing. Compression is a
// property of the outermost transport frame only: handlers always
// serialize nested values uncompressed, so a payload never compresses
// twice no matter how deeply values nest.
//
// # Concurrency
//
// Encode and Decode are synchronous, allocation-bounded, in-memory
// transforms with no internal locking. Registry mutation is intended
// to happen single-threaded at startup; once registration stabilizes,
// any number of goroutines may encode and decode concurrently. See
// [Registry].
package serialize
