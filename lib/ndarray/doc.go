// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

// Package ndarray provides the typed N-dimensional array value type
// the serialization layer consumes.
//
// An [Array] is shape + declared element layout + column-major flag +
// raw little-endian element bytes. The element layout ([DType]) is
// either a fixed-width primitive kind, a compound record layout with
// named primitive fields, or Object (boxed values, which exist in
// memory but are rejected by the codec).
//
// The package deliberately stops at value semantics: constructors,
// accessors, equality. Byte-order fidelity is the point — an array
// round-trips through the codec with its exact element bytes, shape,
// and layout flag, with no numeric reinterpretation on the way.
package ndarray
