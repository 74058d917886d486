// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import "errors"

// The error taxonomy of the codec. Every failure aborts the whole
// encode or decode call; the codec never drops or substitutes data,
// and a decode either yields a fully reconstructed value or fails.
// All sentinels are wrapped with context and testable with errors.Is.
var (
	// ErrUnsupportedType is returned at encode time when a value's
	// native type has no registered handler. The codec does not
	// coerce unknown types.
	ErrUnsupportedType = errors.New("serialize: unsupported type")

	// ErrUnsupportedElementType is returned at encode time (and on
	// decode of a payload claiming such a layout) when an array's
	// element kind is not a fixed-width primitive.
	ErrUnsupportedElementType = errors.New("serialize: unsupported array element type")

	// ErrUnknownExtensionCode is returned at decode time when the
	// stream carries an extension code absent from the registry.
	// This signals a registry-configuration mismatch between the
	// producer and consumer, not data corruption.
	ErrUnknownExtensionCode = errors.New("serialize: unknown extension code")

	// ErrUnregisteredType is returned at decode time when a record
	// payload names a type not registered on this side, even if the
	// payload is structurally well formed. There is no implicit type
	// creation.
	ErrUnregisteredType = errors.New("serialize: unregistered record type")

	// ErrExtCodeCollision is returned at registration time when two
	// distinct handlers claim the same extension code.
	ErrExtCodeCollision = errors.New("serialize: extension code collision")

	// ErrMalformedTimestamp is returned when a timestamp payload
	// does not parse as decimal seconds.
	ErrMalformedTimestamp = errors.New("serialize: malformed timestamp")

	// ErrDepthExceeded is returned when a value tree nests deeper
	// than MaxDepth.
	ErrDepthExceeded = errors.New("serialize: value nesting depth exceeded")
)
