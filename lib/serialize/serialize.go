// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
	"reflect"

	"github.com/termim/asyncio-rpc/lib/codec"
	"github.com/termim/asyncio-rpc/lib/compress"
)

// MaxDepth caps recursion while walking a value tree, on both the
// encode and decode side. Exceeding it is ErrDepthExceeded rather
// than a host stack overflow. The limit applies per dispatch segment:
// a handler's nested encode/decode starts a fresh count, exactly as
// its payload is a fresh core-encoded buffer.
const MaxDepth = 256

// MaxExtLen bounds the length of an extension payload accepted on
// decode (the largest value representable in a 4-byte length field).
// Oversized frames are rejected before handler dispatch to bound
// allocation on untrusted input.
const MaxExtLen = 1<<31 - 1

// MaxStrLen bounds text and byte strings accepted on decode, with the
// same default as MaxExtLen.
const MaxStrLen = 1<<31 - 1

// Codec binds a registry to a default compressor. The zero value is
// not usable; construct with NewCodec. The package-level Encode and
// Decode run against a Codec over the default registry with LZ4
// compression.
type Codec struct {
	registry   *Registry
	compressor compress.Codec
}

// NewCodec returns a codec over the given registry. A nil compressor
// selects the default (LZ4).
func NewCodec(registry *Registry, compressor compress.Codec) *Codec {
	if compressor == nil {
		compressor = compress.Default()
	}
	return &Codec{registry: registry, compressor: compressor}
}

// Registry returns the registry the codec dispatches through.
func (c *Codec) Registry() *Registry {
	return c.registry
}

type encodeConfig struct {
	compress   bool
	compressor compress.Codec
}

// EncodeOption adjusts a single Encode call.
type EncodeOption func(*encodeConfig)

// NoCompression returns the raw encoded buffer without the
// compression pass.
func NoCompression() EncodeOption {
	return func(cfg *encodeConfig) { cfg.compress = false }
}

// WithCompressor overrides the codec's compressor for one call.
func WithCompressor(compressor compress.Codec) EncodeOption {
	return func(cfg *encodeConfig) { cfg.compressor = compressor }
}

type decodeConfig struct {
	decompress   bool
	decompressor compress.Codec
	asText       bool
}

// DecodeOption adjusts a single Decode call.
type DecodeOption func(*decodeConfig)

// NoDecompression parses the input as a raw encoded buffer, skipping
// the decompression pass.
func NoDecompression() DecodeOption {
	return func(cfg *decodeConfig) { cfg.decompress = false }
}

// WithDecompressor overrides the codec's decompressor for one call.
func WithDecompressor(decompressor compress.Codec) DecodeOption {
	return func(cfg *decodeConfig) { cfg.decompressor = decompressor }
}

// AsText exposes byte strings in the decoded tree as text strings.
// It does not affect extension payload handling.
func AsText() DecodeOption {
	return func(cfg *decodeConfig) { cfg.asText = true }
}

// Encode serializes a value tree to bytes. Native scalars, strings,
// byte slices, string-keyed maps, and sequences pass through to the
// core encoding; values of registered extension types become
// extension frames via their handler; anything else fails with
// ErrUnsupportedType. The complete buffer is then compressed unless
// NoCompression is given.
func (c *Codec) Encode(value any, opts ...EncodeOption) ([]byte, error) {
	cfg := encodeConfig{compress: true, compressor: c.compressor}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := encodeTree(c.registry, value)
	if err != nil {
		return nil, err
	}
	if !cfg.compress {
		return raw, nil
	}
	compressed, err := cfg.compressor.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress encoded buffer: %w", err)
	}
	return compressed, nil
}

// Decode reverses Encode. A nil input decodes to nil (absence passes
// through). The input is decompressed unless NoDecompression is
// given, parsed by the core decoder, and every extension frame in the
// tree is replaced by its handler's reconstruction.
func (c *Codec) Decode(data []byte, opts ...DecodeOption) (any, error) {
	if data == nil {
		return nil, nil
	}

	cfg := decodeConfig{decompress: true, decompressor: c.compressor}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.decompress {
		var err error
		data, err = cfg.decompressor.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompress buffer: %w", err)
		}
	}
	return decodeTree(c.registry, data, cfg.asText)
}

// defaultCodec backs the package-level entry points.
var defaultCodec = NewCodec(defaultRegistry, nil)

// Encode serializes a value with the default registry and LZ4
// compression.
func Encode(value any, opts ...EncodeOption) ([]byte, error) {
	return defaultCodec.Encode(value, opts...)
}

// Decode deserializes a buffer with the default registry.
func Decode(data []byte, opts ...DecodeOption) (any, error) {
	return defaultCodec.Decode(data, opts...)
}

// encodeTree lowers a value tree and marshals it with the core
// encoder. No compression: this is the entry point handlers recurse
// through for nested values, and the body of Encode before its
// optional compression pass.
func encodeTree(registry *Registry, value any) ([]byte, error) {
	lowered, err := lower(registry, value, 0)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(lowered)
}

// decodeTree unmarshals a raw (uncompressed) buffer and lifts every
// extension frame in it. The nested entry point for handlers.
func decodeTree(registry *Registry, data []byte, asText bool) (any, error) {
	var tree any
	if err := codec.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode buffer: %w", err)
	}
	return lift(registry, tree, asText, 0)
}

// lower transforms an application value into a tree the core encoder
// represents natively, replacing every extension-typed value with an
// extension frame produced by its handler.
func lower(registry *Registry, value any, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d levels", ErrDepthExceeded, depth)
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		string, []byte:
		return v, nil
	}

	// Exact native type match first: registered extension types
	// (arrays, timestamps, ranges, named records) become frames here.
	if handler, err := registry.handlerFor(value); err == nil {
		payload, err := handler.Encode(value)
		if err != nil {
			return nil, err
		}
		return codec.Tag(handler.ExtCode(), payload), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return lower(registry, rv.Elem().Interface(), depth)

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map with %s keys (only string keys are encodable)",
				ErrUnsupportedType, rv.Type().Key())
		}
		lowered := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			element, err := lower(registry, iter.Value().Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			lowered[iter.Key().String()] = element
		}
		return lowered, nil

	case reflect.Slice, reflect.Array:
		lowered := make([]any, rv.Len())
		for i := range lowered {
			element, err := lower(registry, rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			lowered[i] = element
		}
		return lowered, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
}

// lift walks a generically decoded tree, replacing every extension
// frame with its handler's reconstruction and enforcing the decode
// bounds.
func lift(registry *Registry, value any, asText bool, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d levels", ErrDepthExceeded, depth)
	}

	if code, payload, ok := codec.AsTag(value); ok {
		if len(payload) > MaxExtLen {
			return nil, fmt.Errorf("extension payload of %d bytes exceeds limit", len(payload))
		}
		handler, err := registry.handlerForCode(code)
		if err != nil {
			return nil, err
		}
		return handler.Decode(payload)
	}
	if codec.ForeignTag(value) {
		return nil, fmt.Errorf("%w: foreign tag in stream", ErrUnknownExtensionCode)
	}

	switch v := value.(type) {
	case map[string]any:
		for key, element := range v {
			lifted, err := lift(registry, element, asText, depth+1)
			if err != nil {
				return nil, err
			}
			v[key] = lifted
		}
		return v, nil

	case []any:
		for i, element := range v {
			lifted, err := lift(registry, element, asText, depth+1)
			if err != nil {
				return nil, err
			}
			v[i] = lifted
		}
		return v, nil

	case []byte:
		if len(v) > MaxStrLen {
			return nil, fmt.Errorf("byte string of %d bytes exceeds limit", len(v))
		}
		if asText {
			return string(v), nil
		}
		return v, nil

	case string:
		if len(v) > MaxStrLen {
			return nil, fmt.Errorf("string of %d bytes exceeds limit", len(v))
		}
		return v, nil
	}

	return value, nil
}
