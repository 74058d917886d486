// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxBufferSize bounds the output of Decompress. It is the largest
// value representable in a 4-byte length field, and exists to keep a
// hostile payload from amplifying into an unbounded allocation.
// Implementations reject anything that would decompress past it.
const MaxBufferSize = 1<<31 - 1

// Codec is a pluggable whole-buffer compression pair. Compress and
// Decompress must be true inverses: Decompress(Compress(b)) == b for
// every input. The serialization layer applies a Codec to the
// complete encoded buffer only — never to nested sub-structures.
type Codec interface {
	// Name identifies the codec ("lz4", "zstd", "identity").
	Name() string

	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. The output is capped at
	// MaxBufferSize.
	Decompress(data []byte) ([]byte, error)
}

// Default returns the codec used when callers do not choose one:
// LZ4 frame compression, the fast-default the original wire format
// shipped with.
func Default() Codec {
	return LZ4{}
}

// ByName resolves a codec from its name. Used by CLI tooling.
func ByName(name string) (Codec, error) {
	switch name {
	case "lz4":
		return LZ4{}, nil
	case "zstd":
		return Zstd{}, nil
	case "identity", "none":
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown compression codec: %q", name)
	}
}

// LZ4 compresses with the LZ4 frame format. Frames are
// self-describing (magic, block layout, content checksum), so a
// compressed buffer decompresses standalone with no out-of-band
// size.
type LZ4 struct{}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

// Compress wraps data in a single LZ4 frame.
func (LZ4) Compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: close frame: %w", err)
	}
	return buffer.Bytes(), nil
}

// Decompress reads back a single LZ4 frame.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	decompressed, err := readCapped(reader)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return decompressed, nil
}

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent
// use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxBufferSize),
	)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd compresses with the zstd frame format via shared
// encoder/decoder instances.
type Zstd struct{}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// Compress wraps data in a single zstd frame.
func (Zstd) Compress(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

// Decompress reads back a single zstd frame.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	decompressed, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return decompressed, nil
}

// Identity is the no-compression configuration: both directions
// return the input unchanged. Still a true inverse pair.
type Identity struct{}

// Name returns "identity".
func (Identity) Name() string { return "identity" }

// Compress returns data unchanged.
func (Identity) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data unchanged.
func (Identity) Decompress(data []byte) ([]byte, error) { return data, nil }

// readCapped drains r, failing once the output would exceed
// MaxBufferSize.
func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBufferSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBufferSize {
		return nil, fmt.Errorf("decompressed size exceeds %d byte limit", MaxBufferSize)
	}
	return data, nil
}
