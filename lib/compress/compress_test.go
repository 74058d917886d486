// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"testing"
)

// sampleData returns a compressible buffer: repeated structure with a
// little variation, the shape of a typical encoded payload.
func sampleData() []byte {
	var buffer bytes.Buffer
	for i := 0; i < 1024; i++ {
		buffer.WriteString("field-value-")
		buffer.WriteByte(byte(i))
	}
	return buffer.Bytes()
}

func codecs() []Codec {
	return []Codec{LZ4{}, Zstd{}, Identity{}}
}

func TestRoundtrip(t *testing.T) {
	data := sampleData()

	for _, codec := range codecs() {
		compressed, err := codec.Compress(data)
		if err != nil {
			t.Fatalf("%s Compress: %v", codec.Name(), err)
		}

		decompressed, err := codec.Decompress(compressed)
		if err != nil {
			t.Fatalf("%s Decompress: %v", codec.Name(), err)
		}

		if !bytes.Equal(decompressed, data) {
			t.Errorf("%s roundtrip mismatch: %d bytes in, %d bytes out",
				codec.Name(), len(data), len(decompressed))
		}
	}
}

func TestRoundtripEmpty(t *testing.T) {
	for _, codec := range codecs() {
		compressed, err := codec.Compress(nil)
		if err != nil {
			t.Fatalf("%s Compress(nil): %v", codec.Name(), err)
		}

		decompressed, err := codec.Decompress(compressed)
		if err != nil {
			t.Fatalf("%s Decompress: %v", codec.Name(), err)
		}
		if len(decompressed) != 0 {
			t.Errorf("%s: empty input decompressed to %d bytes",
				codec.Name(), len(decompressed))
		}
	}
}

func TestCompressionReducesSize(t *testing.T) {
	data := sampleData()

	for _, codec := range []Codec{LZ4{}, Zstd{}} {
		compressed, err := codec.Compress(data)
		if err != nil {
			t.Fatalf("%s Compress: %v", codec.Name(), err)
		}
		if len(compressed) >= len(data) {
			t.Errorf("%s did not shrink compressible data: %d -> %d bytes",
				codec.Name(), len(data), len(compressed))
		}
	}
}

func TestIdentityPassthrough(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}

	compressed, err := Identity{}.Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(compressed, data) {
		t.Errorf("identity changed data: %x -> %x", data, compressed)
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	garbage := []byte("definitely not a compressed frame")

	for _, codec := range []Codec{LZ4{}, Zstd{}} {
		if _, err := codec.Decompress(garbage); err == nil {
			t.Errorf("%s accepted garbage input", codec.Name())
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"lz4", "zstd", "identity"} {
		codec, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if codec.Name() != name {
			t.Errorf("ByName(%q) returned codec named %q", name, codec.Name())
		}
	}

	if _, err := ByName("snappy"); err == nil {
		t.Error("ByName accepted an unknown codec name")
	}
}

func TestDefaultIsLZ4(t *testing.T) {
	if Default().Name() != "lz4" {
		t.Errorf("default codec is %q, want lz4", Default().Name())
	}
}

func BenchmarkLZ4Compress(b *testing.B) {
	data := sampleData()

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		LZ4{}.Compress(data)
	}
}
