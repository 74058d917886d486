// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashBytesDeterministic(t *testing.T) {
	payload := []byte("encoded payload bytes")

	first := HashBytes(payload)
	second := HashBytes(payload)
	if first != second {
		t.Error("HashBytes is not deterministic")
	}

	different := HashBytes([]byte("other bytes"))
	if first == different {
		t.Error("different inputs produced the same digest")
	}
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	payload := []byte("file contents for hashing")
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if fromFile != HashBytes(payload) {
		t.Error("HashFile and HashBytes disagree on identical content")
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("HashFile should fail on a missing file")
	}
}

func TestDigestFormatRoundtrip(t *testing.T) {
	digest := HashBytes([]byte("roundtrip"))

	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Errorf("formatted digest is %d characters, want 64", len(formatted))
	}

	parsed, err := ParseDigest(formatted)
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != digest {
		t.Error("digest did not survive format/parse")
	}
}

func TestParseDigestRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "zz", "abcd"} {
		if _, err := ParseDigest(input); err == nil {
			t.Errorf("ParseDigest accepted %q", input)
		}
	}
}
