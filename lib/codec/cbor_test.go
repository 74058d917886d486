// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := map[string]any{
		"shape":   []any{int64(2), int64(3)},
		"dtype":   "float64",
		"fortran": false,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("generic decode produced %T, want map[string]any", decoded)
	}
	if m["dtype"] != "float64" {
		t.Errorf("dtype: got %v, want float64", m["dtype"])
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"data":    []byte{1, 2, 3, 4},
		"shape":   []any{int64(4)},
		"fortran": true,
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestTagRoundtrip(t *testing.T) {
	payload := []byte("1700000000.000000")

	data, err := Marshal(Tag(3, payload))
	if err != nil {
		t.Fatalf("Marshal tag: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal tag: %v", err)
	}

	code, got, ok := AsTag(decoded)
	if !ok {
		t.Fatalf("AsTag did not recognize decoded value %#v", decoded)
	}
	if code != 3 {
		t.Errorf("extension code: got %d, want 3", code)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload: got %q, want %q", got, payload)
	}
}

func TestAsTagRejectsNonFrames(t *testing.T) {
	for _, value := range []any{
		int64(42),
		"text",
		[]byte("bytes"),
		map[string]any{"k": "v"},
	} {
		if _, _, ok := AsTag(value); ok {
			t.Errorf("AsTag accepted %T %v", value, value)
		}
	}
}

func TestTagNestedInTree(t *testing.T) {
	// Extension frames must survive inside maps and sequences, the
	// positions recursive dispatch puts them in.
	tree := map[string]any{
		"items": []any{Tag(1, []byte{0xAA}), "plain"},
	}

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	items := decoded.(map[string]any)["items"].([]any)
	code, payload, ok := AsTag(items[0])
	if !ok || code != 1 || !bytes.Equal(payload, []byte{0xAA}) {
		t.Errorf("nested frame: got (%d, %x, %v)", code, payload, ok)
	}
	if items[1] != "plain" {
		t.Errorf("sibling value: got %v, want \"plain\"", items[1])
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var value any
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &value); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestUnmarshalDepthLimited(t *testing.T) {
	// Build nesting one level past the decoder's limit and check the
	// decoder refuses it instead of recursing to the bottom.
	var deep any = "leaf"
	for i := 0; i < MaxNestedLevels+1; i++ {
		deep = []any{deep}
	}

	data, err := Marshal(deep)
	if err != nil {
		// The encoder may refuse as well; either layer stopping the
		// value is acceptable.
		return
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err == nil {
		t.Error("Unmarshal accepted nesting past MaxNestedLevels")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"dtype": "int32"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if !strings.Contains(notation, `"dtype"`) {
		t.Errorf("notation %q does not contain \"dtype\"", notation)
	}
	if !strings.Contains(notation, `"int32"`) {
		t.Errorf("notation %q does not contain \"int32\"", notation)
	}
}

func TestDiagnoseFirst(t *testing.T) {
	item1, err := Marshal("first")
	if err != nil {
		t.Fatalf("Marshal item 1: %v", err)
	}
	item2, err := Marshal(int64(7))
	if err != nil {
		t.Fatalf("Marshal item 2: %v", err)
	}

	sequence := append(append([]byte{}, item1...), item2...)

	notation, remaining, err := DiagnoseFirst(sequence)
	if err != nil {
		t.Fatalf("DiagnoseFirst: %v", err)
	}
	if !strings.Contains(notation, `"first"`) {
		t.Errorf("first item notation %q does not contain \"first\"", notation)
	}
	if len(remaining) == 0 {
		t.Fatal("expected remaining bytes after first item")
	}
}

func TestStreamRoundtrip(t *testing.T) {
	values := []any{"a", int64(1), []byte{0x01}}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, value := range values {
		if err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i := range values {
		var got any
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode item %d: %v", i, err)
		}
	}
}

func BenchmarkMarshal(b *testing.B) {
	value := map[string]any{
		"shape":   []any{int64(16), int64(16)},
		"dtype":   "float64",
		"fortran": false,
		"data":    make([]byte, 2048),
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Marshal(value)
	}
}
