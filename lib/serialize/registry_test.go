// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"
)

// fahrenheit is a toy user extension type exercising the open
// extension point: a custom handler bound to a private code.
type fahrenheit float64

type fahrenheitHandler struct{}

func (h *fahrenheitHandler) ExtCode() uint64 { return 100 }

func (h *fahrenheitHandler) Matches(value any) bool {
	_, ok := value.(fahrenheit)
	return ok
}

func (h *fahrenheitHandler) Encode(value any) ([]byte, error) {
	f, ok := value.(fahrenheit)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

func (h *fahrenheitHandler) Decode(payload []byte) (any, error) {
	f, err := strconv.ParseFloat(string(payload), 64)
	if err != nil {
		return nil, err
	}
	return fahrenheit(f), nil
}

func TestCustomHandlerRoundtrip(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(reflect.TypeOf(fahrenheit(0)), &fahrenheitHandler{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	codec := NewCodec(registry, nil)

	data, err := codec.Encode(fahrenheit(98.6))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != fahrenheit(98.6) {
		t.Errorf("got %T %v, want fahrenheit(98.6)", decoded, decoded)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	registry := NewRegistry()
	handler := &fahrenheitHandler{}
	nativeType := reflect.TypeOf(fahrenheit(0))

	if err := registry.Register(nativeType, handler); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := registry.Register(nativeType, handler); err != nil {
		t.Errorf("re-registering the identical handler should be a no-op, got %v", err)
	}
	if bound := registry.byType[nativeType]; len(bound) != 1 {
		t.Errorf("type has %d handlers bound, want 1", len(bound))
	}
}

func TestExtCodeCollision(t *testing.T) {
	registry := NewRegistry()

	// Code 1 belongs to the built-in array handler.
	collider := &codeOneHandler{}
	err := registry.Register(reflect.TypeOf(fahrenheit(0)), collider)
	if !errors.Is(err, ErrExtCodeCollision) {
		t.Errorf("got %v, want ErrExtCodeCollision", err)
	}
}

type codeOneHandler struct{ fahrenheitHandler }

func (h *codeOneHandler) ExtCode() uint64 { return ExtArray }

func TestUnknownExtensionCode(t *testing.T) {
	// Encode with a registry that knows fahrenheit, decode with one
	// that does not: the classic producer/consumer registry mismatch.
	producer := NewRegistry()
	if err := producer.Register(reflect.TypeOf(fahrenheit(0)), &fahrenheitHandler{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	data, err := NewCodec(producer, nil).Encode(fahrenheit(451))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	consumer := NewCodec(NewRegistry(), nil)
	if _, err := consumer.Decode(data); !errors.Is(err, ErrUnknownExtensionCode) {
		t.Errorf("got %v, want ErrUnknownExtensionCode", err)
	}
}

func TestIsolatedRegistries(t *testing.T) {
	// Registration in an isolated registry must not leak into the
	// default one.
	type Isolated struct{ A int64 }

	registry := NewRegistry()
	if err := registry.RegisterRecord(Isolated{}); err != nil {
		t.Fatalf("RegisterRecord: %v", err)
	}

	if _, err := registry.recordType(plainRecord, "Isolated"); err != nil {
		t.Errorf("isolated registry missing its own record: %v", err)
	}
	if _, err := Default().recordType(plainRecord, "Isolated"); !errors.Is(err, ErrUnregisteredType) {
		t.Error("isolated registration leaked into the default registry")
	}
}

func TestRegisterRecordIdempotent(t *testing.T) {
	registry := NewRegistry()

	if err := registry.RegisterRecord(Point{}); err != nil {
		t.Fatalf("first RegisterRecord: %v", err)
	}
	if err := registry.RegisterRecord(Point{}); err != nil {
		t.Errorf("re-registering the same type should be a no-op, got %v", err)
	}
	if err := registry.RegisterRecord(&Point{}); err != nil {
		t.Errorf("pointer prototype of the same type should be a no-op, got %v", err)
	}
}

func TestRegisterRecordNameClash(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterRecord(Point{}); err != nil {
		t.Fatalf("RegisterRecord: %v", err)
	}

	// A different type that happens to share the name must be
	// rejected: decode resolves purely by name. A function-local
	// type gives us a second, distinct "Point".
	type Point struct{ Z int64 }

	if err := registry.RegisterRecord(Point{}); err == nil {
		t.Error("RegisterRecord accepted two types under one name")
	}
}

func TestRegisterRecordRejectsNonStructs(t *testing.T) {
	registry := NewRegistry()
	for _, prototype := range []any{42, "name", []int{1}} {
		if err := registry.RegisterRecord(prototype); err == nil {
			t.Errorf("RegisterRecord accepted %T", prototype)
		}
	}
}
