// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
	"reflect"
	"time"

	"github.com/termim/asyncio-rpc/lib/ndarray"
)

// Extension codes of the built-in handlers. These are wire protocol
// constants — changing them breaks payload compatibility.
const (
	ExtArray            uint64 = 1
	ExtStructuredArray  uint64 = 2
	ExtTimestamp        uint64 = 3
	ExtRecord           uint64 = 4
	ExtRange            uint64 = 5
	ExtValidatingRecord uint64 = 6
)

// Handler is a stateless encode/decode pair bound to one extension
// code. Encode produces the extension payload for a value; Decode
// reconstructs the value from a payload. Matches performs encode-side
// selection when several handlers share a native type (plain vs
// record-dtype arrays select on the value's declared element layout,
// not on the container type).
//
// A handler that serializes nested values must do so through the
// registry's nested entry points, which never apply compression:
// compression belongs to the outermost transport frame only.
type Handler interface {
	ExtCode() uint64
	Matches(value any) bool
	Encode(value any) ([]byte, error)
	Decode(payload []byte) (any, error)
}

// recordCategory distinguishes the two named-record registries. The
// same type name may be registered under both categories without
// collision.
type recordCategory uint8

const (
	plainRecord recordCategory = iota
	validatingRecord
)

func (c recordCategory) String() string {
	if c == validatingRecord {
		return "validating record"
	}
	return "plain record"
}

type recordKey struct {
	category recordCategory
	name     string
}

// Registry maps native types to handlers, extension codes to
// handlers, and record names to reconstructible types.
//
// Registration is not synchronized internally. The intended
// discipline is two-phase: register every handler and record type
// single-threaded at startup, then run arbitrarily concurrent
// Encode/Decode calls against the stabilized tables. Callers that
// must register late own the serialization of that mutation against
// concurrent readers.
type Registry struct {
	byType  map[reflect.Type][]Handler
	byCode  map[uint64]Handler
	records map[recordKey]reflect.Type

	// The two record-category handlers, bound into byCode lazily on
	// first record registration, matching the original protocol
	// (the record extension codes appear in byCode only once a
	// record type exists).
	plainHandler      Handler
	validatingHandler Handler
}

// NewRegistry returns a registry pre-populated with the built-in
// handlers: typed array, structured array, timestamp, and range.
func NewRegistry() *Registry {
	r := &Registry{
		byType:  make(map[reflect.Type][]Handler),
		byCode:  make(map[uint64]Handler),
		records: make(map[recordKey]reflect.Type),
	}
	r.plainHandler = &recordHandler{registry: r, category: plainRecord, code: ExtRecord}
	r.validatingHandler = &recordHandler{registry: r, category: validatingRecord, code: ExtValidatingRecord}

	arrays := &arrayHandler{registry: r}
	mustRegister(r, reflect.TypeOf((*ndarray.Array)(nil)), arrays)
	mustRegister(r, reflect.TypeOf((*ndarray.Array)(nil)), &structuredArrayHandler{arrayHandler{registry: r}})
	mustRegister(r, reflect.TypeOf(time.Time{}), &timestampHandler{})
	mustRegister(r, reflect.TypeOf(Range{}), &rangeHandler{registry: r})
	return r
}

func mustRegister(r *Registry, nativeType reflect.Type, h Handler) {
	if err := r.Register(nativeType, h); err != nil {
		panic("serialize: built-in handler registration failed: " + err.Error())
	}
}

// Register binds a handler to a native type and to its extension
// code. Registering the identical handler again is a no-op; binding
// a different handler to an already-claimed extension code is
// ErrExtCodeCollision.
func (r *Registry) Register(nativeType reflect.Type, h Handler) error {
	if existing, ok := r.byCode[h.ExtCode()]; ok && existing != h {
		return fmt.Errorf("%w: code %d already bound", ErrExtCodeCollision, h.ExtCode())
	}
	r.byCode[h.ExtCode()] = h

	for _, bound := range r.byType[nativeType] {
		if bound == h {
			return nil
		}
	}
	r.byType[nativeType] = append(r.byType[nativeType], h)
	return nil
}

// RegisterRecord registers a named record type from a prototype value
// (either T or *T where T is a struct). Types implementing
// [Validating] land in the validating-record category and serialize
// through their canonical Export view; every other struct is a plain
// record serialized from its exported fields.
//
// Registering the same type again is a no-op. Registering a different
// type under an occupied category+name is an error: decode resolves
// purely by name, so a name must be unambiguous within its category.
func (r *Registry) RegisterRecord(prototype any) error {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("record prototype must be a struct, got %T", prototype)
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("record prototype must be a named struct type")
	}

	category := plainRecord
	handler := r.plainHandler
	if isValidating(t) {
		category = validatingRecord
		handler = r.validatingHandler
	}

	key := recordKey{category: category, name: name}
	if existing, ok := r.records[key]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%s name %q already registered to %s", category, name, existing)
	}

	if err := r.Register(t, handler); err != nil {
		return err
	}
	r.records[key] = t
	return nil
}

// handlerFor resolves the handler for a value by its exact native
// type, then by each bound handler's Matches selection.
func (r *Registry) handlerFor(value any) (Handler, error) {
	for _, h := range r.byType[reflect.TypeOf(value)] {
		if h.Matches(value) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
}

// handlerForCode resolves the handler for an extension code found in
// a stream.
func (r *Registry) handlerForCode(code uint64) (Handler, error) {
	h, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownExtensionCode, code)
	}
	return h, nil
}

// recordType resolves a record name to its registered type at decode
// time.
func (r *Registry) recordType(category recordCategory, name string) (reflect.Type, error) {
	t, ok := r.records[recordKey{category: category, name: name}]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnregisteredType, category, name)
	}
	return t, nil
}

// defaultRegistry backs the package-level entry points. Built-in
// handlers are in place before any encode/decode call can run.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// Encode, Decode, and RegisterRecord.
func Default() *Registry {
	return defaultRegistry
}

// RegisterRecord registers a record type in the default registry.
func RegisterRecord(prototype any) error {
	return defaultRegistry.RegisterRecord(prototype)
}
