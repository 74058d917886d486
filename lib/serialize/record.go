// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
	"reflect"
	"strings"
)

// Validating marks record types whose serialized form is their own
// canonical exported view rather than raw field state. Export
// produces the field map that goes on the wire (post-validation,
// post-coercion); Validate is called after reconstruction on decode,
// and a failure aborts the whole decode.
type Validating interface {
	Export() (map[string]any, error)
	Validate() error
}

var validatingInterface = reflect.TypeOf((*Validating)(nil)).Elem()

func isValidating(t reflect.Type) bool {
	return t.Implements(validatingInterface) ||
		reflect.PointerTo(t).Implements(validatingInterface)
}

// recordHandler serializes named records (extension codes 4 and 6,
// one instance per category). The payload is a core-encoded pair:
//
//	[type_name, {field: value, ...}]
//
// The name indirection is the extensibility mechanism: a record field
// may itself be an array, a nested record, or a range, and everything
// composes by recursing through the same encode/decode entry points.
// Decode resolves the name against the registry for this handler's
// category; an unregistered name fails — there is no implicit type
// creation.
type recordHandler struct {
	registry *Registry
	category recordCategory
	code     uint64
}

func (h *recordHandler) ExtCode() uint64 { return h.code }

// Matches selects this handler when the value's concrete type is
// registered under this handler's category.
func (h *recordHandler) Matches(value any) bool {
	t := reflect.Indirect(reflect.ValueOf(value)).Type()
	registered, ok := h.registry.records[recordKey{category: h.category, name: t.Name()}]
	return ok && registered == t
}

func (h *recordHandler) Encode(value any) ([]byte, error) {
	rv := reflect.Indirect(reflect.ValueOf(value))
	name := rv.Type().Name()

	var fields map[string]any
	var err error
	if h.category == validatingRecord {
		fields, err = exportCanonical(value)
	} else {
		fields, err = exportRaw(rv)
	}
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}

	// Nested encode with compression disabled; see the design rule on
	// Handler.
	return encodeTree(h.registry, []any{name, fields})
}

func (h *recordHandler) Decode(payload []byte) (any, error) {
	decoded, err := decodeTree(h.registry, payload, false)
	if err != nil {
		return nil, fmt.Errorf("record payload: %w", err)
	}
	pair, ok := decoded.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("record payload is not a [name, fields] pair: %T", decoded)
	}
	name, ok := pair[0].(string)
	if !ok {
		return nil, fmt.Errorf("record name is %T, not a string", pair[0])
	}
	fields, ok := pair[1].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record %q fields are %T, not a map", name, pair[1])
	}

	recordType, err := h.registry.recordType(h.category, name)
	if err != nil {
		return nil, err
	}

	pointer := reflect.New(recordType)
	if err := setFields(pointer.Elem(), fields); err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}

	if h.category == validatingRecord {
		if err := pointer.Interface().(Validating).Validate(); err != nil {
			return nil, fmt.Errorf("record %q failed validation: %w", name, err)
		}
	}
	return pointer.Elem().Interface(), nil
}

// exportRaw collects every exported field of a plain record into a
// field map — all current field state, not a declared subset.
func exportRaw(rv reflect.Value) (map[string]any, error) {
	t := rv.Type()
	fields := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, ok := fieldName(field)
		if !ok {
			continue
		}
		fields[name] = rv.Field(i).Interface()
	}
	return fields, nil
}

// exportCanonical obtains a validating record's field map from its
// own Export method.
func exportCanonical(value any) (map[string]any, error) {
	validating, ok := value.(Validating)
	if !ok {
		// Export/Validate may be declared on the pointer receiver
		// while the value travels by value; take an addressable copy.
		pointer := reflect.New(reflect.Indirect(reflect.ValueOf(value)).Type())
		pointer.Elem().Set(reflect.Indirect(reflect.ValueOf(value)))
		validating, ok = pointer.Interface().(Validating)
		if !ok {
			return nil, fmt.Errorf("%T does not implement Validating", value)
		}
	}
	return validating.Export()
}

// fieldName resolves the wire name of a struct field: the cbor or
// json struct tag when present, the Go field name otherwise.
// Unexported and tag-suppressed ("-") fields are skipped.
func fieldName(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}
	for _, key := range []string{"cbor", "json"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
		break
	}
	return field.Name, true
}

// setFields assigns a decoded field map onto a freshly constructed
// record. Every key must resolve to a field: an unknown key is an
// error, not a silent drop.
func setFields(record reflect.Value, fields map[string]any) error {
	t := record.Type()
	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name, ok := fieldName(t.Field(i)); ok {
			index[name] = i
		}
	}

	for name, value := range fields {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		if err := assignValue(record.Field(i), value); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

// assignValue sets a decoded value onto a destination field,
// converting through the representations the generic core decoder
// produces: int64/uint64 for integers, float64 for floats, []any for
// sequences, map[string]any for maps. Extension values (arrays,
// records, timestamps, ranges) were already lifted to their concrete
// types and assign directly.
func assignValue(dst reflect.Value, value any) error {
	if value == nil {
		dst.SetZero()
		return nil
	}
	sv := reflect.ValueOf(value)

	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	if convertible(sv.Type(), dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		element := reflect.New(dst.Type().Elem())
		if err := assignValue(element.Elem(), value); err != nil {
			return err
		}
		dst.Set(element)
		return nil

	case reflect.Slice:
		elements, ok := value.([]any)
		if !ok {
			break
		}
		slice := reflect.MakeSlice(dst.Type(), len(elements), len(elements))
		for i, element := range elements {
			if err := assignValue(slice.Index(i), element); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		dst.Set(slice)
		return nil

	case reflect.Map:
		entries, ok := value.(map[string]any)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			break
		}
		m := reflect.MakeMapWithSize(dst.Type(), len(entries))
		for key, element := range entries {
			slot := reflect.New(dst.Type().Elem()).Elem()
			if err := assignValue(slot, element); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			m.SetMapIndex(reflect.ValueOf(key).Convert(dst.Type().Key()), slot)
		}
		dst.Set(m)
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, dst.Type())
}

// convertible limits reflect conversion to the safe cases: numeric to
// numeric, and string/byte-slice interchange. (Unrestricted
// reflect conversion would happily turn int64(65) into "A".)
func convertible(src, dst reflect.Type) bool {
	if isNumeric(src.Kind()) && isNumeric(dst.Kind()) {
		return true
	}
	bytesType := reflect.TypeOf([]byte(nil))
	if src.Kind() == reflect.String && dst == bytesType {
		return true
	}
	if src == bytesType && dst.Kind() == reflect.String {
		return true
	}
	return false
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
