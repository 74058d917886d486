// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package ndarray

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is an element kind. All kinds except Object and Record are
// fixed-width primitives with a defined byte layout.
type Kind uint8

const (
	// Invalid is the zero Kind.
	Invalid Kind = iota

	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128

	// Object marks boxed, opaque elements. Object arrays exist in
	// memory but have no raw byte representation and cannot be
	// serialized.
	Object

	// Record marks a compound element layout described by the
	// Fields of the enclosing DType.
	Record
)

var kindNames = map[Kind]string{
	Bool:       "bool",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
	Object:     "object",
	Record:     "record",
}

var kindSizes = map[Kind]int{
	Bool:       1,
	Int8:       1,
	Int16:      2,
	Int32:      4,
	Int64:      8,
	Uint8:      1,
	Uint16:     2,
	Uint32:     4,
	Uint64:     8,
	Float32:    4,
	Float64:    8,
	Complex64:  8,
	Complex128: 16,
}

// String returns the canonical name of the kind ("float64", ...).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", uint8(k))
}

// Size returns the element width in bytes. Object and Record kinds
// have no intrinsic width and return 0; a record layout's width comes
// from DType.ItemSize.
func (k Kind) Size() int {
	return kindSizes[k]
}

// IsPrimitive reports whether the kind is a fixed-width primitive.
func (k Kind) IsPrimitive() bool {
	_, ok := kindSizes[k]
	return ok
}

// ParseKind parses a canonical kind name.
func ParseKind(name string) (Kind, error) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, nil
		}
	}
	return Invalid, fmt.Errorf("unknown element kind: %q", name)
}

// Field is one named component of a record layout. Field kinds must
// be primitive; records do not nest inside records.
type Field struct {
	Name string
	Kind Kind
}

// DType describes the declared element layout of an array: either a
// primitive kind, the Object kind, or a Record layout with Fields.
type DType struct {
	Kind   Kind
	Fields []Field
}

// Of returns the DType for a primitive (or Object) element kind.
func Of(kind Kind) DType {
	return DType{Kind: kind}
}

// RecordOf returns a record DType with the given fields.
func RecordOf(fields ...Field) DType {
	return DType{Kind: Record, Fields: fields}
}

// IsRecord reports whether the dtype is a compound record layout.
func (d DType) IsRecord() bool {
	return d.Kind == Record
}

// ItemSize returns the width of one element in bytes. For record
// layouts it is the packed sum of the field widths. Object dtypes
// have no byte width and return 0.
func (d DType) ItemSize() int {
	if d.Kind != Record {
		return d.Kind.Size()
	}
	size := 0
	for _, field := range d.Fields {
		size += field.Kind.Size()
	}
	return size
}

// Validate checks that the dtype is well formed: a known kind, and
// for record layouts at least one field, unique field names, and
// primitive field kinds.
func (d DType) Validate() error {
	switch {
	case d.Kind == Record:
		if len(d.Fields) == 0 {
			return errors.New("record dtype must have at least one field")
		}
		seen := make(map[string]bool, len(d.Fields))
		for _, field := range d.Fields {
			if field.Name == "" {
				return errors.New("record dtype field name must not be empty")
			}
			if seen[field.Name] {
				return fmt.Errorf("record dtype has duplicate field %q", field.Name)
			}
			seen[field.Name] = true
			if !field.Kind.IsPrimitive() {
				return fmt.Errorf("record dtype field %q has non-primitive kind %s",
					field.Name, field.Kind)
			}
		}
		return nil
	case d.Kind == Object:
		if len(d.Fields) != 0 {
			return errors.New("object dtype must not have fields")
		}
		return nil
	case d.Kind.IsPrimitive():
		if len(d.Fields) != 0 {
			return fmt.Errorf("%s dtype must not have fields", d.Kind)
		}
		return nil
	default:
		return fmt.Errorf("invalid element kind %d", uint8(d.Kind))
	}
}

// Equal reports whether two dtypes describe the same layout.
func (d DType) Equal(other DType) bool {
	if d.Kind != other.Kind || len(d.Fields) != len(other.Fields) {
		return false
	}
	for i, field := range d.Fields {
		if field != other.Fields[i] {
			return false
		}
	}
	return true
}

// String returns the canonical text form: the kind name for
// primitive and object dtypes, "record{name:kind,...}" for record
// layouts. ParseDType inverts it.
func (d DType) String() string {
	if d.Kind != Record {
		return d.Kind.String()
	}
	var builder strings.Builder
	builder.WriteString("record{")
	for i, field := range d.Fields {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(field.Name)
		builder.WriteByte(':')
		builder.WriteString(field.Kind.String())
	}
	builder.WriteByte('}')
	return builder.String()
}

// ParseDType parses the canonical text form produced by
// DType.String.
func ParseDType(text string) (DType, error) {
	if inner, ok := strings.CutPrefix(text, "record{"); ok {
		inner, ok = strings.CutSuffix(inner, "}")
		if !ok {
			return DType{}, fmt.Errorf("malformed record dtype: %q", text)
		}
		var fields []Field
		for _, part := range strings.Split(inner, ",") {
			name, kindName, found := strings.Cut(part, ":")
			if !found || name == "" {
				return DType{}, fmt.Errorf("malformed record dtype field: %q", part)
			}
			kind, err := ParseKind(kindName)
			if err != nil {
				return DType{}, fmt.Errorf("record dtype field %q: %w", name, err)
			}
			fields = append(fields, Field{Name: name, Kind: kind})
		}
		dtype := RecordOf(fields...)
		if err := dtype.Validate(); err != nil {
			return DType{}, err
		}
		return dtype, nil
	}

	kind, err := ParseKind(text)
	if err != nil {
		return DType{}, err
	}
	return Of(kind), nil
}
