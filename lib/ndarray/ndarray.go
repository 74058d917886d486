// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package ndarray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Array is a typed N-dimensional array value: a shape, a declared
// element layout, a column-major flag, and the raw element bytes in
// little-endian, row-major element order.
//
// Array carries value semantics only — construction, accessors, and
// equality. It does no arithmetic and no layout transposition: the
// column-major flag records the preferred in-memory layout of the
// producer and is restored verbatim on the consumer side.
//
// Object arrays (DType kind Object) carry boxed values in a side
// slice instead of raw bytes. They are constructible in memory but
// have no serializable byte representation.
type Array struct {
	shape   []int
	dtype   DType
	fortran bool
	data    []byte
	objects []any
}

// New returns a zero-filled array of the given dtype and shape.
func New(dtype DType, shape ...int) (*Array, error) {
	if err := dtype.Validate(); err != nil {
		return nil, err
	}
	length, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	array := &Array{shape: append([]int(nil), shape...), dtype: dtype}
	if dtype.Kind == Object {
		array.objects = make([]any, length)
	} else {
		array.data = make([]byte, length*dtype.ItemSize())
	}
	return array, nil
}

// FromBytes builds an array over raw element bytes, validating the
// invariant len(data) == product(shape) * dtype.ItemSize(). Object
// dtypes are rejected: they have no byte representation.
func FromBytes(dtype DType, shape []int, fortran bool, data []byte) (*Array, error) {
	if err := dtype.Validate(); err != nil {
		return nil, err
	}
	if dtype.Kind == Object {
		return nil, fmt.Errorf("object arrays have no byte representation")
	}
	length, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if want := length * dtype.ItemSize(); len(data) != want {
		return nil, fmt.Errorf("data length %d does not match shape %v of %s (want %d bytes)",
			len(data), shape, dtype, want)
	}
	return &Array{
		shape:   append([]int(nil), shape...),
		dtype:   dtype,
		fortran: fortran,
		data:    data,
	}, nil
}

// FromFloat64s builds a float64 array from values. With no shape the
// array is one-dimensional.
func FromFloat64s(values []float64, shape ...int) (*Array, error) {
	data := make([]byte, len(values)*8)
	for i, value := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(value))
	}
	return fromTyped(Of(Float64), len(values), shape, data)
}

// FromFloat32s builds a float32 array from values.
func FromFloat32s(values []float32, shape ...int) (*Array, error) {
	data := make([]byte, len(values)*4)
	for i, value := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(value))
	}
	return fromTyped(Of(Float32), len(values), shape, data)
}

// FromInt64s builds an int64 array from values.
func FromInt64s(values []int64, shape ...int) (*Array, error) {
	data := make([]byte, len(values)*8)
	for i, value := range values {
		binary.LittleEndian.PutUint64(data[i*8:], uint64(value))
	}
	return fromTyped(Of(Int64), len(values), shape, data)
}

// FromObjects builds an Object array over boxed values.
func FromObjects(values []any, shape ...int) (*Array, error) {
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	length, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if length != len(values) {
		return nil, fmt.Errorf("%d values do not fill shape %v", len(values), shape)
	}
	return &Array{
		shape:   append([]int(nil), shape...),
		dtype:   Of(Object),
		objects: append([]any(nil), values...),
	}, nil
}

func fromTyped(dtype DType, count int, shape []int, data []byte) (*Array, error) {
	if len(shape) == 0 {
		shape = []int{count}
	}
	array, err := FromBytes(dtype, shape, false, data)
	if err != nil {
		return nil, err
	}
	if array.Len() != count {
		return nil, fmt.Errorf("%d values do not fill shape %v", count, shape)
	}
	return array, nil
}

// Shape returns a copy of the dimension sizes.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// DType returns the declared element layout.
func (a *Array) DType() DType {
	return a.dtype
}

// Fortran reports whether the array is flagged column-major.
func (a *Array) Fortran() bool {
	return a.fortran
}

// AsFortran returns a view of the array flagged column-major. The
// underlying bytes are shared.
func (a *Array) AsFortran() *Array {
	view := *a
	view.fortran = true
	return &view
}

// Len returns the number of elements (the product of the shape; a
// zero-dimensional array has one element).
func (a *Array) Len() int {
	length := 1
	for _, dim := range a.shape {
		length *= dim
	}
	return length
}

// Bytes returns the raw element bytes. The slice is not copied;
// callers must not modify it. Object arrays return nil.
func (a *Array) Bytes() []byte {
	return a.data
}

// Objects returns the boxed values of an Object array, nil for
// byte-backed arrays.
func (a *Array) Objects() []any {
	return a.objects
}

// Float64s decodes the element bytes of a float64 array.
func (a *Array) Float64s() ([]float64, error) {
	if a.dtype.Kind != Float64 {
		return nil, fmt.Errorf("array dtype is %s, not float64", a.dtype)
	}
	values := make([]float64, a.Len())
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.data[i*8:]))
	}
	return values, nil
}

// Float32s decodes the element bytes of a float32 array.
func (a *Array) Float32s() ([]float32, error) {
	if a.dtype.Kind != Float32 {
		return nil, fmt.Errorf("array dtype is %s, not float32", a.dtype)
	}
	values := make([]float32, a.Len())
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.data[i*4:]))
	}
	return values, nil
}

// Int64s decodes the element bytes of an int64 array.
func (a *Array) Int64s() ([]int64, error) {
	if a.dtype.Kind != Int64 {
		return nil, fmt.Errorf("array dtype is %s, not int64", a.dtype)
	}
	values := make([]int64, a.Len())
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(a.data[i*8:]))
	}
	return values, nil
}

// Equal reports whether two arrays have the same dtype, shape,
// layout flag, and element content.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	if !a.dtype.Equal(other.dtype) || a.fortran != other.fortran {
		return false
	}
	if len(a.shape) != len(other.shape) {
		return false
	}
	for i, dim := range a.shape {
		if dim != other.shape[i] {
			return false
		}
	}
	if a.dtype.Kind == Object {
		return reflect.DeepEqual(a.objects, other.objects)
	}
	return bytes.Equal(a.data, other.data)
}

// String returns a short description for logs and test failures.
func (a *Array) String() string {
	return fmt.Sprintf("ndarray(%s, shape=%v, fortran=%t)", a.dtype, a.shape, a.fortran)
}

func checkShape(shape []int) (int, error) {
	length := 1
	for _, dim := range shape {
		if dim < 0 {
			return 0, fmt.Errorf("negative dimension in shape %v", shape)
		}
		length *= dim
	}
	return length, nil
}
