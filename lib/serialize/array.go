// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"

	"github.com/termim/asyncio-rpc/lib/ndarray"
)

// arrayHandler serializes typed N-dimensional arrays (extension code
// 1). The payload is itself a core-encoded map:
//
//	{"shape": [...], "dtype": "float64", "fortran": bool, "data": bytes}
//
// with the element bytes carried verbatim in row-major element order.
// The dictionary form (rather than an opaque save-file blob) keeps
// the payload reconstructible from any implementation of the core
// encoding.
type arrayHandler struct {
	registry *Registry
}

func (h *arrayHandler) ExtCode() uint64 { return ExtArray }

// Matches selects this handler for arrays whose declared element
// layout is not a compound record. Selection is on the value's
// element layout, not the container type: plain and record-dtype
// arrays share *ndarray.Array.
func (h *arrayHandler) Matches(value any) bool {
	array, ok := value.(*ndarray.Array)
	return ok && !array.DType().IsRecord()
}

func (h *arrayHandler) Encode(value any) ([]byte, error) {
	array, ok := value.(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an ndarray", ErrUnsupportedType, value)
	}
	return encodeArray(h.registry, array)
}

func (h *arrayHandler) Decode(payload []byte) (any, error) {
	return decodeArray(h.registry, payload)
}

// structuredArrayHandler serializes record-dtype arrays (extension
// code 2). The payload shape is identical to the typed array payload;
// only the dtype string denotes a compound layout. Distinguishing the
// two layouts is this handler pair's responsibility, via Matches, not
// the registry's.
type structuredArrayHandler struct {
	arrayHandler
}

func (h *structuredArrayHandler) ExtCode() uint64 { return ExtStructuredArray }

func (h *structuredArrayHandler) Matches(value any) bool {
	array, ok := value.(*ndarray.Array)
	return ok && array.DType().IsRecord()
}

func encodeArray(registry *Registry, array *ndarray.Array) ([]byte, error) {
	if array.DType().Kind == ndarray.Object {
		return nil, fmt.Errorf("%w: object elements are not encodable", ErrUnsupportedElementType)
	}
	// Nested encode with compression disabled: compression is a
	// property of the outermost transport frame only.
	return encodeTree(registry, map[string]any{
		"shape":   array.Shape(),
		"dtype":   array.DType().String(),
		"fortran": array.Fortran(),
		"data":    array.Bytes(),
	})
}

func decodeArray(registry *Registry, payload []byte) (any, error) {
	decoded, err := decodeTree(registry, payload, false)
	if err != nil {
		return nil, fmt.Errorf("array payload: %w", err)
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("array payload is %T, not a map", decoded)
	}

	dtypeName, ok := fields["dtype"].(string)
	if !ok {
		return nil, fmt.Errorf("array payload has no dtype string")
	}
	dtype, err := ndarray.ParseDType(dtypeName)
	if err != nil {
		return nil, fmt.Errorf("array payload: %w", err)
	}
	if dtype.Kind == ndarray.Object {
		return nil, fmt.Errorf("%w: object elements are not decodable", ErrUnsupportedElementType)
	}

	shapeValues, ok := fields["shape"].([]any)
	if !ok {
		return nil, fmt.Errorf("array payload has no shape sequence")
	}
	shape := make([]int, len(shapeValues))
	for i, dimension := range shapeValues {
		shape[i], err = asInt(dimension)
		if err != nil {
			return nil, fmt.Errorf("array shape dimension %d: %w", i, err)
		}
	}

	fortran, _ := fields["fortran"].(bool)
	data, ok := fields["data"].([]byte)
	if !ok {
		// An empty byte string may decode as nil; accept it and let
		// the length invariant below decide.
		if fields["data"] != nil {
			return nil, fmt.Errorf("array payload data is %T, not bytes", fields["data"])
		}
	}

	array, err := ndarray.FromBytes(dtype, shape, fortran, data)
	if err != nil {
		return nil, fmt.Errorf("array payload: %w", err)
	}
	return array, nil
}

// asInt converts the integer representations the generic core decoder
// produces (int64 for negative, uint64 for non-negative) to int.
func asInt(value any) (int, error) {
	switch v := value.(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%T is not an integer", value)
	}
}
