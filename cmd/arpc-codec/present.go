// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"

	"github.com/termim/asyncio-rpc/lib/ndarray"
	"github.com/termim/asyncio-rpc/lib/serialize"
)

// present rewrites a decoded value tree into plain maps, slices, and
// scalars so the YAML output stays readable. Arrays become a map of
// shape/dtype/data, ranges a map of their bounds; everything else
// passes through for yaml.v3 to render directly.
func present(value any) any {
	switch v := value.(type) {
	case *ndarray.Array:
		return presentArray(v)
	case serialize.Range:
		return map[string]any{
			"start": v.Start,
			"stop":  v.Stop,
			"step":  v.Step,
		}
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, element := range v {
			out[key] = present(element)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, element := range v {
			out[i] = present(element)
		}
		return out
	default:
		return value
	}
}

// presentArray renders an array as its metadata plus element data.
// Elements of the common numeric kinds are listed as values; other
// layouts (structured records, exotic kinds) fall back to the raw
// little-endian item bytes in hex.
func presentArray(a *ndarray.Array) map[string]any {
	out := map[string]any{
		"shape": a.Shape(),
		"dtype": a.DType().String(),
	}
	if a.Fortran() {
		out["fortran"] = true
	}

	switch a.DType().Kind {
	case ndarray.Float64:
		if values, err := a.Float64s(); err == nil {
			out["data"] = values
			return out
		}
	case ndarray.Float32:
		if values, err := a.Float32s(); err == nil {
			out["data"] = values
			return out
		}
	case ndarray.Int64:
		if values, err := a.Int64s(); err == nil {
			out["data"] = values
			return out
		}
	}
	out["data"] = hex.EncodeToString(a.Bytes())
	return out
}
