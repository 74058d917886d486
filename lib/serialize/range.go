// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
)

// Range is a half-open slice selection: an ordered (start, stop,
// step) triple in which each bound is optional. A nil bound means
// "unspecified" and survives the round trip as nil.
type Range struct {
	Start *int64
	Stop  *int64
	Step  *int64
}

// NewRange returns a fully specified range.
func NewRange(start, stop, step int64) Range {
	return Range{Start: &start, Stop: &stop, Step: &step}
}

// Int64 returns a pointer to v, for building partially specified
// ranges in literal form.
func Int64(v int64) *int64 {
	return &v
}

func (r Range) String() string {
	format := func(bound *int64) string {
		if bound == nil {
			return "nil"
		}
		return fmt.Sprintf("%d", *bound)
	}
	return fmt.Sprintf("range(%s, %s, %s)", format(r.Start), format(r.Stop), format(r.Step))
}

// rangeHandler serializes Range values (extension code 5) as a
// core-encoded three-element sequence with nulls for unspecified
// bounds. The nested encode runs with compression disabled like every
// other handler; the whole-buffer compression pass belongs to the
// outermost frame only.
type rangeHandler struct {
	registry *Registry
}

func (h *rangeHandler) ExtCode() uint64 { return ExtRange }

func (h *rangeHandler) Matches(value any) bool {
	_, ok := value.(Range)
	return ok
}

func (h *rangeHandler) Encode(value any) ([]byte, error) {
	r, ok := value.(Range)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a Range", ErrUnsupportedType, value)
	}
	return encodeTree(h.registry, []any{r.Start, r.Stop, r.Step})
}

func (h *rangeHandler) Decode(payload []byte) (any, error) {
	decoded, err := decodeTree(h.registry, payload, false)
	if err != nil {
		return nil, fmt.Errorf("range payload: %w", err)
	}
	triple, ok := decoded.([]any)
	if !ok || len(triple) != 3 {
		return nil, fmt.Errorf("range payload is not a three-element sequence: %T", decoded)
	}

	bounds := make([]*int64, 3)
	for i, element := range triple {
		if element == nil {
			continue
		}
		bound, err := asInt64(element)
		if err != nil {
			return nil, fmt.Errorf("range bound %d: %w", i, err)
		}
		bounds[i] = &bound
	}
	return Range{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}, nil
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%T is not an integer", value)
	}
}
