// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// timestampHandler serializes time.Time values (extension code 3) as
// ASCII decimal seconds since the Unix epoch with exactly six
// fractional digits. Sub-microsecond precision is not preserved. The
// text form is deliberately dumb: any peer that can parse a decimal
// number can reconstruct the instant.
type timestampHandler struct{}

func (h *timestampHandler) ExtCode() uint64 { return ExtTimestamp }

func (h *timestampHandler) Matches(value any) bool {
	_, ok := value.(time.Time)
	return ok
}

func (h *timestampHandler) Encode(value any) ([]byte, error) {
	instant, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a time.Time", ErrUnsupportedType, value)
	}
	micros := instant.UnixMicro()
	sign := ""
	if micros < 0 {
		// Decimal notation is sign-magnitude: -0.5s is "-0.500000",
		// not floor/remainder arithmetic.
		sign = "-"
		micros = -micros
	}
	return fmt.Appendf(nil, "%s%d.%06d", sign, micros/1e6, micros%1e6), nil
}

func (h *timestampHandler) Decode(payload []byte) (any, error) {
	seconds, err := strconv.ParseFloat(string(payload), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedTimestamp, payload)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedTimestamp, payload)
	}
	return time.UnixMicro(int64(math.Round(seconds * 1e6))), nil
}
