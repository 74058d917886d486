// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"
)

// readInput resolves payload bytes from either a file or stdin. If the
// last element of args names a regular file on disk it is consumed as
// the input source; otherwise stdin is read to EOF.
//
// When hexMode is true the input is treated as hex-encoded payload
// data: whitespace is stripped and the hex decoded to binary.
//
// Returns the payload and args with any consumed file path removed.
// The caller decides whether leftover positional arguments are an
// error.
func readInput(args []string, hexMode bool) ([]byte, []string, error) {
	data, remaining, err := readSource(args)
	if err != nil {
		return nil, nil, err
	}
	if hexMode {
		if data, err = decodeHexInput(data); err != nil {
			return nil, nil, err
		}
	}
	return data, remaining, nil
}

func readSource(args []string) ([]byte, []string, error) {
	if length := len(args); length > 0 {
		candidate := args[length-1]
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			data, err := os.ReadFile(candidate)
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", candidate, err)
			}
			return data, args[:length-1], nil
		}
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, args, nil
}

// decodeHexInput decodes hex-encoded input to binary, tolerating
// whitespace between digit pairs ("a1 63 6b 65 79" or "a1636b6579").
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}
