// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

// Command arpc-codec inspects and produces encoded payload buffers
// from the command line.
//
//	arpc-codec decode [flags] [file]   payload -> YAML on stdout
//	arpc-codec encode [flags] [file]   YAML -> payload on stdout
//	arpc-codec diag   [flags] [file]   payload -> CBOR diagnostic notation
//
// Input is read from stdin, or from a trailing file path argument.
// Payloads are LZ4-compressed by default; --compressor selects zstd
// or identity, and --raw skips the compression pass entirely. With
// --hex, input is treated as hex-encoded binary (whitespace ignored).
//
// decode resolves extension frames through the built-in registry:
// typed arrays, timestamps, and ranges render as tagged YAML maps.
// Named record frames require their types to be registered in the
// consuming process, which a one-shot tool cannot do, so decode fails
// on them; use diag to inspect such payloads frame by frame.
package main
