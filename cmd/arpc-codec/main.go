// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/termim/asyncio-rpc/lib/binhash"
	"github.com/termim/asyncio-rpc/lib/codec"
	"github.com/termim/asyncio-rpc/lib/compress"
	"github.com/termim/asyncio-rpc/lib/serialize"
	"gopkg.in/yaml.v3"
)

const version = "0.2.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Handle --version before anything else.
	for _, argument := range args {
		if argument == "--version" {
			fmt.Printf("arpc-codec %s\n", version)
			return 0
		}
	}

	if len(args) == 0 {
		printUsage()
		return 2
	}

	var err error
	switch args[0] {
	case "decode":
		err = decodeCommand(args[1:])
	case "encode":
		err = encodeCommand(args[1:])
	case "diag":
		err = diagCommand(args[1:])
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "error: unknown subcommand %q\n", args[0])
		printUsage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: arpc-codec <decode|encode|diag> [flags] [file]

  decode    decode a payload buffer to YAML on stdout
  encode    encode a YAML document to a payload buffer on stdout
  diag      show CBOR diagnostic notation, size, and digest

Flags (per subcommand):
  --compressor <lz4|zstd|identity>   whole-buffer compression codec
  --raw                              skip the compression pass
  -x, --hex                          treat input as hex-encoded binary
`)
}

// commonFlags holds the flags shared by all three subcommands.
type commonFlags struct {
	raw        bool
	hexInput   bool
	compressor string
}

func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.BoolVar(&common.raw, "raw", false, "treat the payload as uncompressed")
	flags.BoolVarP(&common.hexInput, "hex", "x", false, "treat input as hex-encoded binary")
	flags.StringVar(&common.compressor, "compressor", "lz4", "compression codec (lz4, zstd, identity)")
	return flags
}

func decodeCommand(args []string) error {
	var common commonFlags
	flags := newFlagSet("decode", &common)
	if err := flags.Parse(args); err != nil {
		return err
	}

	data, remaining, err := readInput(flags.Args(), common.hexInput)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return fmt.Errorf("decode takes no positional arguments besides an optional file path, got %q", remaining[0])
	}

	options, err := decodeOptions(common)
	if err != nil {
		return err
	}
	value, err := serialize.Decode(data, options...)
	if err != nil {
		return err
	}

	rendered, err := yaml.Marshal(present(value))
	if err != nil {
		return fmt.Errorf("render YAML: %w", err)
	}
	_, err = os.Stdout.Write(rendered)
	return err
}

func encodeCommand(args []string) error {
	var common commonFlags
	flags := newFlagSet("encode", &common)
	if err := flags.Parse(args); err != nil {
		return err
	}

	data, remaining, err := readInput(flags.Args(), common.hexInput)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return fmt.Errorf("encode takes no positional arguments besides an optional file path, got %q", remaining[0])
	}
	if len(data) == 0 {
		return fmt.Errorf("empty input: expected a YAML document")
	}

	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}

	options := []serialize.EncodeOption{}
	if common.raw {
		options = append(options, serialize.NoCompression())
	} else {
		compressor, err := compress.ByName(common.compressor)
		if err != nil {
			return err
		}
		options = append(options, serialize.WithCompressor(compressor))
	}

	encoded, err := serialize.Encode(value, options...)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(encoded)
	return err
}

func diagCommand(args []string) error {
	var common commonFlags
	flags := newFlagSet("diag", &common)
	if err := flags.Parse(args); err != nil {
		return err
	}

	data, remaining, err := readInput(flags.Args(), common.hexInput)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return fmt.Errorf("diag takes no positional arguments besides an optional file path, got %q", remaining[0])
	}
	if len(data) == 0 {
		return fmt.Errorf("empty input: expected payload data")
	}

	digest := binhash.HashBytes(data)
	inputLength := len(data)

	if !common.raw {
		decompressor, err := compress.ByName(common.compressor)
		if err != nil {
			return err
		}
		data, err = decompressor.Decompress(data)
		if err != nil {
			return fmt.Errorf("decompress payload: %w", err)
		}
	}

	// Process as a sequence: one notation line per data item.
	remainingBytes := data
	for len(remainingBytes) > 0 {
		notation, rest, err := codec.DiagnoseFirst(remainingBytes)
		if err != nil {
			offset := len(data) - len(remainingBytes)
			return fmt.Errorf("diagnose at byte %d: %w", offset, err)
		}
		if _, err := fmt.Println(notation); err != nil {
			return err
		}
		remainingBytes = rest
	}

	fmt.Printf("# %d bytes input, %d bytes decoded payload, blake3:%s\n",
		inputLength, len(data), binhash.FormatDigest(digest))
	return nil
}

func decodeOptions(common commonFlags) ([]serialize.DecodeOption, error) {
	if common.raw {
		return []serialize.DecodeOption{serialize.NoDecompression()}, nil
	}
	decompressor, err := compress.ByName(common.compressor)
	if err != nil {
		return nil, err
	}
	return []serialize.DecodeOption{serialize.WithDecompressor(decompressor)}, nil
}
