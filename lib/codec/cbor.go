// Copyright 2026 The Asyncio-RPC Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// MaxNestedLevels caps CBOR nesting on decode. It matches the depth
// limit the serialization layer enforces on encode, so malformed or
// hostile input fails with a decode error well before the host call
// stack is at risk.
const MaxNestedLevels = 256

// TagBase is the offset between an extension code and the CBOR tag
// number that carries it on the wire. Extension codes are small
// integers (1, 2, 3, ...); adding TagBase moves them into an
// unassigned tag range, clear of the RFC 8949 reserved tags (0-23:
// date/time, bignums, expected encodings) and the RFC 8746 typed
// array tags (64-87).
const TagBase = 40000

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes, which keeps extension payloads
// byte-comparable in tests and on the wire.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Extension payloads only ever use string map keys. When the
		// decoder's target is any (the generic decode path), it must
		// pick a concrete Go map type; the CBOR default is
		// map[interface{}]interface{}, which nothing downstream
		// wants. This setting only affects any-typed targets.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: MaxNestedLevels,
		// Generic decode yields int64 for every integer (erroring on
		// values past MaxInt64) instead of splitting positive values
		// into uint64, so decoded trees compare cleanly.
		IntDec: cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. When v is a *any, maps decode
// as map[string]any and tagged items the decoder does not recognize
// decode as cbor.Tag values, which AsTag recognizes.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Tag wraps an extension payload as the CBOR tag value that carries
// it on the wire. The payload is encoded as a byte string inside tag
// number TagBase+code.
func Tag(code uint64, payload []byte) cbor.Tag {
	return cbor.Tag{Number: TagBase + code, Content: payload}
}

// AsTag reports whether a generically decoded value is an extension
// frame, and if so returns its extension code and payload bytes.
// Tags outside the extension range, or with non-byte-string content,
// are not frames.
func AsTag(v any) (code uint64, payload []byte, ok bool) {
	tag, isTag := v.(cbor.Tag)
	if !isTag || tag.Number < TagBase {
		return 0, nil, false
	}
	payload, isBytes := tag.Content.([]byte)
	if !isBytes {
		return 0, nil, false
	}
	return tag.Number - TagBase, payload, true
}

// ForeignTag reports whether a generically decoded value is a CBOR
// tag that is not an extension frame: a tag below TagBase, or one
// whose content is not a byte string. Such tags come from a producer
// speaking a different protocol and must not pass through decode
// silently.
func ForeignTag(v any) bool {
	if _, ok := v.(cbor.Tag); !ok {
		return false
	}
	_, _, isFrame := AsTag(v)
	return !isFrame
}

// Encoder is a CBOR stream encoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Decoder = cbor.Decoder

// NewEncoder returns a CBOR encoder that writes to w using the
// standard Core Deterministic Encoding configuration.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder that reads from r using the
// standard decoding configuration.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseFirst returns the CBOR diagnostic notation for the first
// data item in data, along with the remaining unconsumed bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
