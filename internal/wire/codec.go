package wire

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)


//=========================================== Wire Codec
//
// Hand-written Marshal/Unmarshal against protowire's tag/varint/length-
// delimited primitives — the same low-level calls protoc-gen-go itself
// emits. No .proto/.pb.go files exist in the retrieval pack, so these
// messages are encoded directly rather than through generated code.


func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" { return b }
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(s))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 { return b }
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 { return b }
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v { return b }
	return appendVarint(b, num, 1)
}

func appendStringList(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, []byte(v))
	}
	return b
}

// decodeFields walks a buffer of tagged fields, calling fn for every
// field number/type/value and skipping unknown fields.
func decodeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 { return errors.New(string(DecodeErr)) }
		b = b[n:]

		consumed, err := fn(num, typ, b)
		if err != nil { return err }
		if consumed < 0 {
			consumed = protowire.ConsumeFieldValue(num, typ, b)
			if consumed < 0 { return errors.New(string(DecodeErr)) }
		}
		b = b[consumed:]
	}
	return nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 { return "", -1, errors.New(string(DecodeErr)) }
	return string(v), n, nil
}

func consumeBytesField(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 { return nil, -1, errors.New(string(DecodeErr)) }
	out := make([]byte, len(v))
	copy(out, v)
	return out, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 { return 0, -1, errors.New(string(DecodeErr)) }
	return v, n, nil
}
