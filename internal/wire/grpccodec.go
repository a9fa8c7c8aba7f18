package wire

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)


//=========================================== Wire Codec Registration
//
// Registers a Codec named "proto" that delegates to each message's own
// Marshal/Unmarshal methods instead of protobuf-v2 reflection. This
// overrides grpc's built-in default codec of the same name, so every
// grpc.Dial/grpc.NewServer call site looks exactly like one written
// against generated protobuf types.


type marshaler interface {
	Marshal() ([]byte, error)
}

type unmarshaler interface {
	Unmarshal([]byte) error
}

type codec struct{}

func (codec) Name() string { return "proto" }

func (codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(marshaler)
	if !ok { return nil, fmt.Errorf("%s: %T does not implement Marshal", EncodeErr, v) }
	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(unmarshaler)
	if !ok { return fmt.Errorf("%s: %T does not implement Unmarshal", DecodeErr, v) }
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(codec{})
}
