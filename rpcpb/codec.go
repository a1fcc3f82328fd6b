// Package rpcpb defines the wire messages and service descriptors every
// vault gRPC service uses. In place of protoc-generated stubs — there is no
// IDL compiler in this build environment — messages are plain Go structs
// marshaled with the teacher's own reflection-based
// github.com/dedis/protobuf encoder, registered as a grpc/encoding.Codec: no
// schema compiler, just Go types carrying the wire shape directly.
package rpcpb

import (
	"fmt"

	"github.com/dedis/protobuf"
	"google.golang.org/grpc/encoding"
)

// codecName overrides grpc-go's built-in "proto" codec so hand-written
// message structs flow over the same Content-Type grpc-go negotiates by
// default, without a protoc-generated protobuf dependency.
const codecName = "proto"

func init() {
	encoding.RegisterCodec(dedisProtobufCodec{})
}

type dedisProtobufCodec struct{}

func (dedisProtobufCodec) Name() string { return codecName }

func (dedisProtobufCodec) Marshal(v any) ([]byte, error) {
	buf, err := protobuf.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("rpcpb: marshal %T: %w", v, err)
	}
	return buf, nil
}

func (dedisProtobufCodec) Unmarshal(data []byte, v any) error {
	if err := protobuf.Decode(data, v); err != nil {
		return fmt.Errorf("rpcpb: unmarshal %T: %w", v, err)
	}
	return nil
}
