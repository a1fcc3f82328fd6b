package rpcpb_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/jonco5555/vault/rpcpb"
)

func TestCodecRoundTripsGenerateSharesMessages(t *testing.T) {
	codec := encoding.GetCodec("proto")
	require.NotNil(t, codec)

	req := &rpcpb.GenerateSharesRequest{
		Threshold:   3,
		NumOfShares: 4,
		PublicKeys:  [][]byte{[]byte("k1"), []byte("k2")},
	}
	data, err := codec.Marshal(req)
	require.NoError(t, err)

	got := new(rpcpb.GenerateSharesRequest)
	require.NoError(t, codec.Unmarshal(data, got))
	require.Equal(t, req, got)
}

func TestCodecRoundTripsSecureCallOneofWrapper(t *testing.T) {
	codec := encoding.GetCodec("proto")
	msg := &rpcpb.SecureReqMsgWrapper{
		ThirdStep: &rpcpb.SRPThirdStep{
			ClientPublicKey:       "abcd",
			ClientSessionKeyProof: "ef01",
		},
	}
	data, err := codec.Marshal(msg)
	require.NoError(t, err)

	got := new(rpcpb.SecureReqMsgWrapper)
	require.NoError(t, codec.Unmarshal(data, got))
	require.Nil(t, got.FirstStep)
	require.Nil(t, got.AppReq)
	require.Equal(t, msg.ThirdStep, got.ThirdStep)
}
