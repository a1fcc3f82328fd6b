package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/bootstrap"
	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
	"github.com/jonco5555/vault/setup"
)

func decodeGob(t *testing.T, data []byte, v any) {
	t.Helper()
	require.NoError(t, gob.NewDecoder(bytes.NewReader(data)).Decode(v))
}

func TestGenerateSharesSealsOneShareAndTheGroupKeyPerRecipient(t *testing.T) {
	const numShareServers = 3
	threshold := numShareServers + 1
	numShares := numShareServers + 1

	var privs [][32]byte
	var pubs [][]byte
	for i := 0; i < numShares; i++ {
		kp, err := seal.GenerateKeyPair()
		require.NoError(t, err)
		privs = append(privs, kp.Private)
		pubs = append(pubs, kp.Public[:])
	}

	srv := bootstrap.New(setup.NewUnit())
	resp, err := srv.GenerateShares(context.Background(), &rpcpb.GenerateSharesRequest{
		Threshold:   int32(threshold),
		NumOfShares: int32(numShares),
		PublicKeys:  pubs,
	})
	require.NoError(t, err)
	require.Len(t, resp.EncryptedShares, numShares)

	for i, envelope := range resp.EncryptedShares {
		plaintext, err := seal.Open(envelope, privs[i])
		require.NoError(t, err)
		var share crypto.Share
		decodeGob(t, plaintext, &share)
		require.Equal(t, i+1, share.Index)
	}

	userPlaintext, err := seal.Open(resp.EncryptedKey, privs[len(privs)-1])
	require.NoError(t, err)
	var q crypto.Point
	decodeGob(t, userPlaintext, &q)
	require.False(t, q.IsZero())
}

func TestGenerateSharesTerminatesTheUnitAfterServing(t *testing.T) {
	unit := setup.NewUnit()
	srv := bootstrap.New(unit)

	kp, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	_, err = srv.GenerateShares(context.Background(), &rpcpb.GenerateSharesRequest{
		Threshold:   1,
		NumOfShares: 1,
		PublicKeys:  [][]byte{kp.Public[:]},
	})
	require.NoError(t, err)

	select {
	case <-unit.Stopped():
	default:
		t.Fatal("expected unit to be terminated after GenerateShares")
	}
}

func TestGenerateSharesRejectsMismatchedKeyCount(t *testing.T) {
	srv := bootstrap.New(setup.NewUnit())

	kp, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	_, err = srv.GenerateShares(context.Background(), &rpcpb.GenerateSharesRequest{
		Threshold:   2,
		NumOfShares: 2,
		PublicKeys:  [][]byte{kp.Public[:]},
	})
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
