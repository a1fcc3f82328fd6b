package shareserver_test

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
	"github.com/jonco5555/vault/shareserver"
)

func sealShare(t *testing.T, share crypto.Share, pub [32]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(share))
	sealed, err := seal.Seal(buf.Bytes(), pub)
	require.NoError(t, err)
	return sealed
}

func TestStoreShareRejectsDuplicateUser(t *testing.T) {
	srv, err := shareserver.New()
	require.NoError(t, err)
	ctx := context.Background()

	envelope := sealShare(t, crypto.Share{Index: 1, Y: crypto.Order}, srv.PublicKey())
	_, err = srv.StoreShare(ctx, &rpcpb.StoreShareRequest{UserID: "alice", EncryptedShare: envelope})
	require.NoError(t, err)

	_, err = srv.StoreShare(ctx, &rpcpb.StoreShareRequest{UserID: "alice", EncryptedShare: envelope})
	require.Error(t, err)
	require.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestDeleteShareRequiresExistingUser(t *testing.T) {
	srv, err := shareserver.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = srv.DeleteShare(ctx, &rpcpb.DeleteShareRequest{UserID: "ghost"})
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(err))

	envelope := sealShare(t, crypto.Share{Index: 1, Y: crypto.Order}, srv.PublicKey())
	_, err = srv.StoreShare(ctx, &rpcpb.StoreShareRequest{UserID: "bob", EncryptedShare: envelope})
	require.NoError(t, err)

	_, err = srv.DeleteShare(ctx, &rpcpb.DeleteShareRequest{UserID: "bob"})
	require.NoError(t, err)

	_, err = srv.Decrypt(ctx, &rpcpb.DecryptRequest{UserID: "bob"})
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestDecryptProducesAValidPartialContribution(t *testing.T) {
	srv, err := shareserver.New()
	require.NoError(t, err)
	ctx := context.Background()

	params := crypto.Params{T: 2, N: 3}
	gen, err := crypto.Generate(params)
	require.NoError(t, err)
	ct, err := crypto.Encrypt([]byte("hunter2"), gen.Q)
	require.NoError(t, err)

	share := gen.Shares[0]
	envelope := sealShare(t, share, srv.PublicKey())
	_, err = srv.StoreShare(ctx, &rpcpb.StoreShareRequest{UserID: "carol", EncryptedShare: envelope})
	require.NoError(t, err)

	resp, err := srv.Decrypt(ctx, &rpcpb.DecryptRequest{
		UserID: "carol",
		Secret: rpcpb.ToWireCiphertext(*ct),
	})
	require.NoError(t, err)

	want, err := crypto.PartialDecrypt(*ct, share)
	require.NoError(t, err)
	got := rpcpb.FromWirePartialDecryption(resp.PartialDecryptedSecret)
	require.Equal(t, want.Index, got.Index)
	require.True(t, want.YC1.Equal(got.YC1))
}

func TestDecryptRequiresExistingUser(t *testing.T) {
	srv, err := shareserver.New()
	require.NoError(t, err)

	_, err = srv.Decrypt(context.Background(), &rpcpb.DecryptRequest{UserID: "nobody"})
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(err))
}
