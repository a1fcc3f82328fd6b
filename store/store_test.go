package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonco5555/vault/setup"
	"github.com/jonco5555/vault/store"
)

func openSQLStore(t *testing.T) *store.SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "vault.db")
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testStores(t *testing.T) map[string]store.Store {
	return map[string]store.Store{
		"sqlite": openSQLStore(t),
		"mem":    store.NewMemStore(),
	}
}

func TestUserLifecycle(t *testing.T) {
	for name, s := range testStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			exists, err := s.UserExists(ctx, "alice")
			require.NoError(t, err)
			require.False(t, exists)

			require.NoError(t, s.AddUser(ctx, "alice", []byte("pubkey")))

			exists, err = s.UserExists(ctx, "alice")
			require.NoError(t, err)
			require.True(t, exists)

			pub, err := s.GetUserPublicKey(ctx, "alice")
			require.NoError(t, err)
			require.Equal(t, []byte("pubkey"), pub)

			err = s.AddUser(ctx, "alice", []byte("other"))
			require.ErrorIs(t, err, store.ErrAlreadyExists)

			_, err = s.GetUserPublicKey(ctx, "nobody")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestSecretIsKeyedByUserAndSecretID(t *testing.T) {
	for name, s := range testStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.AddSecret(ctx, "alice", "github-token", []byte("ct-1")))
			require.NoError(t, s.AddSecret(ctx, "alice", "aws-key", []byte("ct-2")))
			require.NoError(t, s.AddSecret(ctx, "bob", "github-token", []byte("ct-3")))

			got, err := s.GetSecret(ctx, "alice", "github-token")
			require.NoError(t, err)
			require.Equal(t, []byte("ct-1"), got)

			got, err = s.GetSecret(ctx, "bob", "github-token")
			require.NoError(t, err)
			require.Equal(t, []byte("ct-3"), got)

			_, err = s.GetSecret(ctx, "alice", "missing")
			require.ErrorIs(t, err, store.ErrNotFound)

			err = s.AddSecret(ctx, "alice", "github-token", []byte("dup"))
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		})
	}
}

func TestServerRegistrationAndRemoval(t *testing.T) {
	for name, s := range testStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := setup.ServiceRecord{
				Type:        setup.ServiceTypeShareServer,
				ContainerID: "c1",
				IPAddress:   "10.0.0.5",
				PublicKey:   []byte("pub1"),
			}
			require.NoError(t, s.AddServer(ctx, rec))

			got, err := s.GetServer(ctx, "c1")
			require.NoError(t, err)
			require.Equal(t, rec, got)

			keys, err := s.GetServersKeys(ctx)
			require.NoError(t, err)
			require.Equal(t, [][]byte{[]byte("pub1")}, keys)

			addrs, err := s.GetServersAddresses(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"10.0.0.5"}, addrs)

			require.NoError(t, s.RemoveServer(ctx, "c1"))
			_, err = s.GetServer(ctx, "c1")
			require.ErrorIs(t, err, store.ErrNotFound)

			err = s.RemoveServer(ctx, "c1")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestAuthClientLifecycle(t *testing.T) {
	for name, s := range testStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := store.AuthRecord{Username: "alice", Verifier: "12345", Salt: "abcd"}
			require.NoError(t, s.AddAuthClient(ctx, rec))

			got, err := s.GetAuthClient(ctx, "alice")
			require.NoError(t, err)
			require.Equal(t, rec, got)

			require.NoError(t, s.RemoveAuthClient(ctx, "alice"))
			_, err = s.GetAuthClient(ctx, "alice")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestOpenCreatesParentlessDBFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested.db")
	s, err := store.Open(dsn)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dsn)
	require.NoError(t, err)
}
