package userclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/jonco5555/vault/manager"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/spawner"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
	"github.com/jonco5555/vault/tlsutil"
	"github.com/jonco5555/vault/userclient"
)

const numShareServers = 2

func newTestClients(t *testing.T, userID string) (*userclient.Client, func()) {
	t.Helper()
	ca, err := tlsutil.NewCA("userclient-test-ca")
	require.NoError(t, err)

	svc, err := manager.New(manager.Config{
		Store:           store.NewMemStore(),
		Spawner:         spawner.NewLocalSpawner(),
		CA:              ca,
		Group:           srpauth.RFC5054Group,
		NumShareServers: numShareServers,
	})
	require.NoError(t, err)

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startCancel()
	require.NoError(t, svc.Start(startCtx))

	identity, err := ca.Issue(userID, time.Hour)
	require.NoError(t, err)
	creds := credentials.NewTLS(ca.ClientTLSConfig(identity))

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dialCancel()
	conn, err := grpc.DialContext(dialCtx, svc.Addr(), grpc.WithTransportCredentials(creds), grpc.WithBlock())
	require.NoError(t, err)

	client, err := userclient.New(userID, srpauth.RFC5054Group,
		rpcpb.NewManagerClient(conn), rpcpb.NewAuthServiceClient(conn), numShareServers)
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		svc.Stop(stopCtx)
	}
	return client, cleanup
}

func TestClientRegisterStoreAndRetrieveSecretRoundTrips(t *testing.T) {
	client, cleanup := newTestClients(t, "alice")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "hunter2"))
	require.NoError(t, client.StoreSecret(ctx, "wifi", []byte("topsecretpassword")))

	plaintext, err := client.RetrieveSecret(ctx, "wifi")
	require.NoError(t, err)
	require.Equal(t, "topsecretpassword", string(plaintext))
	require.Contains(t, client.SecretIDs(), "wifi")
}

func TestClientAuthenticateFailsWithWrongPassword(t *testing.T) {
	client, cleanup := newTestClients(t, "bob")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "correct password"))

	_, err := client.Authenticate(ctx, "correct password", "ping", []byte("hi"))
	require.NoError(t, err)

	_, err = client.Authenticate(ctx, "wrong password", "ping", []byte("hi"))
	require.Error(t, err)
}
