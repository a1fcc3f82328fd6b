package manager_test

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/manager"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
	"github.com/jonco5555/vault/spawner"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
	"github.com/jonco5555/vault/tlsutil"
)

const numShareServers = 3

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// harness stands up a real manager.Service backed by an in-memory store and
// a goroutine-based spawner, and dials it over mutual TLS exactly as a real
// client would.
type harness struct {
	t       *testing.T
	ca      *tlsutil.CA
	svc     *manager.Service
	conn    *grpc.ClientConn
	manager rpcpb.ManagerClient
	auth    rpcpb.AuthServiceClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ca, err := tlsutil.NewCA("vault-test-ca")
	require.NoError(t, err)

	svc, err := manager.New(manager.Config{
		Store:           store.NewMemStore(),
		Spawner:         spawner.NewLocalSpawner(),
		CA:              ca,
		Group:           srpauth.RFC5054Group,
		NumShareServers: numShareServers,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Start(ctx))

	clientIdentity, err := ca.Issue("test-client", time.Hour)
	require.NoError(t, err)
	creds := credentials.NewTLS(ca.ClientTLSConfig(clientIdentity))

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dialCancel()
	conn, err := grpc.DialContext(dialCtx, svc.Addr(), grpc.WithTransportCredentials(creds), grpc.WithBlock())
	require.NoError(t, err)

	h := &harness{
		t:       t,
		ca:      ca,
		svc:     svc,
		conn:    conn,
		manager: rpcpb.NewManagerClient(conn),
		auth:    rpcpb.NewAuthServiceClient(conn),
	}
	t.Cleanup(func() {
		conn.Close()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		svc.Stop(stopCtx)
	})
	return h
}

// registerAuth computes an SRP verifier for username/password and persists
// it through AuthRegister, the step userclient.Register performs before
// Manager.Register.
func (h *harness) registerAuth(ctx context.Context, username, password string) {
	h.t.Helper()
	salt, err := srpauth.NewSalt()
	require.NoError(h.t, err)
	x := srpauth.ComputeX(username, password, salt)
	v := srpauth.RFC5054Group.ComputeVerifier(x)

	resp, err := h.auth.AuthRegister(ctx, &rpcpb.AuthRegisterRequest{
		Username: username,
		Verifier: v.String(),
		Salt:     hex.EncodeToString(salt),
	})
	require.NoError(h.t, err)
	require.True(h.t, resp.OK, resp.Err)
}

// login drives one full SecureCall handshake and returns nil on success, or
// the status error the server returned.
func (h *harness) login(ctx context.Context, username, password string) error {
	h.t.Helper()
	stream, err := h.auth.SecureCall(ctx)
	require.NoError(h.t, err)

	client := srpauth.NewClientSession(srpauth.RFC5054Group, username, password)
	A, err := client.Start()
	require.NoError(h.t, err)

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{FirstStep: &rpcpb.SRPFirstStep{Username: username}}); err != nil {
		return err
	}
	resp, err := stream.Recv()
	if err != nil {
		return err
	}
	require.NotNil(h.t, resp.SecondStep)

	B, ok := new(big.Int).SetString(resp.SecondStep.ServerPublicKey, 10)
	require.True(h.t, ok)
	salt, err := hex.DecodeString(resp.SecondStep.Salt)
	require.NoError(h.t, err)

	proof, err := client.Finish(B, salt)
	if err != nil {
		return err
	}

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{ThirdStep: &rpcpb.SRPThirdStep{
		ClientPublicKey:       A.String(),
		ClientSessionKeyProof: proof.String(),
	}}); err != nil {
		return err
	}
	ackResp, err := stream.Recv()
	if err != nil {
		return err
	}
	require.NotNil(h.t, ackResp.ThirdStepAck)
	if !ackResp.ThirdStepAck.OK {
		return status.Error(codes.Unauthenticated, "server rejected third step")
	}

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{AppReq: &rpcpb.AppRequest{PayloadType: "noop"}}); err != nil {
		return err
	}
	if _, err := stream.Recv(); err != nil {
		return err
	}
	return stream.CloseSend()
}

func TestLoginSucceedsWithCorrectPasswordAndFailsWithWrong(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerAuth(ctx, "alice", "correct horse battery staple")

	require.NoError(t, h.login(ctx, "alice", "correct horse battery staple"))

	err := h.login(ctx, "alice", "wrong password")
	require.Error(t, err)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

// registerUser drives Register for a fresh keypair, returning the share
// server's view of its own share count doesn't matter here: what matters is
// that the client ends up with a usable share + group key pair.
func registerUser(t *testing.T, h *harness, userID string) (*seal.KeyPair, *rpcpb.RegisterResponse) {
	t.Helper()
	kp, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := h.manager.Register(ctx, &rpcpb.RegisterRequest{
		UserID:        userID,
		UserPublicKey: kp.Public[:],
	})
	require.NoError(t, err)
	return kp, resp
}

func TestRegisterProducesAnOpenableShareAndGroupKey(t *testing.T) {
	h := newHarness(t)
	kp, resp := registerUser(t, h, "alice")

	qBytes, err := seal.Open(resp.EncryptedKey, kp.Private)
	require.NoError(t, err)
	var q crypto.Point
	require.NoError(t, decodeGob(qBytes, &q))
	require.NotZero(t, q.X)

	shareBytes, err := seal.Open(resp.EncryptedShare, kp.Private)
	require.NoError(t, err)
	var share crypto.Share
	require.NoError(t, decodeGob(shareBytes, &share))
	require.Equal(t, numShareServers+1, share.Index)
}

func TestRegisterRejectsADuplicateUser(t *testing.T) {
	h := newHarness(t)
	registerUser(t, h, "alice")

	kp, err := seal.GenerateKeyPair()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = h.manager.Register(ctx, &rpcpb.RegisterRequest{UserID: "alice", UserPublicKey: kp.Public[:]})
	require.Error(t, err)
	require.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestStoreAndRetrieveSecretRoundTripsIndependently(t *testing.T) {
	h := newHarness(t)
	kp, regResp := registerUser(t, h, "alice")

	qBytes, err := seal.Open(regResp.EncryptedKey, kp.Private)
	require.NoError(t, err)
	var q crypto.Point
	require.NoError(t, decodeGob(qBytes, &q))

	ctx := context.Background()
	ct1, err := crypto.Encrypt([]byte("first secret"), q)
	require.NoError(t, err)
	ct2, err := crypto.Encrypt([]byte("second secret"), q)
	require.NoError(t, err)

	_, err = h.manager.StoreSecret(ctx, &rpcpb.StoreSecretRequest{
		UserID: "alice", SecretID: "s1", Secret: rpcpb.ToWireCiphertext(*ct1),
	})
	require.NoError(t, err)
	_, err = h.manager.StoreSecret(ctx, &rpcpb.StoreSecretRequest{
		UserID: "alice", SecretID: "s2", Secret: rpcpb.ToWireCiphertext(*ct2),
	})
	require.NoError(t, err)

	// Storing the same secret id twice is rejected.
	_, err = h.manager.StoreSecret(ctx, &rpcpb.StoreSecretRequest{
		UserID: "alice", SecretID: "s1", Secret: rpcpb.ToWireCiphertext(*ct1),
	})
	require.Error(t, err)
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	// The manager returns one partial per share server; the user supplies the
	// last one from their own share.
	shareBytes, err := seal.Open(regResp.EncryptedShare, kp.Private)
	require.NoError(t, err)
	var userShare crypto.Share
	require.NoError(t, decodeGob(shareBytes, &userShare))

	resp1, err := h.manager.RetrieveSecret(ctx, &rpcpb.RetrieveSecretRequest{UserID: "alice", SecretID: "s1"})
	require.NoError(t, err)
	require.Len(t, resp1.PartialDecryptions, numShareServers)

	partials := make([]crypto.PartialDecryption, 0, len(resp1.PartialDecryptions)+1)
	for _, p := range resp1.PartialDecryptions {
		partials = append(partials, rpcpb.FromWirePartialDecryption(p))
	}
	own1, err := crypto.PartialDecrypt(rpcpb.FromWireCiphertext(resp1.Secret), userShare)
	require.NoError(t, err)
	partials = append(partials, own1)
	plain, err := crypto.Combine(partials, rpcpb.FromWireCiphertext(resp1.Secret), crypto.Params{T: numShareServers + 1, N: numShareServers + 1})
	require.NoError(t, err)
	require.Equal(t, "first secret", string(plain))

	resp2, err := h.manager.RetrieveSecret(ctx, &rpcpb.RetrieveSecretRequest{UserID: "alice", SecretID: "s2"})
	require.NoError(t, err)
	partials2 := make([]crypto.PartialDecryption, 0, len(resp2.PartialDecryptions)+1)
	for _, p := range resp2.PartialDecryptions {
		partials2 = append(partials2, rpcpb.FromWirePartialDecryption(p))
	}
	own2, err := crypto.PartialDecrypt(rpcpb.FromWireCiphertext(resp2.Secret), userShare)
	require.NoError(t, err)
	partials2 = append(partials2, own2)
	plain2, err := crypto.Combine(partials2, rpcpb.FromWireCiphertext(resp2.Secret), crypto.Params{T: numShareServers + 1, N: numShareServers + 1})
	require.NoError(t, err)
	require.Equal(t, "second secret", string(plain2))
}

func TestRetrieveSecretRequiresAnExistingUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.manager.RetrieveSecret(ctx, &rpcpb.RetrieveSecretRequest{UserID: "ghost", SecretID: "s1"})
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(err))
}
