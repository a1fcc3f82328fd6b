// Package manager implements the vault's orchestration hub: it spawns and
// tears down bootstrap and share-server units through a spawner.Spawner,
// persists users/secrets/servers through a store.Store, and serves the
// Manager and AuthService gRPC front doors, grounded line-for-line on
// original_source/src/vault/manager/manager.py.
package manager

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dedis/onet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/setup"
	"github.com/jonco5555/vault/spawner"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
	"github.com/jonco5555/vault/tlsutil"
)

// stopGrace bounds how long a graceful stop waits before the server is
// force-stopped, matching manager.py's self._server.stop(grace=5.0).
const stopGrace = 5 * time.Second

// spawnerHandleRecord remembers enough about a spawned unit to terminate it
// later: the spawner handle to release, and the address its own SetupUnit
// RPC listens on.
type spawnerHandleRecord struct {
	handle  spawner.Handle
	address string
}

// Service is one manager process. It implements rpcpb.ManagerServer and
// hosts an AuthService alongside it.
type Service struct {
	st      store.Store
	master  *setup.Master
	spawner spawner.Spawner
	ca      *tlsutil.CA

	numShareServers int

	clientIdentity  *tlsutil.Identity
	setupMasterAddr string

	ready atomic.Bool

	mu                 sync.Mutex
	shareServerHandles []spawnerHandleRecord

	auth *AuthService

	setupMasterServer *grpc.Server
	mainListener      net.Listener
	mainServer        *grpc.Server
}

// Config is the fixed configuration a manager process is constructed with.
type Config struct {
	Store           store.Store
	Spawner         spawner.Spawner
	CA              *tlsutil.CA
	Group           srpauth.Group
	NumShareServers int
}

// New constructs a manager service. It does not yet listen on the network or
// spawn anything; call Start for that.
func New(cfg Config) (*Service, error) {
	identity, err := cfg.CA.Issue("manager", componentCertValidity)
	if err != nil {
		return nil, fmt.Errorf("manager: issue identity: %w", err)
	}
	s := &Service{
		st:              cfg.Store,
		master:          setup.NewMaster(),
		spawner:         cfg.Spawner,
		ca:              cfg.CA,
		numShareServers: cfg.NumShareServers,
		clientIdentity:  identity,
		auth:            newAuthService(cfg.Store, cfg.Group),
	}
	return s, nil
}

// Start brings up the SetupMaster listener, launches every configured
// share server, then brings up the Manager/AuthService listener — the same
// ordering as manager.py's start(): db, setup master, share servers, then
// the public server.
func (s *Service) Start(ctx context.Context) error {
	setupLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("manager: listen setup master: %w", err)
	}
	s.setupMasterAddr = setupLis.Addr().String()

	setupIdentity, err := s.ca.Issue("setup-master", componentCertValidity)
	if err != nil {
		return fmt.Errorf("manager: issue setup master identity: %w", err)
	}
	s.setupMasterServer = grpc.NewServer(grpc.Creds(credentials.NewTLS(s.ca.ServerTLSConfig(setupIdentity))))
	rpcpb.RegisterSetupMasterServer(s.setupMasterServer, newSetupMasterServer(s.master, s.st))
	go s.setupMasterServer.Serve(setupLis)

	if err := s.launchAllShareServers(ctx); err != nil {
		return err
	}

	mainLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("manager: listen main: %w", err)
	}
	s.mainListener = mainLis

	mainIdentity, err := s.ca.Issue("manager-front-door", componentCertValidity)
	if err != nil {
		return fmt.Errorf("manager: issue front door identity: %w", err)
	}
	s.mainServer = grpc.NewServer(grpc.Creds(credentials.NewTLS(s.ca.ServerTLSConfig(mainIdentity))))
	rpcpb.RegisterManagerServer(s.mainServer, s)
	rpcpb.RegisterAuthServiceServer(s.mainServer, s.auth)
	go s.mainServer.Serve(mainLis)

	s.ready.Store(true)
	log.Lvl1("manager: server started on", mainLis.Addr())
	return nil
}

// Addr returns the address the Manager/AuthService front door listens on.
func (s *Service) Addr() string {
	return s.mainListener.Addr().String()
}

// Stop tears the manager down in the mirrored order of Start: stop
// accepting new requests, terminate every share server, then stop the
// setup master.
func (s *Service) Stop(ctx context.Context) error {
	s.ready.Store(false)
	gracefulStop(s.mainServer)

	s.mu.Lock()
	handles := s.shareServerHandles
	s.shareServerHandles = nil
	s.mu.Unlock()

	for _, h := range handles {
		if err := s.terminateAndRemove(ctx, h); err != nil {
			log.Error("manager: terminate share server:", err)
		}
	}

	gracefulStop(s.setupMasterServer)
	log.Lvl1("manager: server stopped")
	return nil
}

func gracefulStop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGrace):
		srv.Stop()
	}
}

func (s *Service) launchAllShareServers(ctx context.Context) error {
	for i := 0; i < s.numShareServers; i++ {
		log.Lvl2("manager: launching share server", i)
		h, err := s.spawner.Spawn(ctx, "vault-share", s.shareServerUnit)
		if err != nil {
			return fmt.Errorf("manager: spawn share server: %w", err)
		}
		rec, err := s.master.WaitForRegistration(ctx, h.ContainerID, registrationTimeout)
		if err != nil {
			return fmt.Errorf("manager: share server %q did not register: %w", h.ContainerID, err)
		}
		s.mu.Lock()
		s.shareServerHandles = append(s.shareServerHandles, spawnerHandleRecord{handle: h, address: rec.IPAddress})
		s.mu.Unlock()
	}
	return nil
}

// Register provisions a new user: adds the user row, spawns a bootstrap unit
// to mint a fresh group key and shares, fans the shares out to the running
// share servers, and returns the user's own share and the group key. It
// does not write the user's SRP auth record; AuthService.AuthRegister does.
func (s *Service) Register(ctx context.Context, req *rpcpb.RegisterRequest) (*rpcpb.RegisterResponse, error) {
	log.Lvl2("manager: register request from", req.UserID)
	if err := s.validateServerReady(); err != nil {
		return nil, err
	}
	if err := s.validateUserNotExists(ctx, req.UserID); err != nil {
		return nil, err
	}

	if err := s.st.AddUser(ctx, req.UserID, req.UserPublicKey); err != nil {
		return nil, status.Errorf(codes.Internal, "add user: %v", err)
	}

	publicKeys, err := s.st.GetServersKeys(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get servers keys: %v", err)
	}
	if len(publicKeys) != s.numShareServers {
		return nil, status.Errorf(codes.FailedPrecondition,
			"not enough share servers registered: required %d, available %d", s.numShareServers, len(publicKeys))
	}
	publicKeys = append(publicKeys, req.UserPublicKey)

	bootstrapHandle, err := s.spawner.Spawn(ctx, "vault-bootstrap", s.bootstrapUnit)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "spawn bootstrap: %v", err)
	}
	bootstrapRec, err := s.master.WaitForRegistration(ctx, bootstrapHandle.ContainerID, registrationTimeout)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "bootstrap did not register: %v", err)
	}

	bootstrapResp, err := s.callBootstrap(ctx, bootstrapRec.IPAddress, publicKeys)
	if err != nil {
		if termErr := s.terminateAndRemove(ctx, spawnerHandleRecord{handle: bootstrapHandle, address: bootstrapRec.IPAddress}); termErr != nil {
			log.Error("manager: terminate bootstrap after failure:", termErr)
		}
		return nil, err
	}

	if err := s.terminateAndRemove(ctx, spawnerHandleRecord{handle: bootstrapHandle, address: bootstrapRec.IPAddress}); err != nil {
		log.Error("manager: terminate bootstrap:", err)
	}

	// The last share belongs to the registering user.
	userShare := bootstrapResp.EncryptedShares[len(bootstrapResp.EncryptedShares)-1]
	serverShares := bootstrapResp.EncryptedShares[:len(bootstrapResp.EncryptedShares)-1]

	addrs, err := s.st.GetServersAddresses(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get servers addresses: %v", err)
	}
	for i, share := range serverShares {
		if i >= len(addrs) {
			break
		}
		if err := s.storeShareOnServer(ctx, addrs[i], req.UserID, share); err != nil {
			log.Error("manager: failed to store share on", addrs[i], ":", err)
		}
	}

	return &rpcpb.RegisterResponse{
		EncryptedShare: userShare,
		EncryptedKey:   bootstrapResp.EncryptedKey,
	}, nil
}

func (s *Service) callBootstrap(ctx context.Context, addr string, publicKeys [][]byte) (*rpcpb.GenerateSharesResponse, error) {
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "dial bootstrap: %v", err)
	}
	defer conn.Close()

	client := rpcpb.NewBootstrapClient(conn)
	return client.GenerateShares(ctx, &rpcpb.GenerateSharesRequest{
		Threshold:   int32(s.numShareServers + 1),
		NumOfShares: int32(s.numShareServers + 1),
		PublicKeys:  publicKeys,
	})
}

func (s *Service) storeShareOnServer(ctx context.Context, addr, userID string, share []byte) error {
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := rpcpb.NewShareServerClient(conn)
	resp, err := client.StoreShare(ctx, &rpcpb.StoreShareRequest{UserID: userID, EncryptedShare: share})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("share server reported failure")
	}
	return nil
}

// StoreSecret persists an already-encrypted secret under the caller's user
// id and a caller-chosen secret id.
func (s *Service) StoreSecret(ctx context.Context, req *rpcpb.StoreSecretRequest) (*rpcpb.StoreSecretResponse, error) {
	log.Lvl2("manager: storing secret", req.SecretID, "for", req.UserID)
	if err := s.validateServerReady(); err != nil {
		return nil, err
	}
	if err := s.validateUserExists(ctx, req.UserID); err != nil {
		return nil, err
	}

	secretBytes, err := encodeGobCiphertext(req.Secret)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode secret: %v", err)
	}
	if err := s.st.AddSecret(ctx, req.UserID, req.SecretID, secretBytes); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, status.Error(codes.AlreadyExists, "secret already exists")
		}
		return nil, status.Errorf(codes.Internal, "add secret: %v", err)
	}
	return &rpcpb.StoreSecretResponse{Success: true}, nil
}

// RetrieveSecret returns a stored secret alongside a fresh partial
// decryption from each registered share server. A server whose Decrypt call
// fails is logged and left out of the response.
func (s *Service) RetrieveSecret(ctx context.Context, req *rpcpb.RetrieveSecretRequest) (*rpcpb.RetrieveSecretResponse, error) {
	log.Lvl2("manager: retrieving secret", req.SecretID, "for", req.UserID)
	if err := s.validateServerReady(); err != nil {
		return nil, err
	}
	if err := s.validateUserExists(ctx, req.UserID); err != nil {
		return nil, err
	}

	secretBytes, err := s.st.GetSecret(ctx, req.UserID, req.SecretID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "secret not found")
		}
		return nil, status.Errorf(codes.Internal, "get secret: %v", err)
	}
	ct, err := decodeGobCiphertext(secretBytes)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "decode secret: %v", err)
	}

	addrs, err := s.st.GetServersAddresses(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get servers addresses: %v", err)
	}

	partials := make([]rpcpb.PartialDecrypted, 0, len(addrs))
	for _, addr := range addrs {
		partial, err := s.callDecrypt(ctx, addr, req.UserID, ct)
		if err != nil {
			log.Error("manager: decrypt on", addr, ":", err)
			continue
		}
		partials = append(partials, partial)
	}

	return &rpcpb.RetrieveSecretResponse{
		Secret:             ct,
		PartialDecryptions: partials,
	}, nil
}

func (s *Service) callDecrypt(ctx context.Context, addr, userID string, ct rpcpb.Ciphertext) (rpcpb.PartialDecrypted, error) {
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return rpcpb.PartialDecrypted{}, err
	}
	defer conn.Close()

	client := rpcpb.NewShareServerClient(conn)
	resp, err := client.Decrypt(ctx, &rpcpb.DecryptRequest{UserID: userID, Secret: ct})
	if err != nil {
		return rpcpb.PartialDecrypted{}, err
	}
	return resp.PartialDecryptedSecret, nil
}

func (s *Service) validateServerReady() error {
	if !s.ready.Load() {
		return status.Error(codes.Unavailable, "server is not ready")
	}
	return nil
}

func (s *Service) validateUserExists(ctx context.Context, userID string) error {
	exists, err := s.st.UserExists(ctx, userID)
	if err != nil {
		return status.Errorf(codes.Internal, "check user exists: %v", err)
	}
	if !exists {
		return status.Error(codes.NotFound, "user does not exist")
	}
	return nil
}

func (s *Service) validateUserNotExists(ctx context.Context, userID string) error {
	exists, err := s.st.UserExists(ctx, userID)
	if err != nil {
		return status.Errorf(codes.Internal, "check user exists: %v", err)
	}
	if exists {
		return status.Error(codes.AlreadyExists, "user already exists")
	}
	return nil
}

var _ rpcpb.ManagerServer = (*Service)(nil)
