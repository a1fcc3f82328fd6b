// Package shareserver implements one threshold share-holder: it stores a
// sealed share per registered user and answers partial-decryption requests
// against it without ever holding a share in the clear outside of a single
// Decrypt call.
package shareserver

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/dedis/onet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
)

// Server implements rpcpb.ShareServerServer. Each instance holds its own
// long-term sealed-box keypair; Decrypt is the only point where the
// keypair's private half is used, and only within the process's memory for
// the duration of one call.
type Server struct {
	keys seal.KeyPair

	mu     sync.RWMutex
	shares map[string][]byte // user id -> sealed crypto.Share, sealed to keys.Public
}

// New creates a share server with a freshly generated long-term keypair.
func New() (*Server, error) {
	kp, err := seal.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate share server keypair: %w", err)
	}
	return &Server{keys: *kp, shares: make(map[string][]byte)}, nil
}

// PublicKey is the sealed-box public key this server publishes at
// registration so a bootstrap/manager can seal a share to it.
func (s *Server) PublicKey() [32]byte {
	return s.keys.Public
}

// StoreShare records a sealed share for a user. A user may only register
// once per share server.
func (s *Server) StoreShare(ctx context.Context, req *rpcpb.StoreShareRequest) (*rpcpb.StoreShareResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shares[req.UserID]; ok {
		return nil, status.Error(codes.AlreadyExists, "share for this user already exists")
	}
	s.shares[req.UserID] = req.EncryptedShare
	log.Lvl2("shareserver: stored share for", req.UserID)
	return &rpcpb.StoreShareResponse{Success: true}, nil
}

// DeleteShare removes a previously stored share.
func (s *Server) DeleteShare(ctx context.Context, req *rpcpb.DeleteShareRequest) (*rpcpb.DeleteShareResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shares[req.UserID]; !ok {
		return nil, status.Error(codes.NotFound, "share does not exist for this user")
	}
	delete(s.shares, req.UserID)
	log.Lvl2("shareserver: deleted share for", req.UserID)
	return &rpcpb.DeleteShareResponse{Success: true}, nil
}

// Decrypt opens this server's stored share and computes its contribution to
// the threshold decryption of the given ciphertext.
func (s *Server) Decrypt(ctx context.Context, req *rpcpb.DecryptRequest) (*rpcpb.DecryptResponse, error) {
	s.mu.RLock()
	sealed, ok := s.shares[req.UserID]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Error(codes.NotFound, "no share found for this user")
	}

	plaintext, err := seal.Open(sealed, s.keys.Private)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "open stored share: %v", err)
	}
	var share crypto.Share
	if err := gob.NewDecoder(bytes.NewReader(plaintext)).Decode(&share); err != nil {
		return nil, status.Errorf(codes.Internal, "decode stored share: %v", err)
	}

	ct := rpcpb.FromWireCiphertext(req.Secret)
	partial, err := crypto.PartialDecrypt(ct, share)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "compute partial decryption: %v", err)
	}
	return &rpcpb.DecryptResponse{
		PartialDecryptedSecret: rpcpb.ToWirePartialDecryption(partial),
	}, nil
}

var _ rpcpb.ShareServerServer = (*Server)(nil)
