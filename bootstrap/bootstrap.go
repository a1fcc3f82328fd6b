// Package bootstrap implements the one-shot dealer: given a threshold and a
// public key per recipient, it generates a fresh group key and its shares
// and seals each piece to its recipient before exiting.
package bootstrap

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/dedis/onet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
	"github.com/jonco5555/vault/setup"
)

// Server implements rpcpb.BootstrapServer. It serves exactly one
// GenerateShares call and then terminates its setup.Unit, mirroring the teacher process's
// register-serve-unregister-exit lifecycle for short-lived containers.
type Server struct {
	unit *setup.Unit
}

// New constructs a bootstrap server backed by the given lifecycle unit.
func New(unit *setup.Unit) *Server {
	return &Server{unit: unit}
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode wire value: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateShares creates a fresh (t, n) group key, seals each share to its
// corresponding public key, and seals the group public key to the last
// entry of PublicKeys (the registering user's key). It self-terminates
// after responding: a bootstrap container does exactly one job.
func (s *Server) GenerateShares(ctx context.Context, req *rpcpb.GenerateSharesRequest) (*rpcpb.GenerateSharesResponse, error) {
	defer s.unit.Terminate()

	params := crypto.Params{T: int(req.Threshold), N: int(req.NumOfShares)}
	gen, err := crypto.Generate(params)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "generate key and shares: %v", err)
	}

	if len(gen.Shares) != len(req.PublicKeys) {
		return nil, status.Error(codes.InvalidArgument, "number of public keys must match number of shares requested")
	}

	userPub := req.PublicKeys[len(req.PublicKeys)-1]

	encryptedShares := make([][]byte, len(gen.Shares))
	for i, share := range gen.Shares {
		var recipientPub [32]byte
		copy(recipientPub[:], req.PublicKeys[i])

		shareBytes, err := encodeGob(share)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode share: %v", err)
		}
		sealed, err := seal.Seal(shareBytes, recipientPub)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "seal share %d: %v", share.Index, err)
		}
		encryptedShares[i] = sealed
	}

	var userKey [32]byte
	copy(userKey[:], userPub)
	qBytes, err := encodeGob(gen.Q)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode group key: %v", err)
	}
	encryptedKey, err := seal.Seal(qBytes, userKey)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "seal group key: %v", err)
	}

	log.Lvl2("bootstrap: generated", len(gen.Shares), "shares at threshold", req.Threshold)
	return &rpcpb.GenerateSharesResponse{
		EncryptedShares: encryptedShares,
		EncryptedKey:    encryptedKey,
	}, nil
}
