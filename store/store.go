// Package store implements the vault's relational persistence contract:
// users, their secrets, registered share/bootstrap servers, and SRP
// auth-client records, each keyed the way manager/db_manager.py's
// SQLAlchemy models key them (the vault table uses a composite
// (user_id, secret_id) primary key).
package store

import (
	"context"
	"errors"

	"github.com/jonco5555/vault/setup"
)

// ErrNotFound is returned by every Get-style lookup that finds nothing,
// letting callers map it to a single gRPC NOT_FOUND status.
var ErrNotFound = errors.New("store: not found")

// ErrAlreadyExists is returned by every Add-style call attempted against an
// existing primary key.
var ErrAlreadyExists = errors.New("store: already exists")

// AuthRecord is one user's SRP registration: its verifier as a decimal
// string and its salt as a hex string, the encodings AuthService decodes.
type AuthRecord struct {
	Username string
	Verifier string
	Salt     string
}

// Store is the persistence contract every manager depends on. SQLStore is
// the production implementation (database/sql over modernc.org/sqlite);
// tests substitute MemStore.
type Store interface {
	AddUser(ctx context.Context, userID string, publicKey []byte) error
	GetUserPublicKey(ctx context.Context, userID string) ([]byte, error)
	UserExists(ctx context.Context, userID string) (bool, error)

	AddSecret(ctx context.Context, userID, secretID string, secret []byte) error
	GetSecret(ctx context.Context, userID, secretID string) ([]byte, error)

	AddServer(ctx context.Context, rec setup.ServiceRecord) error
	RemoveServer(ctx context.Context, containerID string) error
	GetServer(ctx context.Context, containerID string) (setup.ServiceRecord, error)
	GetServersKeys(ctx context.Context) ([][]byte, error)
	GetServersAddresses(ctx context.Context) ([]string, error)

	AddAuthClient(ctx context.Context, rec AuthRecord) error
	GetAuthClient(ctx context.Context, username string) (AuthRecord, error)
	RemoveAuthClient(ctx context.Context, username string) error

	Close() error
}
