// Package userclient implements the vault end-user SDK: it drives the SRP
// registration/login handshake, calls the manager's Register/StoreSecret/
// RetrieveSecret RPCs, and combines the returned partial decryptions with
// its own, grounded on original_source/src/vault/user/user.py and
// auth_client.py.
package userclient

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"github.com/jonco5555/vault/crypto"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/seal"
	"github.com/jonco5555/vault/srpauth"
)

// Client is one end user's session against a manager. It holds the user's
// long-term sealed-box keypair and, once Register has run, the user's own
// Shamir share and the group public key.
type Client struct {
	userID  string
	group   srpauth.Group
	manager rpcpb.ManagerClient
	auth    rpcpb.AuthServiceClient
	keys    *seal.KeyPair

	threshold       int
	numShareServers int

	groupKey   crypto.Point
	share      crypto.Share
	registered bool

	secretIDs map[string]struct{}
}

// New constructs a client for userID. numShareServers must match the
// manager's configured share server count; the threshold used for
// Combine is numShareServers+1, the same all-shares-required scheme
// manager.Service.callBootstrap requests.
func New(userID string, group srpauth.Group, manager rpcpb.ManagerClient, auth rpcpb.AuthServiceClient, numShareServers int) (*Client, error) {
	keys, err := seal.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("userclient: generate keypair: %w", err)
	}
	return &Client{
		userID:          userID,
		group:           group,
		manager:         manager,
		auth:            auth,
		keys:            keys,
		threshold:       numShareServers + 1,
		numShareServers: numShareServers,
		secretIDs:       make(map[string]struct{}),
	}, nil
}

// Register creates the SRP auth record for password, then calls
// Manager.Register to mint the user's share and group key.
func (c *Client) Register(ctx context.Context, password string) error {
	salt, err := srpauth.NewSalt()
	if err != nil {
		return fmt.Errorf("userclient: generate salt: %w", err)
	}
	x := srpauth.ComputeX(c.userID, password, salt)
	verifier := c.group.ComputeVerifier(x)

	authResp, err := c.auth.AuthRegister(ctx, &rpcpb.AuthRegisterRequest{
		Username: c.userID,
		Verifier: verifier.String(),
		Salt:     hex.EncodeToString(salt),
	})
	if err != nil {
		return fmt.Errorf("userclient: auth register: %w", err)
	}
	if !authResp.OK {
		return fmt.Errorf("userclient: auth register rejected: %s", authResp.Err)
	}

	resp, err := c.manager.Register(ctx, &rpcpb.RegisterRequest{
		UserID:        c.userID,
		UserPublicKey: c.keys.Public[:],
	})
	if err != nil {
		return fmt.Errorf("userclient: register: %w", err)
	}

	qBytes, err := seal.Open(resp.EncryptedKey, c.keys.Private)
	if err != nil {
		return fmt.Errorf("userclient: open group key: %w", err)
	}
	var q crypto.Point
	if err := decodeGob(qBytes, &q); err != nil {
		return fmt.Errorf("userclient: decode group key: %w", err)
	}

	shareBytes, err := seal.Open(resp.EncryptedShare, c.keys.Private)
	if err != nil {
		return fmt.Errorf("userclient: open share: %w", err)
	}
	var share crypto.Share
	if err := decodeGob(shareBytes, &share); err != nil {
		return fmt.Errorf("userclient: decode share: %w", err)
	}

	c.groupKey = q
	c.share = share
	c.registered = true
	return nil
}

// StoreSecret encrypts plaintext under the user's group key and stores it
// under secretID.
func (c *Client) StoreSecret(ctx context.Context, secretID string, plaintext []byte) error {
	if !c.registered {
		return fmt.Errorf("userclient: %s is not registered", c.userID)
	}
	ct, err := crypto.Encrypt(plaintext, c.groupKey)
	if err != nil {
		return fmt.Errorf("userclient: encrypt secret: %w", err)
	}
	resp, err := c.manager.StoreSecret(ctx, &rpcpb.StoreSecretRequest{
		UserID:   c.userID,
		SecretID: secretID,
		Secret:   rpcpb.ToWireCiphertext(*ct),
	})
	if err != nil {
		return fmt.Errorf("userclient: store secret: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("userclient: manager reported failure storing %q", secretID)
	}
	c.secretIDs[secretID] = struct{}{}
	return nil
}

// RetrieveSecret fetches secretID's ciphertext and every share server's
// partial decryption, contributes the user's own partial decryption, and
// combines them all into the plaintext.
func (c *Client) RetrieveSecret(ctx context.Context, secretID string) ([]byte, error) {
	if !c.registered {
		return nil, fmt.Errorf("userclient: %s is not registered", c.userID)
	}
	resp, err := c.manager.RetrieveSecret(ctx, &rpcpb.RetrieveSecretRequest{
		UserID:   c.userID,
		SecretID: secretID,
	})
	if err != nil {
		return nil, fmt.Errorf("userclient: retrieve secret: %w", err)
	}

	ct := rpcpb.FromWireCiphertext(resp.Secret)
	partials := make([]crypto.PartialDecryption, 0, len(resp.PartialDecryptions)+1)
	for _, p := range resp.PartialDecryptions {
		partials = append(partials, rpcpb.FromWirePartialDecryption(p))
	}
	own, err := crypto.PartialDecrypt(ct, c.share)
	if err != nil {
		return nil, fmt.Errorf("userclient: compute own partial decryption: %w", err)
	}
	partials = append(partials, own)

	plaintext, err := crypto.Combine(partials, ct, crypto.Params{T: c.threshold, N: c.numShareServers + 1})
	if err != nil {
		return nil, fmt.Errorf("userclient: combine partial decryptions: %w", err)
	}
	return plaintext, nil
}

// SecretIDs returns the ids of every secret this client has stored this
// session.
func (c *Client) SecretIDs() []string {
	ids := make([]string, 0, len(c.secretIDs))
	for id := range c.secretIDs {
		ids = append(ids, id)
	}
	return ids
}

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
