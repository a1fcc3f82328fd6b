// Package seal implements the asymmetric envelope (sealed-box) construction
// used to carry shares and the group public key across component
// boundaries without exposing their plaintext at an API boundary. Partial
// decryptions are not sealed: share servers return them to the manager as
// plain rpcpb.PartialDecrypted values.
package seal

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// KeyPair is a long-term Curve25519 keypair, held by every user and share
// server; its public half is published at registration time.
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a fresh Curve25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &KeyPair{Public: *pub, Private: *priv}, nil
}

// ErrOpenFailed is returned when an envelope cannot be opened: wrong key,
// corrupted ciphertext, or truncated input.
var ErrOpenFailed = errors.New("seal: decryption failed")

// Seal anonymously encrypts plaintext to recipientPub: a fresh ephemeral
// keypair is generated per call, the ephemeral public key is prefixed to
// the NaCl box ciphertext, and the ephemeral private key is discarded —
// there is no sender identity and no way to link two envelopes to the same
// sender.
func Seal(plaintext []byte, recipientPub [32]byte) ([]byte, error) {
	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal: generate ephemeral key: %w", err)
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("seal: generate nonce: %w", err)
	}
	out := make([]byte, 0, 32+24+len(plaintext)+box.Overhead)
	out = append(out, ephPub[:]...)
	out = append(out, nonce[:]...)
	out = box.Seal(out, plaintext, &nonce, &recipientPub, ephPriv)
	return out, nil
}

// Open decrypts an envelope produced by Seal using the recipient's private
// key. Any integrity failure (wrong key, corruption, truncation) returns
// ErrOpenFailed.
func Open(envelope []byte, recipientPriv [32]byte) ([]byte, error) {
	if len(envelope) < 32+24 {
		return nil, ErrOpenFailed
	}
	var ephPub [32]byte
	copy(ephPub[:], envelope[:32])
	var nonce [24]byte
	copy(nonce[:], envelope[32:56])
	ciphertext := envelope[56:]

	plaintext, ok := box.Open(nil, ciphertext, &nonce, &ephPub, &recipientPriv)
	if !ok {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}
