package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/hkdf"
)

// Params is an immutable (t, n) threshold configuration for one batch of
// generated key material: t is the minimum number of shares required to
// recover the group secret, n is the total number of shares handed out.
type Params struct {
	T, N int
}

// Validate checks the 1 <= t <= n invariant from the data model.
func (p Params) Validate() error {
	if p.T < 1 || p.T > p.N {
		return fmt.Errorf("invalid threshold params: t=%d n=%d", p.T, p.N)
	}
	return nil
}

// GenerateResult is the output of Generate: the group public key and the
// per-index shares of its private exponent.
type GenerateResult struct {
	Q      Point
	Shares []Share
}

// Generate picks a uniformly random group secret d on Suite, sets Q = d*P,
// and deals a degree-(t-1) kyber/share.PriPoly with constant term d,
// returning Q and the shares f(1)..f(n).
func Generate(params Params) (*GenerateResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := Suite.Scalar().Pick(Suite.RandomStream())
	shares, err := dealShares(d, params.T, params.N)
	if err != nil {
		return nil, fmt.Errorf("deal shares: %w", err)
	}
	Q, err := pointFromKyber(Suite.Point().Mul(d, nil))
	if err != nil {
		return nil, fmt.Errorf("derive group key: %w", err)
	}
	return &GenerateResult{Q: Q, Shares: shares}, nil
}

// Ciphertext is the hybrid EC-ElGamal ciphertext (Secret) from the data
// model: C1 = k*P, C2 = k*Q (kept for audit/repr purposes, not needed to
// decrypt), and ct the AES-256-GCM encryption of the message under a key
// derived from k*Q.
type Ciphertext struct {
	C1 Point
	C2 Point
	CT []byte
}

const hkdfInfo = "vault-ecies-v1"

// deriveSymmetricKey derives a 32-byte AES-256 key from a shared curve
// point via HKDF-SHA256.
func deriveSymmetricKey(shared Point) ([]byte, error) {
	ikm := append(append([]byte{}, shared.X.Bytes()...), shared.Y.Bytes()...)
	kdf := hkdf.New(sha256.New, ikm, nil, []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := kdf.Read(key); err != nil {
		return nil, fmt.Errorf("derive symmetric key: %w", err)
	}
	return key, nil
}

func aesGCMSeal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func aesGCMOpen(key, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ct := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ct, nil)
}

// Encrypt hybrid-encrypts msg under the group public key Q: an ephemeral
// scalar k is sampled on Suite, C1 = k*P is published, and the AES-GCM key
// is derived from the shared point S = k*Q.
func Encrypt(msg []byte, Q Point) (*Ciphertext, error) {
	k := Suite.Scalar().Pick(Suite.RandomStream())
	C1, err := pointFromKyber(Suite.Point().Mul(k, nil))
	if err != nil {
		return nil, fmt.Errorf("derive ephemeral point: %w", err)
	}
	qk, err := Q.kyberPoint()
	if err != nil {
		return nil, fmt.Errorf("decode group key: %w", err)
	}
	S, err := pointFromKyber(Suite.Point().Mul(k, qk))
	if err != nil {
		return nil, fmt.Errorf("derive shared point: %w", err)
	}
	key, err := deriveSymmetricKey(S)
	if err != nil {
		return nil, err
	}
	ct, err := aesGCMSeal(key, msg)
	if err != nil {
		return nil, fmt.Errorf("seal plaintext: %w", err)
	}
	return &Ciphertext{C1: C1, C2: S, CT: ct}, nil
}

// PartialDecryption is one share-holder's contribution to a threshold
// decryption: (index, y_i*C1).
type PartialDecryption struct {
	Index int
	YC1   Point
}

// PartialDecrypt computes a single share's contribution. It does not
// inspect C2 or CT.
func PartialDecrypt(ct Ciphertext, share Share) (PartialDecryption, error) {
	yc1, err := ct.C1.ScalarMult(share.Y)
	if err != nil {
		return PartialDecryption{}, fmt.Errorf("compute partial decryption: %w", err)
	}
	return PartialDecryption{Index: share.Index, YC1: yc1}, nil
}

// Combine Lagrange-interpolates at least t partial decryptions, via
// kyber/share.RecoverCommit, to recover S = d*C1 in the exponent, then
// symmetric-decrypts ct. It fails if fewer than t partials are supplied, if
// two partials share an index, or if an index lies outside [1, n].
func Combine(partials []PartialDecryption, ct Ciphertext, params Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(partials) < params.T {
		return nil, fmt.Errorf("combine: need at least %d partials, got %d", params.T, len(partials))
	}

	pairs := make(map[int]Point, len(partials))
	for _, p := range partials {
		if p.Index < 1 || p.Index > params.N {
			return nil, fmt.Errorf("combine: index %d out of range [1,%d]", p.Index, params.N)
		}
		if _, dup := pairs[p.Index]; dup {
			return nil, fmt.Errorf("combine: duplicate index %d", p.Index)
		}
		pairs[p.Index] = p.YC1
	}

	S, err := recoverCommit(pairs, params.T, params.N)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}

	key, err := deriveSymmetricKey(S)
	if err != nil {
		return nil, err
	}
	msg, err := aesGCMOpen(key, ct.CT)
	if err != nil {
		return nil, fmt.Errorf("combine: symmetric decryption failed: %w", err)
	}
	return msg, nil
}
