// Package srpauth implements the SRP-6a authenticated key exchange that lets
// a user prove knowledge of their password without the password or any
// password-equivalent ever crossing the wire. The derived session key does
// not gate or encrypt the manager's Register/StoreSecret/RetrieveSecret RPCs.
//
// Glossary (RFC 5054 / http://srp.stanford.edu/design.html):
//
//	N    large safe prime (N = 2q+1, q prime)
//	g    generator modulo N
//	k    multiplier parameter, k = H(N, g)
//	s    salt
//	I    username
//	p    password
//	x    private key, derived from s and p
//	v    password verifier, v = g^x
//	a,b  ephemeral secrets
//	A,B  ephemeral publics, A = g^a, B = k*v + g^b
//	u    scrambling parameter, u = H(A, B)
//	S    premaster secret
//	K    session key, K = H(S)
//	M    client proof, M2 server proof
package srpauth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

// Group is the (N, g) parameter pair shared by every SRP session in the
// vault; see group.go for the concrete 1536-bit safe-prime group.
type Group struct {
	N *big.Int
	G *big.Int
}

func (grp Group) k() *big.Int {
	return hashInts(grp.N, grp.G)
}

func hashInts(vals ...*big.Int) *big.Int {
	h := sha256.New()
	for _, v := range vals {
		h.Write(v.Bytes())
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

func modExp(a, b, n *big.Int) *big.Int {
	return new(big.Int).Exp(a, b, n)
}

// ComputeX derives the private key x = H(s | H(I | ":" | p)) per RFC 2945 /
// RFC 5054, binding the verifier to both the username and the salt so two
// users who happen to share a password never share a verifier.
func ComputeX(username, password string, salt []byte) *big.Int {
	inner := sha256.Sum256([]byte(username + ":" + password))
	h := sha256.New()
	h.Write(salt)
	h.Write(inner[:])
	return new(big.Int).SetBytes(h.Sum(nil))
}

// ComputeVerifier computes v = g^x mod N for a freshly registered user; the
// triplet (username, v, salt) is what gets persisted, the password itself
// never is.
func (grp Group) ComputeVerifier(x *big.Int) *big.Int {
	return modExp(grp.G, x, grp.N)
}

// NewSalt returns a fresh random salt for a new registration.
func NewSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("srpauth: generate salt: %w", err)
	}
	return salt, nil
}

// ErrBadEphemeral is returned when a peer's public ephemeral value is
// congruent to 0 mod N, which RFC 5054 requires both sides to reject since
// it would let an attacker predict the session key.
var ErrBadEphemeral = errors.New("srpauth: ephemeral value is zero mod N")

// ErrAuthFailed is returned when a client's key proof does not match the
// server's own computation: either the password was wrong or the exchange
// was tampered with.
var ErrAuthFailed = errors.New("srpauth: authentication failed")

func randomExponent(n *big.Int) (*big.Int, error) {
	// RFC 5054 recommends at least 256 bits of randomness for a/b.
	return rand.Int(rand.Reader, n)
}

// ClientSession drives the two client-side steps of a login: Start (produces
// A) and Finish (consumes B and salt, produces the key proof M).
type ClientSession struct {
	group    Group
	username string
	password string

	a *big.Int
	A *big.Int

	Key *big.Int
}

// NewClientSession begins a login attempt for username/password.
func NewClientSession(group Group, username, password string) *ClientSession {
	return &ClientSession{group: group, username: username, password: password}
}

// Start samples the client's ephemeral secret a and returns the public
// ephemeral A = g^a mod N to send as the session's first message.
func (c *ClientSession) Start() (*big.Int, error) {
	a, err := randomExponent(c.group.N)
	if err != nil {
		return nil, fmt.Errorf("srpauth: sample client ephemeral: %w", err)
	}
	c.a = a
	c.A = modExp(c.group.G, a, c.group.N)
	return c.A, nil
}

// Finish consumes the server's public ephemeral B and the user's salt,
// derives the shared session key, and returns the client's key proof M for
// the server to verify.
func (c *ClientSession) Finish(serverPublic *big.Int, salt []byte) (*big.Int, error) {
	if c.a == nil {
		return nil, errors.New("srpauth: Finish called before Start")
	}
	bMod := new(big.Int).Mod(serverPublic, c.group.N)
	if bMod.Sign() == 0 {
		return nil, ErrBadEphemeral
	}

	x := ComputeX(c.username, c.password, salt)
	u := hashInts(c.A, serverPublic)
	k := c.group.k()

	// S = (B - k*g^x) ^ (a + u*x) mod N
	gx := modExp(c.group.G, x, c.group.N)
	kgx := new(big.Int).Mul(k, gx)
	base := new(big.Int).Sub(serverPublic, kgx)
	base.Mod(base, c.group.N)
	exp := new(big.Int).Add(c.a, new(big.Int).Mul(u, x))
	S := modExp(base, exp, c.group.N)

	c.Key = hashInts(S)
	return clientProof(c.A, serverPublic, c.Key), nil
}

// clientProof computes M = H(A | B | K), the "any reasonable one-way
// combination" the SRP design notes allow; both sides compute it
// independently so the client proof never carries the key itself.
func clientProof(A, B, K *big.Int) *big.Int {
	return hashInts(A, B, K)
}

// ServerSession drives the server-side half of a login against a previously
// stored (verifier, salt) pair: Start (produces B) and Finish (consumes A
// and M, verifies it, returns the shared key).
type ServerSession struct {
	group    Group
	verifier *big.Int
	salt     []byte

	b *big.Int
	B *big.Int

	Key *big.Int
}

// NewServerSession begins the server side of a login using the persisted
// verifier and salt for the claimed username.
func NewServerSession(group Group, verifier *big.Int, salt []byte) *ServerSession {
	return &ServerSession{group: group, verifier: verifier, salt: salt}
}

// Start samples the server's ephemeral secret b and returns the public
// ephemeral B = k*v + g^b mod N.
func (s *ServerSession) Start() (*big.Int, error) {
	b, err := randomExponent(s.group.N)
	if err != nil {
		return nil, fmt.Errorf("srpauth: sample server ephemeral: %w", err)
	}
	s.b = b
	k := s.group.k()
	kv := new(big.Int).Mul(k, s.verifier)
	gb := modExp(s.group.G, b, s.group.N)
	B := new(big.Int).Add(kv, gb)
	B.Mod(B, s.group.N)
	s.B = B
	return B, nil
}

// Finish consumes the client's public ephemeral A and its key proof M,
// derives the shared session key, and returns it only if M matches the
// server's own computation; otherwise it returns ErrAuthFailed.
func (s *ServerSession) Finish(clientPublic, clientProofValue *big.Int) (*big.Int, error) {
	if s.b == nil {
		return nil, errors.New("srpauth: Finish called before Start")
	}
	aMod := new(big.Int).Mod(clientPublic, s.group.N)
	if aMod.Sign() == 0 {
		return nil, ErrBadEphemeral
	}

	u := hashInts(clientPublic, s.B)

	// S = (A * v^u) ^ b mod N
	vu := modExp(s.verifier, u, s.group.N)
	base := new(big.Int).Mul(clientPublic, vu)
	base.Mod(base, s.group.N)
	S := modExp(base, s.b, s.group.N)

	key := hashInts(S)
	expected := clientProof(clientPublic, s.B, key)
	if expected.Cmp(clientProofValue) != 0 {
		return nil, ErrAuthFailed
	}
	s.Key = key
	return key, nil
}
