package crypto

import (
	"fmt"
	"math/big"

	"github.com/dedis/kyber"
	"github.com/dedis/kyber/share"
)

// Share is one share server's contribution: index i and scalar y_i = f(i)
// for the dealer's degree-(t-1) polynomial f, carried as a big.Int for wire
// transport. Index is 1-based, matching the share-server ordinal it is
// issued to; kyber/share's own PriShare.I is 0-based and is remapped at the
// package boundary.
type Share struct {
	Index int
	Y     *big.Int
}

// dealShares builds a degree-(t-1) kyber/share.PriPoly with constant term
// secret and evaluates it at n points — the trusted-dealer sharing scheme
// cothority's kyber-based services build on kyber/share for too, minus the
// interactive verifiable-sharing round dkg/pedersen layers on top of it.
func dealShares(secret kyber.Scalar, t, n int) ([]Share, error) {
	poly := share.NewPriPoly(Suite, t, secret, Suite.RandomStream())
	priShares := poly.Shares(n)
	out := make([]Share, len(priShares))
	for i, ps := range priShares {
		y, err := bigIntFromScalar(ps.V)
		if err != nil {
			return nil, fmt.Errorf("marshal share %d: %w", ps.I+1, err)
		}
		out[i] = Share{Index: ps.I + 1, Y: y}
	}
	return out, nil
}

// recoverCommit Lagrange-interpolates, via kyber/share.RecoverCommit, the
// value implied in the exponent by the supplied (index, point) pairs —
// recovering d*C1 from a t-subset of the y_i*C1 contributions without ever
// reconstructing the scalar d itself.
func recoverCommit(pairs map[int]Point, t, n int) (Point, error) {
	pubShares := make([]*share.PubShare, 0, len(pairs))
	for idx, p := range pairs {
		kp, err := p.kyberPoint()
		if err != nil {
			return Point{}, err
		}
		pubShares = append(pubShares, &share.PubShare{I: idx - 1, V: kp})
	}
	commit, err := share.RecoverCommit(Suite, pubShares, t, n)
	if err != nil {
		return Point{}, fmt.Errorf("recover commit: %w", err)
	}
	return pointFromKyber(commit)
}
