// Package crypto implements the threshold EC-ElGamal pipeline: centralized
// (t, n) key and share generation over kyber's P-256 group, hybrid
// encryption under the group public key, per-share partial decryption, and
// Lagrange combination via kyber/share — the same kyber primitives
// cothority's own threshold-crypto services (calypso, dkg/pedersen) build
// their group arithmetic and secret sharing on.
package crypto

import (
	"fmt"
	"math/big"

	"github.com/dedis/kyber"
	"github.com/dedis/kyber/group/nist"
)

// Suite is the prime-order group the whole pipeline operates over.
var Suite = nist.NewBlakeSHA256P256()

// Order is the order of Suite's base point: the standard NIST P-256 group
// order, used only to reduce wire-format scalars into Suite's range before
// handing them to kyber.
var Order = mustHexBigInt("FFFFFFFF00000000FFFFFFFFFFFFFFFFBCE6FAADA7179E84F3B9CAC2FC632551")

func mustHexBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("crypto: invalid hex constant " + s)
	}
	return v
}

// coordSize is the byte length of one P-256 affine coordinate.
const coordSize = 32

// Point is a point on Suite's curve, carried as affine (x, y) coordinates
// for wire transport and storage. The zero value is not a valid point; use
// NewPoint or one of the arithmetic helpers below.
type Point struct {
	X, Y *big.Int
}

// NewPoint wraps a pair of coordinates as a Point.
func NewPoint(x, y *big.Int) Point {
	return Point{X: x, Y: y}
}

// kyberPoint decodes p into a kyber.Point on Suite by reconstructing the
// uncompressed SEC1 encoding kyber's nist group expects (0x04 || X || Y).
func (p Point) kyberPoint() (kyber.Point, error) {
	if p.IsZero() {
		return Suite.Point().Null(), nil
	}
	buf := make([]byte, 1+2*coordSize)
	buf[0] = 4
	p.X.FillBytes(buf[1 : 1+coordSize])
	p.Y.FillBytes(buf[1+coordSize:])
	kp := Suite.Point()
	if err := kp.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("decode curve point: %w", err)
	}
	return kp, nil
}

// pointFromKyber recovers the affine (x, y) coordinates of a kyber.Point on
// Suite.
func pointFromKyber(kp kyber.Point) (Point, error) {
	data, err := kp.MarshalBinary()
	if err != nil {
		return Point{}, fmt.Errorf("encode curve point: %w", err)
	}
	if len(data) != 1+2*coordSize || data[0] != 4 {
		return Point{}, fmt.Errorf("unexpected curve point encoding (len=%d)", len(data))
	}
	return Point{
		X: new(big.Int).SetBytes(data[1 : 1+coordSize]),
		Y: new(big.Int).SetBytes(data[1+coordSize:]),
	}, nil
}

// scalarFromBigInt reduces x mod Order and decodes it as a kyber.Scalar on
// Suite.
func scalarFromBigInt(x *big.Int) (kyber.Scalar, error) {
	reduced := new(big.Int).Mod(x, Order)
	buf := make([]byte, Suite.ScalarLen())
	reduced.FillBytes(buf)
	s := Suite.Scalar()
	if err := s.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("decode scalar: %w", err)
	}
	return s, nil
}

// bigIntFromScalar renders a kyber.Scalar on Suite as a big.Int for wire
// transport.
func bigIntFromScalar(s kyber.Scalar) (*big.Int, error) {
	buf, err := s.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode scalar: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}

// BasePoint returns the curve's generator.
func BasePoint() Point {
	p, err := pointFromKyber(Suite.Point().Base())
	if err != nil {
		panic(fmt.Sprintf("crypto: base point failed to encode: %v", err))
	}
	return p
}

// ScalarBaseMult returns k*P for the curve's generator P.
func ScalarBaseMult(k *big.Int) (Point, error) {
	s, err := scalarFromBigInt(k)
	if err != nil {
		return Point{}, err
	}
	return pointFromKyber(Suite.Point().Mul(s, nil))
}

// ScalarMult returns k*p.
func (p Point) ScalarMult(k *big.Int) (Point, error) {
	kp, err := p.kyberPoint()
	if err != nil {
		return Point{}, err
	}
	s, err := scalarFromBigInt(k)
	if err != nil {
		return Point{}, err
	}
	return pointFromKyber(Suite.Point().Mul(s, kp))
}

// Equal reports structural equality over the affine coordinates.
func (p Point) Equal(o Point) bool {
	return p.X.Cmp(o.X) == 0 && p.Y.Cmp(o.Y) == 0
}

// IsZero reports whether p is the point at infinity.
func (p Point) IsZero() bool {
	return p.X == nil || p.Y == nil || (p.X.Sign() == 0 && p.Y.Sign() == 0)
}

// String renders the point as "x,y" decimal.
func (p Point) String() string {
	return p.X.String() + "," + p.Y.String()
}
