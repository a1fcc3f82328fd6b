package rpcpb

import (
	"math/big"

	"github.com/jonco5555/vault/crypto"
)

// ToWirePoint converts a crypto.Point to its wire form.
func ToWirePoint(p crypto.Point) CurvePoint {
	return CurvePoint{X: p.X.Bytes(), Y: p.Y.Bytes()}
}

// FromWirePoint converts a wire CurvePoint back to a crypto.Point.
func FromWirePoint(p CurvePoint) crypto.Point {
	return crypto.NewPoint(new(big.Int).SetBytes(p.X), new(big.Int).SetBytes(p.Y))
}

// ToWireCiphertext converts a crypto.Ciphertext to its wire form.
func ToWireCiphertext(ct crypto.Ciphertext) Ciphertext {
	return Ciphertext{
		C1: ToWirePoint(ct.C1),
		C2: ToWirePoint(ct.C2),
		CT: ct.CT,
	}
}

// FromWireCiphertext converts a wire Ciphertext back to a crypto.Ciphertext.
func FromWireCiphertext(ct Ciphertext) crypto.Ciphertext {
	return crypto.Ciphertext{
		C1: FromWirePoint(ct.C1),
		C2: FromWirePoint(ct.C2),
		CT: ct.CT,
	}
}

// ToWirePartialDecryption converts a crypto.PartialDecryption to its wire
// form.
func ToWirePartialDecryption(pd crypto.PartialDecryption) PartialDecrypted {
	return PartialDecrypted{Index: int32(pd.Index), YC1: ToWirePoint(pd.YC1)}
}

// FromWirePartialDecryption converts a wire PartialDecrypted back to a
// crypto.PartialDecryption.
func FromWirePartialDecryption(pd PartialDecrypted) crypto.PartialDecryption {
	return crypto.PartialDecryption{Index: int(pd.Index), YC1: FromWirePoint(pd.YC1)}
}
