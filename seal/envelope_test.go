package seal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonco5555/vault/seal"
)

func TestSealOpenRoundTrip(t *testing.T) {
	recipient, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("sealed share bytes")
	envelope, err := seal.Seal(msg, recipient.Public)
	require.NoError(t, err)

	opened, err := seal.Open(envelope, recipient.Private)
	require.NoError(t, err)
	require.Equal(t, msg, opened)
}

func TestOpenFailsWithWrongKey(t *testing.T) {
	recipient, err := seal.GenerateKeyPair()
	require.NoError(t, err)
	other, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	envelope, err := seal.Seal([]byte("top secret"), recipient.Public)
	require.NoError(t, err)

	_, err = seal.Open(envelope, other.Private)
	require.ErrorIs(t, err, seal.ErrOpenFailed)
}

func TestOpenFailsOnTruncatedEnvelope(t *testing.T) {
	recipient, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	_, err = seal.Open([]byte("too short"), recipient.Private)
	require.ErrorIs(t, err, seal.ErrOpenFailed)
}

func TestSealIsNotDeterministic(t *testing.T) {
	recipient, err := seal.GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("same plaintext")
	e1, err := seal.Seal(msg, recipient.Public)
	require.NoError(t, err)
	e2, err := seal.Seal(msg, recipient.Public)
	require.NoError(t, err)
	require.NotEqual(t, e1, e2)
}
