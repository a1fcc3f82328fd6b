package srpauth_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonco5555/vault/srpauth"
)

func bigZero() *big.Int {
	return big.NewInt(0)
}

func TestSRPRoundTripSucceedsWithCorrectPassword(t *testing.T) {
	group := srpauth.RFC5054Group
	salt, err := srpauth.NewSalt()
	require.NoError(t, err)

	username, password := "alice", "correct horse battery staple"
	x := srpauth.ComputeX(username, password, salt)
	verifier := group.ComputeVerifier(x)

	client := srpauth.NewClientSession(group, username, password)
	server := srpauth.NewServerSession(group, verifier, salt)

	A, err := client.Start()
	require.NoError(t, err)
	B, err := server.Start()
	require.NoError(t, err)

	proof, err := client.Finish(B, salt)
	require.NoError(t, err)

	serverKey, err := server.Finish(A, proof)
	require.NoError(t, err)

	require.Equal(t, client.Key, serverKey)
	require.NotZero(t, serverKey.Sign())
}

func TestSRPRejectsWrongPassword(t *testing.T) {
	group := srpauth.RFC5054Group
	salt, err := srpauth.NewSalt()
	require.NoError(t, err)

	username := "bob"
	x := srpauth.ComputeX(username, "the-real-password", salt)
	verifier := group.ComputeVerifier(x)

	client := srpauth.NewClientSession(group, username, "a-guessed-password")
	server := srpauth.NewServerSession(group, verifier, salt)

	A, err := client.Start()
	require.NoError(t, err)
	B, err := server.Start()
	require.NoError(t, err)

	proof, err := client.Finish(B, salt)
	require.NoError(t, err)

	_, err = server.Finish(A, proof)
	require.ErrorIs(t, err, srpauth.ErrAuthFailed)
}

func TestSRPRejectsZeroClientEphemeral(t *testing.T) {
	group := srpauth.RFC5054Group
	salt, err := srpauth.NewSalt()
	require.NoError(t, err)

	x := srpauth.ComputeX("carol", "pw", salt)
	verifier := group.ComputeVerifier(x)

	server := srpauth.NewServerSession(group, verifier, salt)
	_, err = server.Start()
	require.NoError(t, err)

	zero := bigZero()
	_, err = server.Finish(zero, zero)
	require.ErrorIs(t, err, srpauth.ErrBadEphemeral)
}

func TestDifferentRegistrationsProduceDifferentVerifiers(t *testing.T) {
	group := srpauth.RFC5054Group
	salt1, err := srpauth.NewSalt()
	require.NoError(t, err)
	salt2, err := srpauth.NewSalt()
	require.NoError(t, err)

	x1 := srpauth.ComputeX("dave", "same-password", salt1)
	x2 := srpauth.ComputeX("dave", "same-password", salt2)
	v1 := group.ComputeVerifier(x1)
	v2 := group.ComputeVerifier(x2)

	require.NotEqual(t, v1, v2)
}
