package tlsutil_test

import (
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonco5555/vault/tlsutil"
)

func TestMutualTLSHandshakeSucceedsWithCACertificates(t *testing.T) {
	ca, err := tlsutil.NewCA("vault-test-ca")
	require.NoError(t, err)

	serverID, err := ca.Issue("manager", 24*time.Hour)
	require.NoError(t, err)
	clientID, err := ca.Issue("share-server-1", 24*time.Hour)
	require.NoError(t, err)

	listener, err := tls.Listen("tcp", "127.0.0.1:0", ca.ServerTLSConfig(serverID))
	require.NoError(t, err)
	defer listener.Close()

	acceptErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		defer conn.Close()
		acceptErr <- conn.(*tls.Conn).Handshake()
	}()

	conn, err := tls.Dial("tcp", listener.Addr().String(), ca.ClientTLSConfig(clientID))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Handshake())
	require.NoError(t, <-acceptErr)
}

func TestHandshakeFailsWithCertificateFromDifferentCA(t *testing.T) {
	ca, err := tlsutil.NewCA("vault-test-ca")
	require.NoError(t, err)
	otherCA, err := tlsutil.NewCA("rogue-ca")
	require.NoError(t, err)

	serverID, err := ca.Issue("manager", time.Hour)
	require.NoError(t, err)
	rogueClientID, err := otherCA.Issue("attacker", time.Hour)
	require.NoError(t, err)

	listener, err := tls.Listen("tcp", "127.0.0.1:0", ca.ServerTLSConfig(serverID))
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.(*tls.Conn).Handshake()
	}()

	clientCfg := ca.ClientTLSConfig(rogueClientID)
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", listener.Addr().String(), clientCfg)
	if err == nil {
		err = conn.Handshake()
		conn.Close()
	}
	require.Error(t, err)
}
