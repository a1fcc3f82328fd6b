// Package tlsutil generates the in-memory CA and per-component mutual-TLS
// material every vault component needs, mirroring
// vault/crypto/certificate_manager.py and grpc_ssl.py's CA-issues-clients
// model. PEM file I/O is explicitly out of scope (spec Non-goals); every
// certificate here lives only in memory for the lifetime of the process
// that issued it.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// CA is an in-memory root certificate authority that issues short-lived
// component certificates for the manager, share servers, and bootstrap
// instances to authenticate each other over gRPC.
type CA struct {
	cert    *x509.Certificate
	certDER []byte
	key     *ecdsa.PrivateKey
	pool    *x509.CertPool
}

// NewCA generates a fresh ECDSA P-256 root CA with the given common name.
func NewCA(commonName string) (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate CA key: %w", err)
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: parse CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	return &CA{cert: cert, certDER: der, key: key, pool: pool}, nil
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate serial: %w", err)
	}
	return serial, nil
}

// Identity is one component's issued certificate plus its private key,
// ready to be loaded into a tls.Config.
type Identity struct {
	Certificate tls.Certificate
}

// Issue generates an ECDSA P-256 key and a leaf certificate for
// componentName, valid for both server and client authentication so the
// same identity can dial out and accept connections (every component in
// this system is both a gRPC client and server at some point).
func (ca *CA) Issue(componentName string, validFor time.Duration) (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate key for %q: %w", componentName, err)
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: componentName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(validFor),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:     []string{componentName, "localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: issue certificate for %q: %w", componentName, err)
	}
	tlsCert := tls.Certificate{
		Certificate: [][]byte{der, ca.certDER},
		PrivateKey:  key,
	}
	return &Identity{Certificate: tlsCert}, nil
}

// ServerTLSConfig builds a mutual-TLS server config: the component presents
// id.Certificate and requires and verifies a client certificate signed by
// this CA, the Go analogue of create_server_credentials(require_client_auth=True).
func (ca *CA) ServerTLSConfig(id *Identity) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.Certificate},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    ca.pool,
		MinVersion:   tls.VersionTLS13,
	}
}

// ClientTLSConfig builds a mutual-TLS client config: the component presents
// id.Certificate and verifies the server's certificate against this CA.
func (ca *CA) ClientTLSConfig(id *Identity) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.Certificate},
		RootCAs:      ca.pool,
		MinVersion:   tls.VersionTLS13,
	}
}
