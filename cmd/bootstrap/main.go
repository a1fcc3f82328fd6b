// Command bootstrap runs a standalone bootstrap unit: it serves exactly one
// GenerateShares call over its own mutual-TLS listener and exits. In the
// automated LocalSpawner deployment the manager process spawns this logic
// in-process (see manager/spawn.go); this binary exists for manual testing
// against a bootstrap unit in isolation, so it mints its own throwaway CA
// rather than sharing the manager's.
package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/dedis/onet/log"
	"github.com/jonco5555/vault/bootstrap"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/setup"
	"github.com/jonco5555/vault/tlsutil"
)

var listenAddr string

var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run a standalone bootstrap unit for manual testing",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:0", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ca, err := tlsutil.NewCA("bootstrap-standalone-ca")
	if err != nil {
		return fmt.Errorf("create CA: %w", err)
	}
	identity, err := ca.Issue("bootstrap", 24*time.Hour)
	if err != nil {
		return fmt.Errorf("issue identity: %w", err)
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	unit := setup.NewUnit()
	srv := bootstrap.New(unit)

	grpcServer := grpc.NewServer(grpc.Creds(credentials.NewTLS(ca.ServerTLSConfig(identity))))
	rpcpb.RegisterBootstrapServer(grpcServer, srv)

	go func() {
		<-unit.Stopped()
		grpcServer.GracefulStop()
	}()

	log.Info("bootstrap listening on", lis.Addr())
	return grpcServer.Serve(lis)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrFatal(err)
	}
}
