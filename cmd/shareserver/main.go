// Command shareserver runs a standalone share-holder unit: it serves
// StoreShare/DeleteShare/Decrypt over its own mutual-TLS listener until
// interrupted. In the automated LocalSpawner deployment the manager process
// spawns this logic in-process (see manager/spawn.go); this binary exists
// for manual testing in isolation, so it mints its own throwaway CA rather
// than sharing the manager's.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/dedis/onet/log"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/shareserver"
	"github.com/jonco5555/vault/tlsutil"
)

var listenAddr string

var rootCmd = &cobra.Command{
	Use:   "shareserver",
	Short: "Run a standalone share-server unit for manual testing",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:0", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ca, err := tlsutil.NewCA("shareserver-standalone-ca")
	if err != nil {
		return fmt.Errorf("create CA: %w", err)
	}
	identity, err := ca.Issue("shareserver", 24*time.Hour)
	if err != nil {
		return fmt.Errorf("issue identity: %w", err)
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv, err := shareserver.New()
	if err != nil {
		return fmt.Errorf("construct share server: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.Creds(credentials.NewTLS(ca.ServerTLSConfig(identity))))
	rpcpb.RegisterShareServerServer(grpcServer, srv)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		grpcServer.GracefulStop()
	}()

	pub := srv.PublicKey()
	log.Info("shareserver listening on", lis.Addr(), "public key", pub)
	return grpcServer.Serve(lis)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrFatal(err)
	}
}
