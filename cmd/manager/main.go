// Command manager runs the vault orchestration hub: it spawns bootstrap and
// share-server units, serves the Manager and AuthService gRPC front doors,
// and persists users/secrets/servers to its configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dedis/onet/log"
	"github.com/jonco5555/vault/manager"
	"github.com/jonco5555/vault/spawner"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
	"github.com/jonco5555/vault/tlsutil"
)

var (
	storeDSN        string
	numShareServers int
	caCommonName    string
)

var rootCmd = &cobra.Command{
	Use:   "manager",
	Short: "Run the vault manager service",
	Long:  `manager spawns bootstrap and share-server units and serves the Manager/AuthService gRPC front doors until interrupted.`,
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&storeDSN, "store", "vault.sqlite", "sqlite DSN for persistent storage, or \"mem\" for an in-memory store")
	rootCmd.Flags().IntVar(&numShareServers, "share-servers", 3, "number of share-server units to maintain")
	rootCmd.Flags().StringVar(&caCommonName, "ca-common-name", "vault-manager-ca", "common name for the in-memory root CA")
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := openStore(storeDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ca, err := tlsutil.NewCA(caCommonName)
	if err != nil {
		return fmt.Errorf("create CA: %w", err)
	}

	svc, err := manager.New(manager.Config{
		Store:           st,
		Spawner:         spawner.NewLocalSpawner(),
		CA:              ca,
		Group:           srpauth.RFC5054Group,
		NumShareServers: numShareServers,
	})
	if err != nil {
		return fmt.Errorf("construct manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start manager: %w", err)
	}
	log.Info("manager listening on", svc.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	stopCtx, stopCancel := context.WithCancel(context.Background())
	defer stopCancel()
	return svc.Stop(stopCtx)
}

type closableStore interface {
	store.Store
	Close() error
}

func openStore(dsn string) (closableStore, error) {
	if dsn == "mem" {
		return store.NewMemStore(), nil
	}
	return store.Open(dsn)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrFatal(err)
	}
}
