// Command vaultd is the single-binary all-in-one demo: it builds a manager
// service and a user client in one process (sharing the same in-memory CA,
// so no InsecureSkipVerify shortcut is needed) and runs through
// register/store/retrieve, per SPEC_FULL.md's LocalSpawner "single-process
// demo" framing.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/dedis/onet/log"
	"github.com/jonco5555/vault/manager"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/spawner"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
	"github.com/jonco5555/vault/tlsutil"
	"github.com/jonco5555/vault/userclient"
)

func dial(ctx context.Context, ca *tlsutil.CA, addr string) (*grpc.ClientConn, error) {
	identity, err := ca.Issue("vaultd-demo-client", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("issue client identity: %w", err)
	}
	creds := credentials.NewTLS(ca.ClientTLSConfig(identity))
	conn, err := grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(creds), grpc.WithBlock())
	if err != nil {
		return nil, fmt.Errorf("dial manager: %w", err)
	}
	return conn, nil
}

var (
	numShareServers int
	userID          string
	password        string
	secretID        string
	secret          string
)

var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "Run the vault manager and a demo user client in one process",
	RunE:  runDemo,
}

func init() {
	rootCmd.Flags().IntVar(&numShareServers, "share-servers", 3, "number of share-server units to maintain")
	rootCmd.Flags().StringVar(&userID, "user", "alice", "demo user id")
	rootCmd.Flags().StringVar(&password, "password", "correct horse battery staple", "demo user password")
	rootCmd.Flags().StringVar(&secretID, "secret-id", "my super secret id", "demo secret id")
	rootCmd.Flags().StringVar(&secret, "secret", "my super secret", "demo secret value")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ca, err := tlsutil.NewCA("vaultd-ca")
	if err != nil {
		return fmt.Errorf("create CA: %w", err)
	}

	svc, err := manager.New(manager.Config{
		Store:           store.NewMemStore(),
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
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error("stop manager:", err)
		}
	}()
	log.Info("manager listening on", svc.Addr())

	conn, err := dial(ctx, ca, svc.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := userclient.New(userID, srpauth.RFC5054Group,
		rpcpb.NewManagerClient(conn), rpcpb.NewAuthServiceClient(conn), numShareServers)
	if err != nil {
		return fmt.Errorf("construct user client: %w", err)
	}

	log.Info("registration phase")
	if err := client.Register(ctx, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	log.Info("storage phase")
	if err := client.StoreSecret(ctx, secretID, []byte(secret)); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}

	log.Info("retrieval phase")
	retrieved, err := client.RetrieveSecret(ctx, secretID)
	if err != nil {
		return fmt.Errorf("retrieve secret: %w", err)
	}

	if string(retrieved) != secret {
		return fmt.Errorf("round trip mismatch: stored %q, retrieved %q", secret, retrieved)
	}
	log.Info("round trip succeeded:", string(retrieved))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrFatal(err)
	}
}
