// Command user is the vault end-user CLI. Its only subcommand, demo,
// mirrors original_source/src/vault/user/__main__.py's simulate_client:
// register, store one secret, retrieve it, and confirm the round trip in a
// single process lifetime. A client's share and group key live only in
// that process's memory (never persisted), so the CLI has no separate
// register, store or retrieve subcommands; demo runs all three in one
// invocation.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/dedis/onet/log"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/userclient"
)

var (
	managerAddr     string
	userID          string
	password        string
	numShareServers int
	rpcTimeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "user",
	Short: "Interact with a running vault manager as an end user",
}

var demoCmd = &cobra.Command{
	Use:   "demo <secret-id> <value>",
	Short: "Register, store one secret, and retrieve it back in one run",
	Args:  cobra.ExactArgs(2),
	RunE:  runDemo,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&managerAddr, "manager", "127.0.0.1:50051", "manager address")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user id (required)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "user password (required)")
	rootCmd.PersistentFlags().IntVar(&numShareServers, "share-servers", 3, "number of share servers the manager maintains")
	rootCmd.PersistentFlags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "timeout for the whole demo run (register, store and retrieve)")
	rootCmd.MarkPersistentFlagRequired("user")
	rootCmd.MarkPersistentFlagRequired("password")

	rootCmd.AddCommand(demoCmd)
}

// newClient dials the manager insecurely-verified: this standalone CLI has
// no mechanism to obtain the manager's in-memory CA pool (tlsutil keeps its
// CA material process-local by design), so it skips server certificate
// verification. cmd/vaultd, which holds the real CA in the same process,
// does not take this shortcut.
func newClient() (*userclient.Client, func() error, error) {
	creds := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
	conn, err := grpc.Dial(managerAddr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("dial manager: %w", err)
	}
	client, err := userclient.New(userID, srpauth.RFC5054Group,
		rpcpb.NewManagerClient(conn), rpcpb.NewAuthServiceClient(conn), numShareServers)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("construct client: %w", err)
	}
	return client, conn.Close, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	secretID, secret := args[0], args[1]

	client, closeConn, err := newClient()
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

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
