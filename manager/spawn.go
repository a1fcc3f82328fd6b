package manager

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dedis/onet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/jonco5555/vault/bootstrap"
	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/setup"
	"github.com/jonco5555/vault/shareserver"
)

// componentCertValidity is generous relative to how long a bootstrap or
// share-server unit is expected to live; short-lived leaf certs are not
// worth the added rotation complexity for this system's lifetimes.
const componentCertValidity = 24 * time.Hour

// registrationTimeout bounds how long the manager waits for a freshly
// spawned unit to announce itself before giving up on it, the Go analogue
// of _wait_for_container_id_registration's implicit timeout.
const registrationTimeout = 10 * time.Second

func (s *Service) dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	creds := credentials.NewTLS(s.ca.ClientTLSConfig(s.clientIdentity))
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(creds), grpc.WithBlock())
}

// registerUnit dials the manager's own SetupMaster endpoint and announces a
// freshly spawned unit, then blocks until the manager's in-memory registry
// observes it (the two-step register-then-wait rendezvous every spawned
// unit and its caller perform).
func (s *Service) registerUnit(ctx context.Context, typ setup.ServiceType, containerID, addr string, publicKey []byte) error {
	conn, err := s.dial(ctx, s.setupMasterAddr)
	if err != nil {
		return fmt.Errorf("dial setup master: %w", err)
	}
	defer conn.Close()

	client := rpcpb.NewSetupMasterClient(conn)
	_, err = client.SetupRegister(ctx, &rpcpb.SetupRegisterRequest{
		Type:        rpcpb.ServiceType(typ),
		ContainerID: containerID,
		IPAddress:   addr,
		PublicKey:   publicKey,
	})
	return err
}

func (s *Service) unregisterUnit(ctx context.Context, containerID string) {
	conn, err := s.dial(ctx, s.setupMasterAddr)
	if err != nil {
		log.Error("unregister", containerID, ":", err)
		return
	}
	defer conn.Close()

	client := rpcpb.NewSetupMasterClient(conn)
	if _, err := client.SetupUnregister(ctx, &rpcpb.SetupUnregisterRequest{ContainerID: containerID}); err != nil {
		log.Error("unregister", containerID, ":", err)
	}
}

// shareServerUnit is the UnitFunc body for a spawned share-server container:
// it serves ShareServer+SetupUnit over its own mutual-TLS listener,
// registers with the manager, and runs until told to stop.
func (s *Service) shareServerUnit(ctx context.Context, containerID string) {
	identity, err := s.ca.Issue(containerID, componentCertValidity)
	if err != nil {
		log.Error("shareserver", containerID, "issue identity:", err)
		return
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Error("shareserver", containerID, "listen:", err)
		return
	}

	srv, err := shareserver.New()
	if err != nil {
		log.Error("shareserver", containerID, "new:", err)
		lis.Close()
		return
	}
	unit := setup.NewUnit()

	grpcServer := grpc.NewServer(grpc.Creds(credentials.NewTLS(s.ca.ServerTLSConfig(identity))))
	rpcpb.RegisterShareServerServer(grpcServer, srv)
	rpcpb.RegisterSetupUnitServer(grpcServer, &unitServer{unit: unit})
	go grpcServer.Serve(lis)
	defer grpcServer.GracefulStop()

	pub := srv.PublicKey()
	if err := s.registerUnit(ctx, setup.ServiceTypeShareServer, containerID, lis.Addr().String(), pub[:]); err != nil {
		log.Error("shareserver", containerID, "register:", err)
		return
	}
	defer s.unregisterUnit(context.Background(), containerID)

	select {
	case <-ctx.Done():
	case <-unit.Stopped():
	}
}

// bootstrapUnit is the UnitFunc body for a spawned bootstrap container: a
// single GenerateShares call and it is done, per bootstrap.py's
// one-shot-then-exit lifecycle.
func (s *Service) bootstrapUnit(ctx context.Context, containerID string) {
	identity, err := s.ca.Issue(containerID, componentCertValidity)
	if err != nil {
		log.Error("bootstrap", containerID, "issue identity:", err)
		return
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Error("bootstrap", containerID, "listen:", err)
		return
	}

	unit := setup.NewUnit()
	srv := bootstrap.New(unit)

	grpcServer := grpc.NewServer(grpc.Creds(credentials.NewTLS(s.ca.ServerTLSConfig(identity))))
	rpcpb.RegisterBootstrapServer(grpcServer, srv)
	rpcpb.RegisterSetupUnitServer(grpcServer, &unitServer{unit: unit})
	go grpcServer.Serve(lis)
	defer grpcServer.GracefulStop()

	if err := s.registerUnit(ctx, setup.ServiceTypeBootstrap, containerID, lis.Addr().String(), nil); err != nil {
		log.Error("bootstrap", containerID, "register:", err)
		return
	}
	defer s.unregisterUnit(context.Background(), containerID)

	select {
	case <-ctx.Done():
	case <-unit.Stopped():
	}
}

// terminateAndRemove asks a spawned unit to stop over its own SetupUnit
// RPC, waits for the manager's registry to observe the unregistration, and
// releases the spawner's handle — the Go shape of
// setup_master.py's terminate_service.
func (s *Service) terminateAndRemove(ctx context.Context, h spawnerHandleRecord) error {
	conn, err := s.dial(ctx, h.address)
	if err != nil {
		return fmt.Errorf("dial unit %q: %w", h.handle.ContainerID, err)
	}
	client := rpcpb.NewSetupUnitClient(conn)
	_, termErr := client.Terminate(ctx, &rpcpb.TerminateRequest{})
	conn.Close()
	if termErr != nil {
		return fmt.Errorf("terminate unit %q: %w", h.handle.ContainerID, termErr)
	}

	if err := s.master.WaitForUnregistration(ctx, h.handle.ContainerID, registrationTimeout); err != nil {
		return err
	}
	return s.spawner.Remove(h.handle)
}
