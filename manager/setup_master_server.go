package manager

import (
	"context"
	"fmt"

	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/setup"
	"github.com/jonco5555/vault/store"
)

// setupMasterServer adapts setup.Master to rpcpb.SetupMasterServer: every
// spawned bootstrap/share-server unit dials this service to announce itself
// before the manager will treat it as ready, exactly as
// setup_master.py's SetupRegister/SetupUnregister handlers do.
type setupMasterServer struct {
	master *setup.Master
	store  store.Store
}

func newSetupMasterServer(master *setup.Master, st store.Store) *setupMasterServer {
	return &setupMasterServer{master: master, store: st}
}

func (s *setupMasterServer) SetupRegister(ctx context.Context, req *rpcpb.SetupRegisterRequest) (*rpcpb.SetupRegisterResponse, error) {
	rec := setup.ServiceRecord{
		Type:        setup.ServiceType(req.Type),
		ContainerID: req.ContainerID,
		IPAddress:   req.IPAddress,
		PublicKey:   req.PublicKey,
	}
	if err := s.store.AddServer(ctx, rec); err != nil {
		return nil, fmt.Errorf("setup register %q: %w", req.ContainerID, err)
	}
	s.master.Register(rec)
	return &rpcpb.SetupRegisterResponse{IsRegistered: true}, nil
}

func (s *setupMasterServer) SetupUnregister(ctx context.Context, req *rpcpb.SetupUnregisterRequest) (*rpcpb.SetupUnregisterResponse, error) {
	storeErr := s.store.RemoveServer(ctx, req.ContainerID)
	found := s.master.Unregister(req.ContainerID)
	return &rpcpb.SetupUnregisterResponse{IsUnregistered: found && storeErr == nil}, nil
}

var _ rpcpb.SetupMasterServer = (*setupMasterServer)(nil)
