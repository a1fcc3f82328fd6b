package manager

import (
	"context"

	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/setup"
)

// unitServer adapts a setup.Unit to rpcpb.SetupUnitServer so the manager can
// ask a spawned bootstrap/share-server unit to shut down over the network,
// the same terminate_service -> SetupUnitStub.Terminate call setup_master.py
// makes.
type unitServer struct {
	unit *setup.Unit
}

func (u *unitServer) Terminate(ctx context.Context, _ *rpcpb.TerminateRequest) (*rpcpb.TerminateResponse, error) {
	u.unit.Terminate()
	return &rpcpb.TerminateResponse{}, nil
}

var _ rpcpb.SetupUnitServer = (*unitServer)(nil)
