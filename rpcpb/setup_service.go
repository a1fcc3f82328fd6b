package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// SetupMasterServer is the server-side contract for the SetupMaster
// service: unit registration/unregistration, called by every spawned
// bootstrap or share-server process.
type SetupMasterServer interface {
	SetupRegister(context.Context, *SetupRegisterRequest) (*SetupRegisterResponse, error)
	SetupUnregister(context.Context, *SetupUnregisterRequest) (*SetupUnregisterResponse, error)
}

func _SetupMaster_SetupRegister_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetupRegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SetupMasterServer).SetupRegister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.SetupMaster/SetupRegister"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SetupMasterServer).SetupRegister(ctx, req.(*SetupRegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SetupMaster_SetupUnregister_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetupUnregisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SetupMasterServer).SetupUnregister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.SetupMaster/SetupUnregister"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SetupMasterServer).SetupUnregister(ctx, req.(*SetupUnregisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// SetupMasterServiceDesc is the hand-declared equivalent of what
// protoc-gen-go-grpc would emit for the SetupMaster service.
var SetupMasterServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.SetupMaster",
	HandlerType: (*SetupMasterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetupRegister", Handler: _SetupMaster_SetupRegister_Handler},
		{MethodName: "SetupUnregister", Handler: _SetupMaster_SetupUnregister_Handler},
	},
	Metadata: "vault/setup.proto",
}

// RegisterSetupMasterServer wires srv into s the way
// setup_pb2_grpc.add_SetupMasterServicer_to_server does.
func RegisterSetupMasterServer(s grpc.ServiceRegistrar, srv SetupMasterServer) {
	s.RegisterService(&SetupMasterServiceDesc, srv)
}

// SetupMasterClient is the client-side stub for SetupMaster.
type SetupMasterClient interface {
	SetupRegister(ctx context.Context, in *SetupRegisterRequest, opts ...grpc.CallOption) (*SetupRegisterResponse, error)
	SetupUnregister(ctx context.Context, in *SetupUnregisterRequest, opts ...grpc.CallOption) (*SetupUnregisterResponse, error)
}

type setupMasterClient struct {
	cc grpc.ClientConnInterface
}

// NewSetupMasterClient wraps a ClientConn, mirroring
// setup_pb2_grpc.SetupMasterStub.
func NewSetupMasterClient(cc grpc.ClientConnInterface) SetupMasterClient {
	return &setupMasterClient{cc}
}

func (c *setupMasterClient) SetupRegister(ctx context.Context, in *SetupRegisterRequest, opts ...grpc.CallOption) (*SetupRegisterResponse, error) {
	out := new(SetupRegisterResponse)
	if err := c.cc.Invoke(ctx, "/vault.SetupMaster/SetupRegister", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *setupMasterClient) SetupUnregister(ctx context.Context, in *SetupUnregisterRequest, opts ...grpc.CallOption) (*SetupUnregisterResponse, error) {
	out := new(SetupUnregisterResponse)
	if err := c.cc.Invoke(ctx, "/vault.SetupMaster/SetupUnregister", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// --- SetupUnit service: a single Terminate RPC, sent by the SetupMaster to
// a spawned unit. ---

type SetupUnitServer interface {
	Terminate(context.Context, *TerminateRequest) (*TerminateResponse, error)
}

func _SetupUnit_Terminate_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TerminateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SetupUnitServer).Terminate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.SetupUnit/Terminate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SetupUnitServer).Terminate(ctx, req.(*TerminateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var SetupUnitServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.SetupUnit",
	HandlerType: (*SetupUnitServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Terminate", Handler: _SetupUnit_Terminate_Handler},
	},
	Metadata: "vault/setup.proto",
}

func RegisterSetupUnitServer(s grpc.ServiceRegistrar, srv SetupUnitServer) {
	s.RegisterService(&SetupUnitServiceDesc, srv)
}

type SetupUnitClient interface {
	Terminate(ctx context.Context, in *TerminateRequest, opts ...grpc.CallOption) (*TerminateResponse, error)
}

type setupUnitClient struct {
	cc grpc.ClientConnInterface
}

func NewSetupUnitClient(cc grpc.ClientConnInterface) SetupUnitClient {
	return &setupUnitClient{cc}
}

func (c *setupUnitClient) Terminate(ctx context.Context, in *TerminateRequest, opts ...grpc.CallOption) (*TerminateResponse, error) {
	out := new(TerminateResponse)
	if err := c.cc.Invoke(ctx, "/vault.SetupUnit/Terminate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
