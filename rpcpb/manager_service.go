package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// ManagerServer is the user-facing entry point: registration, and
// storing/retrieving secrets.
type ManagerServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	StoreSecret(context.Context, *StoreSecretRequest) (*StoreSecretResponse, error)
	RetrieveSecret(context.Context, *RetrieveSecretRequest) (*RetrieveSecretResponse, error)
}

func _Manager_Register_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagerServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.Manager/Register"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ManagerServer).Register(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Manager_StoreSecret_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreSecretRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagerServer).StoreSecret(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.Manager/StoreSecret"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ManagerServer).StoreSecret(ctx, req.(*StoreSecretRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Manager_RetrieveSecret_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RetrieveSecretRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagerServer).RetrieveSecret(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.Manager/RetrieveSecret"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ManagerServer).RetrieveSecret(ctx, req.(*RetrieveSecretRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.Manager",
	HandlerType: (*ManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: _Manager_Register_Handler},
		{MethodName: "StoreSecret", Handler: _Manager_StoreSecret_Handler},
		{MethodName: "RetrieveSecret", Handler: _Manager_RetrieveSecret_Handler},
	},
	Metadata: "vault/vault.proto",
}

func RegisterManagerServer(s grpc.ServiceRegistrar, srv ManagerServer) {
	s.RegisterService(&ManagerServiceDesc, srv)
}

type ManagerClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	StoreSecret(ctx context.Context, in *StoreSecretRequest, opts ...grpc.CallOption) (*StoreSecretResponse, error)
	RetrieveSecret(ctx context.Context, in *RetrieveSecretRequest, opts ...grpc.CallOption) (*RetrieveSecretResponse, error)
}

type managerClient struct {
	cc grpc.ClientConnInterface
}

func NewManagerClient(cc grpc.ClientConnInterface) ManagerClient {
	return &managerClient{cc}
}

func (c *managerClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.cc.Invoke(ctx, "/vault.Manager/Register", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *managerClient) StoreSecret(ctx context.Context, in *StoreSecretRequest, opts ...grpc.CallOption) (*StoreSecretResponse, error) {
	out := new(StoreSecretResponse)
	if err := c.cc.Invoke(ctx, "/vault.Manager/StoreSecret", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *managerClient) RetrieveSecret(ctx context.Context, in *RetrieveSecretRequest, opts ...grpc.CallOption) (*RetrieveSecretResponse, error) {
	out := new(RetrieveSecretResponse)
	if err := c.cc.Invoke(ctx, "/vault.Manager/RetrieveSecret", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
