package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// BootstrapServer is the one-shot share-generation service: a freshly
// spawned bootstrap process serves exactly one GenerateShares call and then
// shuts down.
type BootstrapServer interface {
	GenerateShares(context.Context, *GenerateSharesRequest) (*GenerateSharesResponse, error)
}

func _Bootstrap_GenerateShares_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GenerateSharesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BootstrapServer).GenerateShares(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.Bootstrap/GenerateShares"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BootstrapServer).GenerateShares(ctx, req.(*GenerateSharesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var BootstrapServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.Bootstrap",
	HandlerType: (*BootstrapServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateShares", Handler: _Bootstrap_GenerateShares_Handler},
	},
	Metadata: "vault/vault.proto",
}

func RegisterBootstrapServer(s grpc.ServiceRegistrar, srv BootstrapServer) {
	s.RegisterService(&BootstrapServiceDesc, srv)
}

type BootstrapClient interface {
	GenerateShares(ctx context.Context, in *GenerateSharesRequest, opts ...grpc.CallOption) (*GenerateSharesResponse, error)
}

type bootstrapClient struct {
	cc grpc.ClientConnInterface
}

func NewBootstrapClient(cc grpc.ClientConnInterface) BootstrapClient {
	return &bootstrapClient{cc}
}

func (c *bootstrapClient) GenerateShares(ctx context.Context, in *GenerateSharesRequest, opts ...grpc.CallOption) (*GenerateSharesResponse, error) {
	out := new(GenerateSharesResponse)
	if err := c.cc.Invoke(ctx, "/vault.Bootstrap/GenerateShares", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
