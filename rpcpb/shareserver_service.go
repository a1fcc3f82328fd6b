package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// ShareServerServer holds one vault worth of encrypted shares for each
// registered user and answers partial-decryption requests against them.
type ShareServerServer interface {
	StoreShare(context.Context, *StoreShareRequest) (*StoreShareResponse, error)
	DeleteShare(context.Context, *DeleteShareRequest) (*DeleteShareResponse, error)
	Decrypt(context.Context, *DecryptRequest) (*DecryptResponse, error)
}

func _ShareServer_StoreShare_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreShareRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShareServerServer).StoreShare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.ShareServer/StoreShare"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShareServerServer).StoreShare(ctx, req.(*StoreShareRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShareServer_DeleteShare_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteShareRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShareServerServer).DeleteShare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.ShareServer/DeleteShare"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShareServerServer).DeleteShare(ctx, req.(*DeleteShareRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShareServer_Decrypt_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DecryptRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShareServerServer).Decrypt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.ShareServer/Decrypt"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShareServerServer).Decrypt(ctx, req.(*DecryptRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ShareServerServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.ShareServer",
	HandlerType: (*ShareServerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StoreShare", Handler: _ShareServer_StoreShare_Handler},
		{MethodName: "DeleteShare", Handler: _ShareServer_DeleteShare_Handler},
		{MethodName: "Decrypt", Handler: _ShareServer_Decrypt_Handler},
	},
	Metadata: "vault/vault.proto",
}

func RegisterShareServerServer(s grpc.ServiceRegistrar, srv ShareServerServer) {
	s.RegisterService(&ShareServerServiceDesc, srv)
}

type ShareServerClient interface {
	StoreShare(ctx context.Context, in *StoreShareRequest, opts ...grpc.CallOption) (*StoreShareResponse, error)
	DeleteShare(ctx context.Context, in *DeleteShareRequest, opts ...grpc.CallOption) (*DeleteShareResponse, error)
	Decrypt(ctx context.Context, in *DecryptRequest, opts ...grpc.CallOption) (*DecryptResponse, error)
}

type shareServerClient struct {
	cc grpc.ClientConnInterface
}

func NewShareServerClient(cc grpc.ClientConnInterface) ShareServerClient {
	return &shareServerClient{cc}
}

func (c *shareServerClient) StoreShare(ctx context.Context, in *StoreShareRequest, opts ...grpc.CallOption) (*StoreShareResponse, error) {
	out := new(StoreShareResponse)
	if err := c.cc.Invoke(ctx, "/vault.ShareServer/StoreShare", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shareServerClient) DeleteShare(ctx context.Context, in *DeleteShareRequest, opts ...grpc.CallOption) (*DeleteShareResponse, error) {
	out := new(DeleteShareResponse)
	if err := c.cc.Invoke(ctx, "/vault.ShareServer/DeleteShare", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shareServerClient) Decrypt(ctx context.Context, in *DecryptRequest, opts ...grpc.CallOption) (*DecryptResponse, error) {
	out := new(DecryptResponse)
	if err := c.cc.Invoke(ctx, "/vault.ShareServer/Decrypt", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
