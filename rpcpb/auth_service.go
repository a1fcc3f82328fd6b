package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// AuthServiceServer is the SRP front door: AuthRegister stores a new
// verifier/salt pair, SecureCall is the bidirectional stream that carries a
// full login handshake followed by one authenticated application request.
type AuthServiceServer interface {
	AuthRegister(context.Context, *AuthRegisterRequest) (*AuthRegisterResponse, error)
	SecureCall(AuthService_SecureCallServer) error
}

func _AuthService_AuthRegister_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AuthRegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServiceServer).AuthRegister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vault.AuthService/AuthRegister"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServiceServer).AuthRegister(ctx, req.(*AuthRegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AuthService_SecureCallServer is the server-side handle for one SecureCall
// stream: Recv/Send carry the oneof wrappers that walk the SRP state
// machine (AWAIT_STEP1 -> AWAIT_STEP3 -> AWAIT_APPREQ -> DONE).
type AuthService_SecureCallServer interface {
	Send(*SecureRespMsgWrapper) error
	Recv() (*SecureReqMsgWrapper, error)
	grpc.ServerStream
}

type authServiceSecureCallServer struct {
	grpc.ServerStream
}

func (x *authServiceSecureCallServer) Send(m *SecureRespMsgWrapper) error {
	return x.ServerStream.SendMsg(m)
}

func (x *authServiceSecureCallServer) Recv() (*SecureReqMsgWrapper, error) {
	m := new(SecureReqMsgWrapper)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func _AuthService_SecureCall_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(AuthServiceServer).SecureCall(&authServiceSecureCallServer{stream})
}

var AuthServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "vault.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AuthRegister", Handler: _AuthService_AuthRegister_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SecureCall",
			Handler:       _AuthService_SecureCall_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "vault/auth.proto",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceServiceDesc, srv)
}

// AuthServiceClient is the client-side stub: AuthRegister plus the
// SecureCall stream opener.
type AuthServiceClient interface {
	AuthRegister(ctx context.Context, in *AuthRegisterRequest, opts ...grpc.CallOption) (*AuthRegisterResponse, error)
	SecureCall(ctx context.Context, opts ...grpc.CallOption) (AuthService_SecureCallClient, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) AuthRegister(ctx context.Context, in *AuthRegisterRequest, opts ...grpc.CallOption) (*AuthRegisterResponse, error) {
	out := new(AuthRegisterResponse)
	if err := c.cc.Invoke(ctx, "/vault.AuthService/AuthRegister", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) SecureCall(ctx context.Context, opts ...grpc.CallOption) (AuthService_SecureCallClient, error) {
	stream, err := c.cc.NewStream(ctx, &AuthServiceServiceDesc.Streams[0], "/vault.AuthService/SecureCall", opts...)
	if err != nil {
		return nil, err
	}
	return &authServiceSecureCallClient{stream}, nil
}

// AuthService_SecureCallClient is the client-side handle for the SecureCall
// stream.
type AuthService_SecureCallClient interface {
	Send(*SecureReqMsgWrapper) error
	Recv() (*SecureRespMsgWrapper, error)
	grpc.ClientStream
}

type authServiceSecureCallClient struct {
	grpc.ClientStream
}

func (x *authServiceSecureCallClient) Send(m *SecureReqMsgWrapper) error {
	return x.ClientStream.SendMsg(m)
}

func (x *authServiceSecureCallClient) Recv() (*SecureRespMsgWrapper, error) {
	m := new(SecureRespMsgWrapper)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
