// Package proto describes the gophcourse.v1.Credentials gRPC service. The
// messages are protobuf well-known wrapper types, so the service descriptor
// and client are written out here instead of generated from a .proto file.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	CredentialsServiceName = "gophcourse.v1.Credentials"

	CredentialsRevealFullMethod = "/gophcourse.v1.Credentials/Reveal"
	CredentialsPingFullMethod   = "/gophcourse.v1.Credentials/Ping"
)

// CredentialsServer is the server API of the Credentials service.
//
// Reveal takes the account email and returns the one-time credential.
type CredentialsServer interface {
	Reveal(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// UnimplementedCredentialsServer can be embedded to have forward compatible implementations.
type UnimplementedCredentialsServer struct{}

func (UnimplementedCredentialsServer) Reveal(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Reveal not implemented")
}

func (UnimplementedCredentialsServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterCredentialsServer(s grpc.ServiceRegistrar, srv CredentialsServer) {
	s.RegisterService(&CredentialsServiceDesc, srv)
}

func credentialsRevealHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialsServer).Reveal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CredentialsRevealFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CredentialsServer).Reveal(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func credentialsPingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialsServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CredentialsPingFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CredentialsServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var CredentialsServiceDesc = grpc.ServiceDesc{
	ServiceName: CredentialsServiceName,
	HandlerType: (*CredentialsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reveal", Handler: credentialsRevealHandler},
		{MethodName: "Ping", Handler: credentialsPingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophcourse/v1/credentials.proto",
}

// CredentialsClient is the client API of the Credentials service.
type CredentialsClient interface {
	Reveal(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type credentialsClient struct {
	cc grpc.ClientConnInterface
}

func NewCredentialsClient(cc grpc.ClientConnInterface) CredentialsClient {
	return &credentialsClient{cc}
}

func (c *credentialsClient) Reveal(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CredentialsRevealFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *credentialsClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CredentialsPingFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
