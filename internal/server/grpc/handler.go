package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/gophcourse/internal/server/services"
)

func (s *GRPCServer) Reveal(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	password, err := s.reveal.Reveal(ctx, req.GetValue())
	if err != nil {
		return nil, revealStatus(err)
	}
	return wrapperspb.String(password), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func revealStatus(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, "email is required")
	case errors.Is(err, services.ErrNotFound):
		return status.Error(codes.NotFound, services.ErrNotFound.Error())
	case errors.Is(err, services.ErrDeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "credential expired, contact support")
	default:
		return status.Error(codes.Internal, "could not reveal credential")
	}
}
