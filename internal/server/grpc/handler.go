package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/credkeeper/internal/authapi"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *authapi.RegisterRequest) (*authapi.AuthResponse, error) {
	result, err := s.auth.Register(ctx, req.GetIdentity(), req.GetPassword())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateIdentity):
			return nil, status.Error(codes.AlreadyExists, "user already exists")
		case errors.Is(err, common.ErrInvalidIdentity):
			return nil, status.Error(codes.InvalidArgument, "invalid identity")
		}
		s.logger.Error(ctx, "register failed", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &authapi.AuthResponse{Identity: result.Identity, Token: result.Token}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authapi.LoginRequest) (*authapi.AuthResponse, error) {
	result, err := s.auth.Login(ctx, req.GetIdentity(), req.GetPassword())
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		s.logger.Error(ctx, "login failed", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &authapi.AuthResponse{Identity: result.Identity, Token: result.Token}, nil
}

func (s *GRPCServer) Validate(ctx context.Context, req *authapi.ValidateRequest) (*authapi.ValidateResponse, error) {
	return &authapi.ValidateResponse{Valid: s.auth.ValidateToken(ctx, req.GetToken())}, nil
}
