package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/authapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      authapi.AuthServiceClient
}

// NewGRPCClient prepares a lazy connection to endpointURL. No network I/O
// happens until the first call.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}

	return &GRPCClient{
		endpointURL: endpointURL,
		timeout:     timeout,
		conn:        conn,
		client:      authapi.NewAuthServiceClient(conn),
	}, nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Register creates an account and returns its first token.
func (s *GRPCClient) Register(ctx context.Context, identity string, password []byte) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Register(ctx, &authapi.RegisterRequest{Identity: identity, Password: string(password)})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetToken(), nil
}

// Login exchanges credentials for a token.
func (s *GRPCClient) Login(ctx context.Context, identity string, password []byte) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &authapi.LoginRequest{Identity: identity, Password: string(password)})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetToken(), nil
}

// Validate asks the server whether token is currently valid.
func (s *GRPCClient) Validate(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Validate(ctx, &authapi.ValidateRequest{Token: token})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.GetValid(), nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return ErrInvalidArgument
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
