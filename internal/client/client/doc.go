// Package client talks to the credkeeper gRPC service.
//
// GRPCClient wraps the authapi stub, applies a per-call timeout and maps gRPC
// status codes to sentinel errors (ErrUnavailable, ErrUnauthorized,
// ErrAlreadyExists, ErrInvalidArgument) that callers match with errors.Is.
package client
