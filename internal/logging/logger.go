// Package logging is the structured logger shared by the credkeeper server,
// its transports and the authctl client. Two backends exist: log/slog
// (json or text) and zap.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	log.Info(ctx, "identity registered", "identity", id, "id", credID)
//
// Values under the keys in SensitiveKeys are masked by the slog backend.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}

// SensitiveKeys are attribute keys whose values never reach the output.
var SensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
	"secret_key":    {},
}

const redacted = "[REDACTED]"
