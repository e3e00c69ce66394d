package logging

import (
	"context"
	"io"
	"log/slog"

	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON = "json"
	FormatText = "text"
	FormatZap  = "zap"
)

// New returns a Logger writing to w in the given format.
func New(format string, w io.Writer, debug bool) (Logger, error) {
	if format == FormatZap {
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}
		return NewZapConsole(w, level), nil
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return NewSlogLogger(w, format, level)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
