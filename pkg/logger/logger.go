package logger

import (
	"context"

	"digihub/pkg/trace"

	"go.uber.org/zap"
)

// Log is the process-wide logger set by NewLogger.
var Log *zap.Logger

// NewLogger builds the production JSON logger, or the console logger when dev is set.
func NewLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}

// WithTrace returns logger annotated with the trace_id carried by ctx, if any.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if traceID := trace.FromContext(ctx); traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
