package accord

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context carries call scoped information through the engine. The host is
// expected to set block time, epoch and sender before handing control to
// any engine operation. Time only advances when read at call time, there
// are no background timers.
//
// For every value XYZ of type T there are two functions:
//
//   WithXYZ(Context, T) Context
//   XYZ(Context) (val T, ok bool)
type Context = context.Context

type contextKey int

const (
	contextKeyBlockTime contextKey = iota
	contextKeyEpoch
	contextKeySender
	contextKeyLogger
)

// DefaultLogger is used for all contexts that have not set a logger
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithBlockTime sets the current block time. The host must set it exactly
// once per transaction.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns the current block time as declared by the host.
func BlockTime(ctx Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	return val, ok
}

// WithEpoch sets the current epoch.
func WithEpoch(ctx Context, epoch EpochHeight) Context {
	return context.WithValue(ctx, contextKeyEpoch, epoch)
}

// Epoch returns the current epoch as declared by the host.
func Epoch(ctx Context) (EpochHeight, bool) {
	val, ok := ctx.Value(contextKeyEpoch).(EpochHeight)
	return val, ok
}

// WithSender sets the authenticated transaction sender. Verifying the
// sender's signature is the host's job, the engine trusts this value.
func WithSender(ctx Context, addr Address) Context {
	return context.WithValue(ctx, contextKeySender, addr)
}

// Sender returns the authenticated transaction sender.
func Sender(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeySender).(Address)
	return val, ok
}

// WithLogger overrides the logger used for this call chain.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// Logger returns the logger set on the context, or DefaultLogger.
func Logger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}
