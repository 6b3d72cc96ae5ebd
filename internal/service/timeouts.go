package service

import (
	"context"
	"time"
)

// timeoutFn bounds one external call. Every completion, embedding, vector and
// relational call runs under one of these so a hang becomes a fallback, not a
// stuck turn.
type timeoutFn func(context.Context) (context.Context, context.CancelFunc)

// WithTimeout builds a timeoutFn with a fixed deadline; d <= 0 disables the
// deadline.
func WithTimeout(d time.Duration) timeoutFn {
	if d <= 0 {
		return noTimeout
	}
	return func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, d)
	}
}

func noTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}
