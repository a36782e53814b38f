package logging

import (
	"context"
	"slices"
)

type ctxKey struct{}

// ContextWith returns a copy of ctx carrying key/value pairs. Every backend
// adds them to records logged with that context, after the logger's own
// attributes and before the call's args.
func ContextWith(ctx context.Context, args ...any) context.Context {
	merged := append(slices.Clip(fromContext(ctx)), args...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func fromContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	args, _ := ctx.Value(ctxKey{}).([]any)
	return args
}

// withContextArgs prepends the pairs carried by ctx to args.
func withContextArgs(ctx context.Context, args []any) []any {
	extra := fromContext(ctx)
	if len(extra) == 0 {
		return args
	}
	return append(slices.Clip(extra), args...)
}
