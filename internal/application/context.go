package application

import (
	"context"

	"github.com/google/uuid"
)

type invocationIDKey struct{}

// newInvocationID returns a fresh id for one tools/call.
func newInvocationID() string {
	return uuid.New().String()
}

// withInvocationID attaches an invocation id to ctx.
func withInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext returns the invocation id set by the server, if any.
func InvocationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}
