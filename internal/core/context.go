package core

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx with the id of the inbound request a completion
// belongs to. Spans started under ctx carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request id of ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
