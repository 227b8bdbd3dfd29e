package goSession

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a host-supplied request identifier to ctx. The
// Manager stamps it onto every audit event emitted for that call, so a host
// can correlate session transitions with its own request logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
