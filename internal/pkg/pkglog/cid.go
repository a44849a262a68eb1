package pkglog

import "context"

type chainIDContextKey struct{}

type sessionIDContextKey struct{}

// GetCorrelationID returns the correlation ID stored in the context.
//
// Middleware is expected to set this value early in the request lifecycle so
// it can be attached to logs and propagated to downstream calls.
func GetCorrelationID(ctx context.Context) string {
	clm, ok := ctx.Value(chainIDContextKey{}).(string)
	if !ok {
		return "[invalid_chain_id]"
	}
	return clm
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}

// GetSessionID returns the dataset session bound to ctx, or "".
func GetSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDContextKey{}).(string)
	return sid
}

// SetSessionID binds a dataset session to ctx so every record logged with it
// carries a session_id attribute.
func SetSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey{}, sid)
}
