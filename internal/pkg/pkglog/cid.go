package pkglog

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores a correlation ID into the context. Router
// middleware calls this once per request before any handler runs.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}

// GetCorrelationID returns the correlation ID carried by the context, or the
// empty string when none was set. Callers treat "" as "do not emit the attr".
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey{}).(string)
	return cid
}
