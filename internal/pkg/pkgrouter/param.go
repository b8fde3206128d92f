package pkgrouter

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// GetParam returns the named route parameter for a request dispatched by
// this router, or "" when the matched route has no such segment.
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}
