package pkgrouter

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// GetParam reads a path parameter from the request context (as stored by httprouter).
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}

// GetQuery returns the first value of the query parameter key with
// surrounding whitespace removed.
func GetQuery(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
