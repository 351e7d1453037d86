package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds request handling time. It cancels the
// request context after the timeout; handlers are expected to check
// context.Done() cooperatively.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
