package middleware

import (
	"context"
	"net/http"

	"github.com/Allantoteles/MyPork/pkg/uid"
)

// contextKey is a private type so request-scoped values cannot collide with
// other packages.
type contextKey string

// RequestIDKey is the context key under which the request id is stored.
const RequestIDKey contextKey = "request_id"

// RequestID tags every request with an id, honoring one supplied by the
// caller via X-Request-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uid.New()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request id from context, or empty.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
