package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/client"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// AuthMiddleware lifts the bearer credential into the request context. A
// request without one gets 401 immediately; the UI treats that as its
// redirect-to-login signal.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
			return
		}

		ctx := client.WithToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
