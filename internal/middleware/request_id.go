package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/staynest/booking-api/internal/pkg/logger"
)

const maxRequestIDLength = 64

// RequestID propagates X-Request-ID, generating one when the caller sent none
// or an oversized value, and tags the request logger with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
