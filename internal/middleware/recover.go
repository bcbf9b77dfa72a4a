package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/staynest/booking-api/internal/pkg/logger"
	"github.com/staynest/booking-api/internal/pkg/response"
)

// Recover turns a panic in a handler into a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error().
				Str("request_id", logger.RequestID(r.Context())).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", r.Method+" "+r.URL.Path).
				Msg("Handler panicked")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
