package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/staynest/booking-api/internal/pkg/logger"
)

// Logger writes one access log line per request.
// Liveness probes are logged at debug level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		l := logger.FromContext(r.Context())
		var event *zerolog.Event
		switch {
		case rec.status >= http.StatusInternalServerError:
			event = l.Error()
		case rec.status >= http.StatusBadRequest:
			event = l.Warn()
		case r.URL.Path == "/health":
			event = l.Debug()
		default:
			event = l.Info()
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		event.
			Str("method", r.Method).
			Str("route", route).
			Str("query", r.URL.RawQuery).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Str("ip", getClientIP(r)).
			Msg("HTTP Request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// getClientIP returns the host part of RemoteAddr.
// Forwarding headers are honoured only through chi's RealIP, which runs first when enabled.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
