package middlewares

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/internal"
)

// RequestLogger returns middleware that logs every request twice: an
// "incoming request" line before the handler runs and an "outgoing response"
// line with status and duration afterwards. It assigns request and
// correlation ids the same way RequestID does, so it can be used alone.
func RequestLogger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			r := c.Request()
			reqID, corrID := assignIDs(c, uuid.NewString)

			c.LogInfo("incoming request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("client_ip", clientIP(r)),
				slog.String("request_id", reqID),
				slog.String("correlation_id", corrID),
			)

			err := next(c)

			status := http.StatusOK
			if rw, ok := c.Response().(*internal.ResponseWriter); ok {
				status = rw.Status()
			}
			if err != nil && !c.Written() {
				// The error is rendered by an outer error handler; report what it will most likely send.
				status = http.StatusInternalServerError
				if he := internal.AsHTTPError(err); he != nil {
					status = he.Code
				}
			}

			c.LogInfo("outgoing response",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("request_id", reqID),
				slog.String("correlation_id", corrID),
			)
			return err
		}
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
