package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart/internal"
	"github.com/dmitrymomot/kickstart/middlewares"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

func corsApp(opts ...middlewares.CORSOption) *internal.App {
	return newApp(logger.NewNope(), []internal.Middleware{middlewares.CORS(opts...)}, func(r internal.Router) {
		r.GET("/api/v1/samples", func(c internal.Context) error {
			return c.String(http.StatusOK, "ok")
		})
	})
}

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/samples", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	}
	return req
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("wildcard without credentials", func(t *testing.T) {
		t.Parallel()

		w := do(corsApp(), corsRequest(http.MethodGet, "https://app.example.com"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Request-ID, X-Correlation-ID", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		w := do(corsApp(middlewares.WithAllowCredentials()), corsRequest(http.MethodGet, "https://app.example.com"))
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Values("Vary"), "Origin")
	})

	t.Run("no origin header means no CORS headers", func(t *testing.T) {
		t.Parallel()

		w := do(corsApp(), corsRequest(http.MethodGet, ""))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin list from env", func(t *testing.T) {
		t.Parallel()

		app := corsApp(middlewares.WithAllowOrigins(" https://a.example.com", "", "https://b.example.com "))

		w := do(app, corsRequest(http.MethodGet, "https://b.example.com"))
		assert.Equal(t, "https://b.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = do(app, corsRequest(http.MethodGet, "https://evil.example.com"))
		require.Equal(t, http.StatusOK, w.Code, "disallowed origins still reach the handler")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty origin list keeps wildcard", func(t *testing.T) {
		t.Parallel()

		w := do(corsApp(middlewares.WithAllowOrigins("", " ")), corsRequest(http.MethodGet, "https://x.example.com"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		app := corsApp(
			middlewares.WithAllowOrigins("https://a.example.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool { return origin == "https://dyn.example.com" }),
		)
		w := do(app, corsRequest(http.MethodGet, "https://a.example.com"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

		w = do(app, corsRequest(http.MethodGet, "https://dyn.example.com"))
		assert.Equal(t, "https://dyn.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		w := do(corsApp(middlewares.WithAllowCredentials()), corsRequest(http.MethodOptions, "https://app.example.com"))
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Correlation-ID")
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Values("Vary"), "Access-Control-Request-Method")
	})
}
