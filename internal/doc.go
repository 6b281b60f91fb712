// Package internal provides the core types and implementation behind the
// kickstart HTTP layer.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/kickstart", which re-exports the public API.
//
// # Core Types
//
//   - App: HTTP routing, middleware, health endpoints, and graceful shutdown
//   - Context: request/response access and JSON helpers; also a context.Context
//   - Router: interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: signature for route handlers that return errors
//   - Middleware: wraps handlers to add cross-cutting concerns
//   - ErrorHandler: renders errors returned by handlers
//   - HTTPError: status code plus user-facing message
//   - ValidationErrors: per-field problems, rendered as 422
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to
// repositories and services:
//
//	func (h *Handler) get(c kickstart.Context) error {
//	    s, err := h.svc.Get(c, id)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, s)
//	}
//
// # Lifecycle
//
// App.Run binds the listener, runs startup hooks, and serves until SIGINT,
// SIGTERM, or cancellation of the context given with WithContext. Shutdown
// stops the server first and then runs shutdown hooks in registration order,
// joining their errors.
//
//	err := app.Run(":8000",
//	    kickstart.StartupHook(coordinator.Start),
//	    kickstart.ShutdownHook(coordinator.Stop),
//	)
//
// # Error Handling
//
// Handlers return errors instead of writing error responses. HTTPError
// carries the status code; everything else is treated as an internal error
// by the configured ErrorHandler. Nothing is rendered when the handler has
// already written a response.
package internal
