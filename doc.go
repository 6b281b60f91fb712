// Package kickstart is a service skeleton that runs three things in one
// process: a JSON HTTP API, a background poll loop that drains a message
// source with bounded exponential backoff, and a cron scheduler with
// persisted job state, misfire grace and coalescing.
//
// This package holds the HTTP layer: an App built on chi with a
// Context-based handler signature. The background pieces live in pkg/:
//
//   - pkg/backoff: bounded doubling delay policy
//   - pkg/poller: fetch/process loop driven by a backoff policy
//   - pkg/scheduler: cron triggers on robfig/cron with a Postgres job store
//   - pkg/lifecycle: start and stop the poller, the scheduler and shared resources in order
//
// cmd/kickstart wires everything together.
//
// # Quick Start
//
//	app := kickstart.New(
//	    kickstart.WithLogger(log),
//	    kickstart.WithMiddleware(middlewares.RequestLogger(), middlewares.Recover()),
//	    kickstart.WithErrorHandler(middlewares.JSONErrorHandler()),
//	    kickstart.WithHealthChecks(kickstart.WithServiceName("kickstart")),
//	    kickstart.WithHandlers(sample.NewHandler(svc)),
//	)
//
//	err := app.Run(":8000",
//	    kickstart.StartupHook(coordinator.Start),
//	    kickstart.ShutdownHook(coordinator.Stop),
//	)
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes and return
// errors instead of writing error responses:
//
//	func (h *Handler) Routes(r kickstart.Router) {
//	    r.Route("/api/v1/samples", func(r kickstart.Router) {
//	        r.GET("/{id}", h.get)
//	    })
//	}
//
//	func (h *Handler) get(c kickstart.Context) error {
//	    s, err := h.svc.Get(c, c.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, s)
//	}
//
// # Error Handling
//
// Return a [HTTPError] to pick the status code, or [ValidationErrors] for
// per-field problems. Other errors become 500 responses; the detail is only
// exposed when the error handler is configured to do so.
package kickstart
