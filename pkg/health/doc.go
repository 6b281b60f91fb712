// Package health provides HTTP handlers for health probes.
//
// [StatusHandler] answers a static status document naming the service.
// [LivenessHandler] is an always-OK endpoint for process liveness.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers 503
// when any of them fails. [Run] exposes the same evaluation without HTTP.
//
// Check functions share the func(context.Context) error signature of
// db.Healthcheck and redis.Healthcheck, so they plug in directly:
//
//	r.Get("/health", health.StatusHandler("kickstart"))
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "db":     db.Healthcheck(pool),
//	    "redis":  redis.Healthcheck(client),
//	    "poller": pollerCheck,
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// # Response Formats
//
// Liveness and readiness respond with plain text ("OK" or
// "Service Unavailable") unless the client sends Accept: application/json or
// ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "db": {"status": "healthy"},
//	    "redis": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
//
// # Error Handling
//
//   - [ErrCheckFailed] - returned by Run when one or more checks fail
//   - [ErrCheckTimeout] - joined into a check error when the shared timeout expires
package health
