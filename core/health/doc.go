// Package health serves liveness and readiness probes.
//
//	r.Get("/healthz", health.Liveness[*router.Context])
//	r.Get("/readyz", health.Readiness[*router.Context](log,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
//
// Readiness runs every check and answers 503 with the failing names when any
// of them returns an error.
package health
