package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/response"
)

// Check is a named dependency probe, e.g. a session backend ping.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusOK    = "ok"
	statusReady = "ready"
	statusDown  = "unavailable"
)

// Liveness always answers 200 "ALIVE".
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// Readiness runs all checks in order and reports each result.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx C) handler.Response {
		report := Report{Status: statusReady}
		if len(checks) > 0 {
			report.Checks = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				report.Status = statusDown
				report.Checks[c.Name] = statusDown
				continue
			}
			report.Checks[c.Name] = statusOK
		}
		if report.Status != statusReady {
			return response.JSONWithStatus(report, http.StatusServiceUnavailable)
		}
		return response.JSON(report)
	}
}
