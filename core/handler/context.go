package handler

import (
	"context"
	"net/http"
)

// Context is the per-request value handed to every handler. It is itself a
// context.Context so it can be passed straight to stores and backends.
// router.Context is the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	// SetValue replaces the request with one whose context carries key.
	SetValue(key, val any)
}
