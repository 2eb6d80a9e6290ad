package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/handler"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// ToHTTPError converts any error to an HTTPError.
// Errors that are not HTTPError values never leak their message to the client:
// they are replaced by the generic error matching their status code.
func ToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}

	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	if base, ok := httpErrorsByStatus[status]; ok {
		return base
	}
	return ErrInternalServerError
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler returns errors as JSON responses.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
