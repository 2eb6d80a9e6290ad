package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/sessionkit/core/handler"
)

var (
	ErrNoContextFactory = errors.New("no context factory provided")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNotFound         = errors.New("not found")
	ErrNilResponse      = errors.New("nil response")
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrNilSubrouter     = errors.New("nil subrouter")
)

// statusCode is an unexported interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// routingError carries a status for the router's own failures.
type routingError struct {
	err    error
	status int
}

func (e routingError) Error() string   { return e.err.Error() }
func (e routingError) Unwrap() error   { return e.err }
func (e routingError) StatusCode() int { return e.status }

// defaultErrorHandler writes a plain text error. Only errors that carry their own
// status code are considered safe to show; anything else becomes a bare 500.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()

	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	var sc statusCode
	if errors.As(err, &sc) {
		http.Error(w, err.Error(), sc.StatusCode())
		return
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// PanicError allows external error handlers to detect and handle panics.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

func toPanicError(v any) error {
	return &panicError{value: v, stack: debug.Stack()}
}
