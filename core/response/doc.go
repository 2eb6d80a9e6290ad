// Package response provides the HTTP response builders and error types used by
// handlers and middleware.
//
// Builders return handler.Response values (String, JSON, NoContent, Status) that
// the router executes after the handler chain has finished. Failures are modelled
// as HTTPError values and propagated with Error:
//
//	return response.Error(response.ErrForbidden.WithMessage("Invalid CSRF Token"))
//
// The router hands such errors to its ErrorHandler. ErrorHandler renders plain
// text and JSONErrorHandler renders {"code": ..., "message": ...}. Errors that
// are not HTTPError values are mapped by status code to a generic HTTPError so
// internal messages never reach the client.
package response
