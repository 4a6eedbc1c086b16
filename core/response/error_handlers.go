package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
)

type statusCode interface {
	StatusCode() int
}

// alreadyWritten is implemented by writers that track whether headers were sent.
type alreadyWritten interface {
	Written() bool
}

// AsHTTPError converts any error to an HTTPError.
// HTTPError values pass through; errors with StatusCode() int map to the
// matching predefined error; everything else becomes a 500. The internal
// message of unknown errors is never exposed.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	if base, ok := httpErrorsByStatus[status]; ok {
		return base
	}
	return newHTTPError(status)
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	if written(ctx) {
		return
	}
	httpErr := AsHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	if written(ctx) {
		return
	}
	httpErr := AsHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

func written(ctx handler.Context) bool {
	w, ok := ctx.ResponseWriter().(alreadyWritten)
	return ok && w.Written()
}
