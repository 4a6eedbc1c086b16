package response

import (
	"net/http"
	"strings"
)

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError creates a 500 error with a custom message.
func NewHTTPError(message string) HTTPError {
	return ErrInternalServerError.WithMessage(message)
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode lets routers pick the status without knowing this type.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error with err recorded as the cause.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

func newHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	return HTTPError{
		Status:  status,
		Code:    strings.ReplaceAll(strings.ToLower(text), " ", "_"),
		Message: text,
	}
}

var (
	ErrBadRequest            = newHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = newHTTPError(http.StatusUnauthorized)
	ErrForbidden             = newHTTPError(http.StatusForbidden)
	ErrNotFound              = newHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = newHTTPError(http.StatusMethodNotAllowed)
	ErrConflict              = newHTTPError(http.StatusConflict)
	ErrRequestEntityTooLarge = newHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnprocessableEntity   = newHTTPError(http.StatusUnprocessableEntity)
	ErrTooManyRequests       = newHTTPError(http.StatusTooManyRequests)

	ErrInternalServerError = newHTTPError(http.StatusInternalServerError)
	ErrBadGateway          = newHTTPError(http.StatusBadGateway)
	ErrServiceUnavailable  = newHTTPError(http.StatusServiceUnavailable)
	ErrGatewayTimeout      = newHTTPError(http.StatusGatewayTimeout)
)

var httpErrorsByStatus = map[int]HTTPError{}

func init() {
	for _, e := range []HTTPError{
		ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound,
		ErrMethodNotAllowed, ErrConflict, ErrRequestEntityTooLarge,
		ErrUnprocessableEntity, ErrTooManyRequests, ErrInternalServerError,
		ErrBadGateway, ErrServiceUnavailable, ErrGatewayTimeout,
	} {
		httpErrorsByStatus[e.Status] = e
	}
}
