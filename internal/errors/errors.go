package errors

import (
	"errors"
	"net/http"
)

// ErrorWithStatusCode carries the HTTP status a handler should answer with.
// Errors without it are rendered as 500.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func New(statusCode int, message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

// StatusCode unwraps err looking for an ErrorWithStatusCode.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
