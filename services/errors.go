package services

import "net/http"

// ServiceError is a typed error with an HTTP status code. The Message
// is stable, client-facing text returned in the `error` field of the
// response body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}
