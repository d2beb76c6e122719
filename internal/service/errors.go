package service

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal")
)

// ServiceError wraps a sentinel error with a specific code and message for the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

// BadRequest reports invalid client input. It is never retried.
func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

// Internal reports a server-side failure, typically the store.
func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}
