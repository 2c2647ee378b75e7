package services

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindUnauthenticated ErrorKind = iota + 1
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindBadRequest
	KindConflict
	KindMissingCredentials
	KindInvalidCredentials
	KindUpstreamFailure
)

// AppError is the error type every service returns to the HTTP boundary.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindUnauthenticated, KindMissingCredentials, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func Unauthenticated(msg string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func BadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func InvalidTransition(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a store or gateway failure. The message shown to callers is generic.
func Upstream(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstreamFailure, Message: msg, Err: err}
}

var (
	ErrMissingCredentials = &AppError{Kind: KindMissingCredentials, Message: "Credenciais de integração ausentes"}
	ErrInvalidCredentials = &AppError{Kind: KindInvalidCredentials, Message: "Credenciais de integração inválidas"}
)
