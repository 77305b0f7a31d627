package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"portfolio-feed/internal/integrations/xapi"
)

type ErrorCode string

const (
	ErrorNotFound     ErrorCode = "NOT_FOUND"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// UpstreamStatus returns the X API status code carried by err, if any.
func UpstreamStatus(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

// classify maps an X API failure onto the usecase taxonomy.
func classify(reason string, err error) *Error {
	if errors.Is(err, xapi.ErrUserNotFound) {
		return newError(ErrorNotFound, reason+"_user_not_found", err)
	}
	if status, ok := UpstreamStatus(err); ok {
		if status == http.StatusTooManyRequests {
			return newError(ErrorRateLimited, reason+"_rate_limited", err)
		}
		return newError(ErrorUpstream, reason+"_upstream_error", err)
	}
	return newError(ErrorInternal, reason+"_error", err)
}

// Response bodies for failed proxy requests.
const (
	MessageUserNotFound  = "User not found"
	MessageUpstreamError = "upstream_error"
	MessageUnauthorized  = "unauthorized"
	MessageServerError   = "server_error"
)

// HTTPError maps err to the status code and error message the proxy reports.
func HTTPError(err error) (int, string) {
	var ucErr *Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, MessageServerError
	}
	switch ucErr.Code {
	case ErrorNotFound:
		return http.StatusNotFound, MessageUserNotFound
	case ErrorUnauthorized:
		return http.StatusUnauthorized, MessageUnauthorized
	case ErrorRateLimited, ErrorUpstream:
		if status, ok := UpstreamStatus(ucErr); ok {
			return status, MessageUpstreamError
		}
		return http.StatusBadGateway, MessageUpstreamError
	default:
		return http.StatusInternalServerError, MessageServerError
	}
}
