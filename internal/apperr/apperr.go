// Package apperr classifies failures so the HTTP layer can map them to a
// status without knowing which service produced them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(code, format string, args ...any) *Error {
	return New(KindValidation, code, fmt.Errorf(format, args...))
}

func NotFound(code, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Errorf(format, args...))
}

func External(code string, err error) *Error {
	return New(KindExternal, code, err)
}

func Internal(err error) *Error {
	return New(KindInternal, "internal_error", err)
}

// Expected business outcomes. Callers match them with errors.Is.
var (
	ErrAlreadyEnrolled     = New(KindConflict, "already_enrolled", errors.New("user is already enrolled in this course"))
	ErrRequestPending      = New(KindConflict, "request_pending", errors.New("a request for this course is already pending"))
	ErrInvalidReorder      = New(KindValidation, "invalid_reorder", errors.New("positions must be a permutation of the current siblings"))
	ErrInvalidSignature    = New(KindUnauthorized, "invalid_signature", errors.New("webhook signature verification failed"))
	ErrPaymentNotCaptured  = New(KindValidation, "payment_not_captured", errors.New("payment has not been captured"))
	ErrPayoutNotConfigured = New(KindValidation, "payout_not_configured", errors.New("instructor has no payout account configured"))
	ErrCourseNotPriced     = New(KindValidation, "course_not_priced", errors.New("course has no price"))
	ErrWebhookInFlight     = New(KindConflict, "webhook_in_flight", errors.New("another delivery for this order is being processed"))
)

// KindOf returns the kind of the first *Error in err's chain, KindInternal
// when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err, or "internal_error".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "internal_error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusBadRequest
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
