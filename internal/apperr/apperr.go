// Package apperr holds the error kinds shared by repositories, services and
// the HTTP layer. Callers wrap them with fmt.Errorf("...: %w", ErrX) and
// classify with errors.Is.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrValidation          = errors.New("validation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnavailable         = errors.New("store unavailable")
)

const (
	KindNotFound            = "not_found"
	KindConflict            = "conflict"
	KindConstraintViolation = "constraint_violation"
	KindValidation          = "validation_error"
	KindUnauthorized        = "unauthorized"
	KindUnavailable         = "unavailable"
	KindInternal            = "internal"
)

// Kind reports the machine readable kind of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConstraintViolation):
		return KindConstraintViolation
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindConstraintViolation:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message strips the kind suffix added by wrapping, so "product not found: not found"
// becomes "product not found".
func Message(err error) string {
	if err == nil {
		return ""
	}
	if Kind(err) == KindInternal {
		return "internal error"
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrConstraintViolation, ErrValidation, ErrUnauthorized, ErrUnavailable} {
		if trimmed, ok := strings.CutSuffix(msg, ": "+sentinel.Error()); ok {
			return trimmed
		}
	}
	return msg
}

type Response struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func ToResponse(err error) Response {
	return Response{Kind: Kind(err), Message: Message(err)}
}
