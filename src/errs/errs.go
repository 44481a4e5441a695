package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	NotFound  Kind = "not_found"
	Conflict  Kind = "conflict"
	Forbidden Kind = "forbidden"
	Invalid   Kind = "invalid"
	Internal  Kind = "internal"
)

// Error carries a kind for the caller and keeps the original cause reachable through Unwrap.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" && e.cause != nil {
		return e.cause.Error()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two *Error values of the same kind and message, so sentinels work with errors.Is
// after being wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal for anything else.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case Invalid:
		return http.StatusBadRequest
	case "":
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
