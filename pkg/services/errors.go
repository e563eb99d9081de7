package services

import "errors"

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindInvalid
	KindForbidden
)

// Error is a client-visible failure with a stable machine-usable reason
// string plus a human-readable message. Anything else bubbling out of a
// service is treated as a store-level fault.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(reason, message string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: message}
}

func conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message}
}

func invalid(reason, message string) *Error {
	return &Error{Kind: KindInvalid, Reason: reason, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Reason: "forbidden", Message: message}
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
