// Package apperr holds the error taxonomy shared by the engine, the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindMissingParameter   Kind = "MissingParameter"
	KindForbidden          Kind = "Forbidden"
	KindDatabase           Kind = "DatabaseError"
	KindUnsupported        Kind = "UnsupportedOperation"
	KindVerificationFailed Kind = "VerificationFailed"
	KindDriver             Kind = "DriverError"
	KindCanceled           Kind = "Canceled"
	KindInternal           Kind = "Internal"
)

// Error carries a Kind plus the entity or field it concerns and the id of the artifact
// that was being processed.
type Error struct {
	Kind    Kind
	Subject string
	Ref     string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		switch e.Kind {
		case KindNotFound:
			msg = fmt.Sprintf("%s not found", e.Subject)
		case KindMissingParameter:
			msg = fmt.Sprintf("missing parameter %s", e.Subject)
		default:
			msg = string(e.Kind)
			if e.Subject != "" {
				msg += ": " + e.Subject
			}
		}
	}
	if e.Ref != "" {
		msg = fmt.Sprintf("%s (ref %s)", msg, e.Ref)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Subject: entity, Ref: id}
}

func MissingParameter(field, ref string) *Error {
	return &Error{Kind: KindMissingParameter, Subject: field, Ref: ref}
}

func Forbidden(msg, ref string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg, Ref: ref}
}

// Database wraps a storage failure. Wrapping an *Error that already has a kind keeps it.
func Database(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindDatabase, Msg: fmt.Sprintf("failed to %s", op), Err: err}
}

func Unsupported(what, ref string) *Error {
	return &Error{Kind: KindUnsupported, Subject: what, Ref: ref}
}

func VerificationFailed(expected, actual, ref string) *Error {
	return &Error{
		Kind: KindVerificationFailed,
		Msg:  fmt.Sprintf("expected text %q, got %q", expected, actual),
		Ref:  ref,
	}
}

func Driver(op string, err error) *Error {
	return &Error{Kind: KindDriver, Msg: fmt.Sprintf("browser %s failed", op), Err: err}
}

func Canceled(err error) *Error {
	return &Error{Kind: KindCanceled, Msg: "execution canceled", Err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
