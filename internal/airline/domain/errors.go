package domain

import "errors"

// Kind classifica as falhas do registro.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindInvalidState Kind = "invalid_state"
	KindOutOfRange   Kind = "out_of_range"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is casa qualquer *Error do mesmo Kind, o que permite errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// ErrorCode expõe o Kind para transporte entre processos.
func (e *Error) ErrorCode() string {
	return string(e.Kind)
}

var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "flight not found"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrOutOfRange   = &Error{Kind: KindOutOfRange, Message: "seat out of range"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf retorna o Kind de err. Erros remotos são reconhecidos pelo ErrorCode().
// Qualquer outro erro não nulo é KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		switch kind := Kind(coded.ErrorCode()); kind {
		case KindInvalidInput, KindNotFound, KindUnauthorized, KindInvalidState, KindOutOfRange, KindConflict, KindInternal:
			return kind
		}
	}
	return KindInternal
}
