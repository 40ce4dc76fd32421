package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type remoteError struct{ code string }

func (e remoteError) Error() string     { return "remote failure" }
func (e remoteError) ErrorCode() string { return e.code }

func TestErrorMatchesByKind(t *testing.T) {
	err := NewError(KindConflict, "seat already booked")

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("book seat: %w", err), ErrConflict)
	assert.Equal(t, "conflict", err.ErrorCode())
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := internal("failed to save flight", cause)

	assert.EqualError(t, err, "failed to save flight: disk full")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "domain", err: ErrOutOfRange, want: KindOutOfRange},
		{name: "wrapped domain", err: fmt.Errorf("x: %w", NewError(KindUnauthorized, "no")), want: KindUnauthorized},
		{name: "remote known code", err: remoteError{code: "not_found"}, want: KindNotFound},
		{name: "remote unknown code", err: remoteError{code: "teapot"}, want: KindInternal},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
