package sfu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTypedErrors(t *testing.T) {
	assert.Equal(t, ErrTypeError, NewTypeError("bad %s", "thing").Kind)
	assert.Equal(t, ErrNotFound, NewNotFoundError("missing %s", "x").Kind)
	assert.Equal(t, ErrDuplicateID, NewDuplicateIdError("dup %s", "x").Kind)
	assert.Equal(t, ErrIllegalState, NewInvalidStateError("bad state").Kind)
	assert.Equal(t, ErrCrypto, NewCryptoError("bad crypto").Kind)
	assert.Equal(t, ErrInvalidRequest, NewInvalidRequestError("bad request").Kind)
	assert.Equal(t, ErrUnsupported, NewUnsupportedError("no compatible codec").Kind)
}

func TestAsError(t *testing.T) {
	assert.Nil(t, asError(nil))

	typed := NewNotFoundError("missing")
	assert.Same(t, typed, asError(typed))

	wrapped := asError(errors.New("boom"))
	assert.Equal(t, ErrFatal, wrapped.Kind)
	assert.Contains(t, wrapped.Error(), "boom")
}
