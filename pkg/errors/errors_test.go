package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAsKeepsCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := WrapAs(ErrConnectivity, cause, "fetch subject weights")

	assert.True(t, errors.Is(err, ErrConnectivity))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrInvariant))
	assert.Equal(t, "fetch subject weights: dial tcp: refused", err.Error())
}

func TestFromErrorNormalisesPlainErrors(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)

	typed := Clone(ErrPaceUndefined, "missing start date")
	wrapped := fmt.Errorf("student 7: %w", typed)
	assert.Same(t, typed, FromError(wrapped))
}
