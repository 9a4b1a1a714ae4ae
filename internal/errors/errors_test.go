package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlimError_Error(t *testing.T) {
	t.Run("full context", func(t *testing.T) {
		err := NewTransformError("T001", "unparseable input", fmt.Errorf("bad token")).
			WithLocation("views/index.tpl", 12)

		msg := err.Error()
		assert.Contains(t, msg, "[T001]")
		assert.Contains(t, msg, "views/index.tpl:12")
		assert.Contains(t, msg, "unparseable input")
		assert.Contains(t, msg, "bad token")
	})

	t.Run("message only", func(t *testing.T) {
		err := NewConfigError("C001", "bad cache dir")
		assert.Equal(t, "[C001] bad cache dir", err.Error())
	})
}

func TestSlimError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewIOError("IO01", "write failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestSlimError_Is(t *testing.T) {
	a := NewTransformError("T001", "first", nil)
	b := NewTransformError("T001", "second", nil)
	c := NewTransformError("T002", "third", nil)

	assert.True(t, errors.Is(a, b), "same type and code should match")
	assert.False(t, errors.Is(a, c), "different code should not match")
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewTransformError("T001", "x", nil)))
	assert.True(t, IsRecoverable(NewValidationError("V001", "x")))
	assert.False(t, IsRecoverable(NewIOError("IO01", "x", nil)))
	assert.False(t, IsRecoverable(fmt.Errorf("plain error")))
}

func TestIsTransformError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewTransformError("T001", "x", nil))

	assert.True(t, IsTransformError(wrapped))
	assert.False(t, IsTransformError(NewIOError("IO01", "x", nil)))
}
