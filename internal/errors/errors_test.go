package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FormatError
		expected string
	}{
		{
			name:     "with message",
			err:      &FormatError{Err: ErrBadValue, Message: "custom message"},
			expected: "custom message",
		},
		{
			name:     "without message falls back to base error",
			err:      &FormatError{Err: ErrUnknownProperty},
			expected: "unknown test case property",
		},
		{
			name:     "empty",
			err:      &FormatError{},
			expected: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNewUnknownPropertyError(t *testing.T) {
	err := NewUnknownPropertyError("foobar")

	assert.Equal(t, "unknown test case property 'foobar'", err.Error())
	assert.Equal(t, "foobar", err.Key)
	assert.True(t, errors.Is(err, ErrUnknownProperty))
	assert.False(t, errors.Is(err, ErrBadValue))
}

func TestNewBadValueError(t *testing.T) {
	err := NewBadValueError("timeout", "abc", "not a number")

	assert.Equal(t, "invalid value 'abc' for property 'timeout': not a number", err.Error())
	assert.Equal(t, "timeout", err.Key)
	assert.True(t, errors.Is(err, ErrBadValue))
}

func TestFormatError_UnwrapThroughWrapping(t *testing.T) {
	err := fmt.Errorf("parsing test case: %w", NewUnknownPropertyError("x.y"))

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "x.y", formatErr.Key)
	assert.True(t, errors.Is(err, ErrUnknownProperty))
}
