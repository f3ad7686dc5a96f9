package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndCodeOf(t *testing.T) {
	base := errors.New("quota exceeded")
	err := Wrap("advice_call_failed", "text generation failed", base)

	require.True(t, IsCode(err, "advice_call_failed"))
	require.False(t, IsCode(err, "fetch_failed"))
	require.ErrorIs(t, err, base)
	require.Equal(t, "text generation failed: quota exceeded", err.Error())
	require.Equal(t, "text generation failed", MessageOf(err))

	wrapped := fmt.Errorf("handler: %w", err)
	require.Equal(t, "advice_call_failed", CodeOf(wrapped))
}

func TestCodeOfForeignError(t *testing.T) {
	err := errors.New("boom")
	require.Empty(t, CodeOf(err))
	require.Equal(t, "boom", MessageOf(err))
	require.Empty(t, MessageOf(nil))
}
