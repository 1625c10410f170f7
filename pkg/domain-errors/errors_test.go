package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("new error carries its code", func(t *testing.T) {
		err := New(CodeVotesOutstanding, "votes outstanding")
		assert.True(t, HasCode(err, CodeVotesOutstanding))
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, "votes outstanding", MessageOf(err))
	})

	t.Run("wrapped cause stays reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeTransferFailed, "custody transfer failed")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeTransferFailed, CodeOf(err))
	})

	t.Run("fmt wrapping preserves the domain code", func(t *testing.T) {
		err := fmt.Errorf("deposit: %w", New(CodeOverflow, "overflow"))
		assert.True(t, Is(err, CodeOverflow))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}
