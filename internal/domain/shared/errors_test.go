package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Kinds(t *testing.T) {
	assert.Equal(t, KindValidation, NewDomainError("X", "x").Kind)
	assert.Equal(t, KindValidation, NewValidationError("X", "x").Kind)
	assert.Equal(t, KindNotFound, NewNotFoundError("X", "x").Kind)
	assert.Equal(t, KindState, NewStateError("X", "x").Kind)
	assert.Equal(t, KindInsufficientResource, NewInsufficientError("X", "x").Kind)
	assert.Equal(t, KindTransientConflict, NewConflictError("X", "x").Kind)
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	custom := NewInsufficientError("INSUFFICIENT_STOCK", "Product 7 has only 2 units")
	assert.True(t, errors.Is(custom, ErrInsufficientStock))
	assert.False(t, errors.Is(custom, ErrInsufficientPayment))

	wrapped := fmt.Errorf("reserve: %w", custom)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.Equal(t, KindInsufficientResource, KindOf(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTransientConflict))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrConcurrencyConflict)))
	assert.False(t, IsRetryable(ErrInvalidState))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestNewDateRange(t *testing.T) {
	from := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)

	r, err := NewDateRange(from, to)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.True(t, r.Contains(time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	t.Run("same day is a valid range", func(t *testing.T) {
		r, err := NewDateRange(from, from)
		require.NoError(t, err)
		assert.True(t, r.Contains(from))
	})

	t.Run("start after end fails", func(t *testing.T) {
		_, err := NewDateRange(to, from)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("zero dates fail", func(t *testing.T) {
		_, err := NewDateRange(time.Time{}, to)
		require.Error(t, err)
	})
}
