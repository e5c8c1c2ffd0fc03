package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	err := NewNotFound("user", "ghost")

	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("lookup failed: %w", err)))
	assert.False(t, IsNotFound(ErrBusy))
	assert.False(t, IsNotFound(nil))
}

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("%w: need 100, have 50", ErrInsufficientFunds)

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, errors.Is(err, ErrInsufficientHoldings))
}
