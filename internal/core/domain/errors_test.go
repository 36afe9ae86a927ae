package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrRenderFailed", ErrRenderFailed},
		{"ErrNoMatches", ErrNoMatches},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
		{"ErrStoreUnavailable", ErrStoreUnavailable},
		{"ErrInvalidSignature", ErrInvalidSignature},
		{"ErrExpired", ErrExpired},
		{"ErrReservedName", ErrReservedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Wrapping tests that wrapped errors keep their identity
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("listing objects: %w", ErrStoreUnavailable)

	assert.True(t, errors.Is(wrapped, ErrStoreUnavailable))
	assert.False(t, errors.Is(wrapped, ErrSearchUnavailable))
}

// TestErrSearchUnavailable_DistinctFromNotFound tests the search failure is not "no results"
func TestErrSearchUnavailable_DistinctFromNotFound(t *testing.T) {
	assert.False(t, errors.Is(ErrSearchUnavailable, ErrNotFound))
	assert.Equal(t, "search engine unavailable", ErrSearchUnavailable.Error())
}
