package domain

import (
	"context"
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
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrInvalidFilter", ErrInvalidFilter},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrIngestion", ErrIngestion},
		{"ErrIndexWrite", ErrIndexWrite},
		{"ErrProvider", ErrProvider},
		{"ErrCircuitOpen", ErrCircuitOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestIngestionError(t *testing.T) {
	cause := errors.New("bad xref table")
	err := &IngestionError{File: "uu23.pdf", Err: cause}

	assert.Equal(t, "ingesting uu23.pdf: bad xref table", err.Error())
	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrProvider)

	wrapped := fmt.Errorf("batch: %w", err)
	var ie *IngestionError
	assert.ErrorAs(t, wrapped, &ie)
	assert.Equal(t, "uu23.pdf", ie.File)
}

func TestProviderError(t *testing.T) {
	t.Run("retryable", func(t *testing.T) {
		err := &ProviderError{Provider: "openai", Op: "embed", Retryable: true, Err: context.DeadlineExceeded}

		assert.Equal(t, "openai embed failed (retryable): context deadline exceeded", err.Error())
		assert.ErrorIs(t, err, ErrProvider)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, IsRetryable(err))
		assert.True(t, IsRetryable(fmt.Errorf("answer: %w", err)))
	})

	t.Run("permanent", func(t *testing.T) {
		err := &ProviderError{Provider: "anthropic", Op: "generate", Err: errors.New("invalid key")}

		assert.Contains(t, err.Error(), "(permanent)")
		assert.False(t, IsRetryable(err))
	})

	t.Run("plain errors are not retryable", func(t *testing.T) {
		assert.False(t, IsRetryable(errors.New("boom")))
		assert.False(t, IsRetryable(nil))
	})
}
