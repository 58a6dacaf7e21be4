package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestConfigShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	appSettings.Embedding.APIKey = "sk-1234567890abcdef"

	out, err := execute("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "File: /tmp/railkm/config.toml")
	assert.Contains(t, out, "Provider: OpenAI (cloud)")
	assert.Contains(t, out, "Model: text-embedding-ada-002")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "PDF segmentation: article")
	assert.Contains(t, out, "Chunk size: 2000")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestConfig_DefaultsToShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestConfigCheck(t *testing.T) {
	t.Run("providers reachable", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		checkProvider = func(context.Context) error { return nil }

		out, err := execute("config", "check")

		require.NoError(t, err)
		assert.Contains(t, out, "OK")
	})

	t.Run("provider unreachable", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		checkProvider = func(context.Context) error {
			return errors.Join(domain.ErrConfiguration, errors.New("connection refused"))
		}

		out, err := execute("config", "check")

		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, out, "FAILED")
	})
}

func TestConfigInit(t *testing.T) {
	t.Run("writes settings", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		settingsPath = filepath.Join(t.TempDir(), "config.toml")

		var saved *domain.Settings
		saveSettings = func(s domain.Settings) error {
			saved = &s
			return nil
		}

		out, err := execute("config", "init")

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, domain.DefaultChunkSize, saved.Chunking.ChunkSize)
		assert.Contains(t, out, "Wrote "+settingsPath)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		settingsPath = filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(settingsPath, []byte("[query]\n"), 0600))
		saveSettings = func(domain.Settings) error { return nil }

		_, err := execute("config", "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		_, err = execute("config", "init", "--force")
		assert.NoError(t, err)
	})
}
