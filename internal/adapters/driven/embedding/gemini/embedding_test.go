package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// newTestServer answers embedding requests with one vector per request item.
func newTestServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "fail", "status": "UNAVAILABLE"},
			})
			return
		}
		if !strings.Contains(r.URL.Path, "mbed") {
			http.NotFound(w, r)
			return
		}

		var body struct {
			Requests []json.RawMessage `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		n := len(body.Requests)
		if n == 0 {
			n = 1
		}

		embeddings := make([]map[string]any, n)
		for i := range embeddings {
			embeddings[i] = map[string]any{"values": []float32{float32(i + 1), 0}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewEmbeddingService(context.Background(), Config{})
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, DefaultDimensions, svc.Dimensions())
		assert.NoError(t, svc.Close())
	})
}

func TestEmbedBatch(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"satu", "dua"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 0}, got[0])
	assert.Equal(t, []float32{2, 0}, got[1])

	empty, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmbed_ServerError(t *testing.T) {
	srv := newTestServer(t, http.StatusServiceUnavailable)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}
