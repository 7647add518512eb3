package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/groundwork/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newEmbeddingServer answers /v1/embeddings with one vector per input whose
// first component is the input length.
func newEmbeddingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"unavailable"}}`))
			return
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, len(req.Input))
		for i, in := range req.Input {
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(in)), 1},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusOK)

	provider, err := NewProvider(ai.NewConfig(
		ai.WithEmbeddingHost(srv.URL),
		ai.WithEmbeddingModel("test-model"),
	))
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "test-model", provider.Model())

	ctx := context.Background()

	t.Run("single text", func(t *testing.T) {
		vec, err := provider.Embedder().EmbedText(ctx, "abcd")
		require.NoError(t, err)
		assert.Equal(t, []float32{4, 1}, vec)
	})

	t.Run("batch keeps order", func(t *testing.T) {
		vecs, err := provider.Embedder().EmbedTexts(ctx, []string{"a", "abc"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		assert.Equal(t, float32(1), vecs[0][0])
		assert.Equal(t, float32(3), vecs[1][0])
	})
}

func TestEmbedder_ServerError(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusServiceUnavailable)

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.Error(t, err)
}

func TestEmbedder_EmptyBatch(t *testing.T) {
	// any request to this server fails
	srv := newEmbeddingServer(t, http.StatusServiceUnavailable)

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
	require.NoError(t, err)

	vecs, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedder_QueryStripsNewlines(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusOK)

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
	require.NoError(t, err)

	vec, err := embedder.EmbedText(context.Background(), "ab\ncd")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1}, vec)
}
