package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/groundwork/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewReembedder(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewReembedder(repo, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewReembedder(repo, mock.NewMockEmbedder(), &Config{MaxRetries: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	r, err := NewReembedder(repo, mock.NewMockEmbedder(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, r.iterator.batchSize)
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	seedChunks(t, repo, 10, 4)

	var buf bytes.Buffer
	r, err := NewReembedder(repo, unnormalized(), testConfig(), &buf)
	require.NoError(t, err)

	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Embedded)

	all, err := repo.AllChunks(ctx, nil)
	require.NoError(t, err)
	for _, c := range all {
		// Previously embedded chunks are replaced too.
		require.Len(t, c.Embedding, 3)
		assert.InDelta(t, 1.0, magnitude(c.Embedding), 1e-5)
	}
	assert.Contains(t, buf.String(), "10/10")
	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestReembedder_MissingOnly(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	seedChunks(t, repo, 10, 4) // chunks 0, 4 and 8 already embedded

	cfg := testConfig()
	cfg.MissingOnly = true

	var embedded []string
	e := mock.NewMockEmbedder()
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded = append(embedded, texts...)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0, 1, 0}
		}
		return out, nil
	}

	var buf bytes.Buffer
	r, err := NewReembedder(repo, e, cfg, &buf)
	require.NoError(t, err)

	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Len(t, embedded, 7)
	assert.NotContains(t, embedded, "chunk number 4")
	assert.Contains(t, buf.String(), "7/7")

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Embedded)

	// Nothing left to do on a second pass.
	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReembedder_EmptyRepository(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReembedder(setupTestRepo(t), mock.NewMockEmbedder(), DefaultConfig(), &buf)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, buf.String(), "No chunks")
}

func TestReembedder_BatchFailure(t *testing.T) {
	repo := setupTestRepo(t)
	seedChunks(t, repo, 6, 0)

	calls := 0
	e := mock.NewMockEmbedder()
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("quota exceeded")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1}
		}
		return out, nil
	}
	cfg := testConfig()
	cfg.MaxRetries = 1

	r, err := NewReembedder(repo, e, cfg, nil)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, 3, n)
}
