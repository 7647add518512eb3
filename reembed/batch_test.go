package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/groundwork/ai/mock"
	"github.com/poiesic/groundwork/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unnormalized returns [1, 2, 2] for every text, magnitude 3.
func unnormalized() *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 2, 2}
		}
		return out, nil
	}
	return e
}

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	chunks := seedChunks(t, repo, 3, 0)

	bp := NewBatchProcessor(repo, unnormalized(), 3, time.Millisecond)
	require.NoError(t, bp.Process(ctx, chunks))

	stored, err := repo.GetChunks(ctx, chunks[0].Id, chunks[1].Id, chunks[2].Id)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, c := range stored {
		require.Len(t, c.Embedding, 3)
		assert.InDelta(t, 1.0/3, c.Embedding[0], 1e-6)
		assert.InDelta(t, 2.0/3, c.Embedding[1], 1e-6)
	}
}

func TestBatchProcessor_Retries(t *testing.T) {
	repo := setupTestRepo(t)
	chunks := seedChunks(t, repo, 2, 0)

	calls := 0
	e := mock.NewMockEmbedder()
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rate limited")
		}
		return [][]float32{{1, 0}, {0, 1}}, nil
	}

	bp := NewBatchProcessor(repo, e, 3, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), chunks))
	assert.Equal(t, 3, calls)
}

func TestBatchProcessor_Failures(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	chunks := seedChunks(t, repo, 2, 0)

	t.Run("embedder keeps failing", func(t *testing.T) {
		e := mock.NewMockEmbedder()
		e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("offline")
		}
		err := NewBatchProcessor(repo, e, 2, time.Millisecond).Process(ctx, chunks)
		assert.ErrorContains(t, err, "after 2 attempts")
	})

	t.Run("count mismatch", func(t *testing.T) {
		e := mock.NewMockEmbedder()
		e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		err := NewBatchProcessor(repo, e, 1, time.Millisecond).Process(ctx, chunks)
		assert.ErrorContains(t, err, "mismatch")
	})

	t.Run("unknown chunk", func(t *testing.T) {
		ghost := &core.Chunk{Id: 42, SourceId: "ghost", SourceType: core.SourceTypeCode, Text: "ghost"}
		err := NewBatchProcessor(repo, unnormalized(), 1, time.Millisecond).Process(ctx, []*core.Chunk{ghost})
		assert.Error(t, err)
	})

	t.Run("empty batch", func(t *testing.T) {
		e := mock.NewMockEmbedder()
		require.NoError(t, NewBatchProcessor(repo, e, 1, time.Millisecond).Process(ctx, nil))
		assert.Zero(t, e.CallCount())
	})
}
