package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// BatchProcessor handles embedding generation for batches of chunks.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Embed generates normalized embeddings for chunks, keyed by chunk ID.
// It does not touch the repository.
func (bp *BatchProcessor) Embed(ctx context.Context, chunks []*core.Chunk) (map[core.ID][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	vectors := make(map[core.ID][]float32, len(chunks))
	for i, c := range chunks {
		vectors[c.Id] = NormalizeVector(embeddings[i])
	}
	return vectors, nil
}

// Process embeds a batch of chunks and stores the vectors.
// Vectors are normalized so cosine scoring reduces to a dot product.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	vectors, err := bp.Embed(ctx, chunks)
	if err != nil || len(vectors) == 0 {
		return err
	}

	if err := bp.repo.UpdateEmbeddings(ctx, vectors); err != nil {
		return fmt.Errorf("failed to update embeddings: %w", err)
	}
	return nil
}
