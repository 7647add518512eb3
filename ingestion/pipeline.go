package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/reembed"
	"github.com/poiesic/groundwork/storage"
)

const (
	// DefaultBatchSize is the number of chunks sent to the embedder at once.
	DefaultBatchSize = 32

	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Pipeline orchestrates chunking, embedding and storage of documents.
// Embedding batches run concurrently on a bounded worker pool.
type Pipeline struct {
	repo          storage.ChunkRepository
	embedder      ai.Embedder
	chunker       Chunker
	embeddingPool *ants.Pool
	batchSize     int
	maxRetries    int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunker sets how documents are split.
// Default is DefaultChunker().
func WithChunker(chunker Chunker) Option {
	return func(p *Pipeline) error {
		p.chunker = chunker.normalized()
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for each embedding batch.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
// embedder may be nil, in which case chunks are stored lexical-only.
func NewPipeline(repo storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrStoreRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repo:          repo,
		embedder:      embedder,
		chunker:       DefaultChunker(),
		embeddingPool: pool,
		batchSize:     DefaultBatchSize,
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Report summarises one Ingest call.
type Report struct {
	Sources  int // Documents ingested
	Chunks   int // Chunks stored
	Embedded int // Chunks stored with an embedding
	Replaced int // Chunks removed from earlier ingestions of the same sources
}

// Unembedded returns the number of chunks stored without an embedding.
func (r *Report) Unembedded() int {
	return r.Chunks - r.Embedded
}

// Ingest chunks, embeds and stores documents. Each document replaces any
// chunks already stored for its SourceId; the replacement is atomic, so a
// failed store leaves earlier ingestions intact.
// Embedding failures are logged and leave chunks without vectors; only
// invalid documents, storage errors and cancellation fail the call.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*Document) (*Report, error) {
	report := &Report{}

	var chunks []*core.Chunk
	sources := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if err := validateDocument(doc); err != nil {
			return report, err
		}
		if sources[doc.SourceId] {
			return report, fmt.Errorf("%w: duplicate source %q", ErrInvalidDocument, doc.SourceId)
		}
		sources[doc.SourceId] = true
		chunks = append(chunks, p.chunk(doc)...)
	}

	report.Embedded = p.embed(ctx, chunks)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	sourceIds := make([]string, len(docs))
	for i, doc := range docs {
		sourceIds[i] = doc.SourceId
	}
	removed, err := p.repo.ReplaceSources(ctx, sourceIds, chunks...)
	if err != nil {
		return report, fmt.Errorf("failed to store chunks: %w", err)
	}
	report.Replaced = removed

	report.Sources = len(docs)
	report.Chunks = len(chunks)
	p.logger.Info("ingested documents",
		"sources", report.Sources,
		"chunks", report.Chunks,
		"embedded", report.Embedded,
		"replaced", report.Replaced)
	return report, nil
}

func validateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.SourceId) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, core.ErrEmptySourceID)
	}
	if err := core.ValidateSourceType(doc.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, doc.SourceId, core.ErrEmptyContent)
	}
	return nil
}

// chunk splits doc into chunks with deterministic IDs.
func (p *Pipeline) chunk(doc *Document) []*core.Chunk {
	spans := p.chunker.Split(doc.Text)
	chunks := make([]*core.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = &core.Chunk{
			Id:          core.ChunkID(doc.SourceId, i),
			SourceId:    doc.SourceId,
			SourceType:  doc.SourceType,
			Domain:      doc.Domain,
			Text:        span.Text,
			ChunkIndex:  i,
			StartOffset: span.Start,
			EndOffset:   span.End,
		}
	}
	return chunks
}

// embed fills in chunk embeddings batch by batch on the worker pool and
// returns how many chunks received one.
func (p *Pipeline) embed(ctx context.Context, chunks []*core.Chunk) int {
	if p.embedder == nil || len(chunks) == 0 {
		return 0
	}

	processor := reembed.NewBatchProcessor(p.repo, p.embedder, p.maxRetries, p.retryDelay)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedded int
	)
	for start := 0; start < len(chunks); start += p.batchSize {
		batch := chunks[start:min(start+p.batchSize, len(chunks))]

		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			vectors, err := processor.Embed(ctx, batch)
			if err != nil {
				p.logger.Warn("embedding batch failed, chunks stay lexical-only",
					"source", batch[0].SourceId, "chunks", len(batch), "err", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, c := range batch {
				if vec := vectors[c.Id]; len(vec) > 0 {
					c.Embedding = vec
					embedded++
				}
			}
		})
		if err != nil {
			wg.Done()
			p.logger.Error("error submitting embedding batch", "err", err)
		}
	}
	wg.Wait()

	return embedded
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
