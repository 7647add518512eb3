package storage

import (
	"context"
	"slices"

	"github.com/poiesic/groundwork/core"
)

// LexicalHit is a chunk matched by the full-text index.
// Score is the index's raw relevance, higher is better.
type LexicalHit struct {
	Chunk *core.Chunk
	Score float64
}

// Filter restricts which chunks are eligible for retrieval.
// A nil Filter, or one with empty fields, admits every chunk.
type Filter struct {
	SourceTypes []core.SourceType
	Domain      string
}

// Matches reports whether the chunk passes the filter.
func (f *Filter) Matches(c *core.Chunk) bool {
	if f == nil || c == nil {
		return c != nil
	}
	if len(f.SourceTypes) > 0 && !slices.Contains(f.SourceTypes, c.SourceType) {
		return false
	}
	if f.Domain != "" && c.Domain != f.Domain {
		return false
	}
	return true
}

// IsEmpty reports whether the filter admits everything.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.SourceTypes) == 0 && f.Domain == "")
}

// EvidenceStore is the read side used by retrieval.
// Implementations must be safe for concurrent readers.
type EvidenceStore interface {
	// LexicalSearch runs a text-relevance query against the full-text index.
	// Returns up to limit hits ordered by Score descending.
	// Malformed query syntax yields an error wrapping ErrInvalidQuery.
	LexicalSearch(ctx context.Context, query string, limit int) ([]LexicalHit, error)

	// ChunksBySourceIds returns every chunk belonging to the given sources,
	// ordered by source then chunk index.
	ChunksBySourceIds(ctx context.Context, sourceIds []string) ([]*core.Chunk, error)

	// AllChunks returns every chunk passing the filter, ordered by ID.
	AllChunks(ctx context.Context, filter *Filter) ([]*core.Chunk, error)
}

// Stats summarises the contents of a chunk store.
type Stats struct {
	Chunks       int
	Embedded     int
	Sources      int
	BySourceType map[core.SourceType]int
}

// ChunkRepository is the write side of the evidence store.
type ChunkRepository interface {
	EvidenceStore

	// AddChunks stores chunks. Existing chunks with the same ID are left untouched.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunks retrieves chunks by ID.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// UpdateEmbeddings replaces the embeddings of existing chunks.
	// A nil vector clears the embedding.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateEmbeddings(ctx context.Context, embeddings map[core.ID][]float32) error

	// DeleteSource removes every chunk of a source and returns how many were removed.
	DeleteSource(ctx context.Context, sourceId string) (int, error)

	// ReplaceSources atomically removes every chunk of sourceIds and stores
	// chunks. Returns how many chunks were removed. On error nothing changes.
	ReplaceSources(ctx context.Context, sourceIds []string, chunks ...*core.Chunk) (int, error)

	// ScanChunks returns up to limit chunks with ID >= from, ordered by ID.
	// Used for batched scans of the whole corpus.
	ScanChunks(ctx context.Context, from core.ID, limit int) ([]*core.Chunk, error)

	// Stats reports counts over the stored chunks.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorCache stores embedding vectors keyed by content hash.
// Implementations must be thread-safe.
type VectorCache interface {
	// GetVector returns the cached vector for key.
	// Returns ErrNotFound when the key is absent.
	GetVector(ctx context.Context, key core.ID) ([]float32, error)

	// PutVectors stores vectors keyed by content hash.
	PutVectors(ctx context.Context, vectors map[core.ID][]float32) error

	// Close closes the cache and releases resources.
	Close() error
}
