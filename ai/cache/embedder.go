// Package cache provides an ai.Embedder decorator that memoizes vectors in a
// storage.VectorCache, keyed by model and text.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// ErrEmbedderRequired is returned when no inner embedder is given.
var ErrEmbedderRequired = errors.New("inner embedder required")

// ErrCacheRequired is returned when no vector cache is given.
var ErrCacheRequired = errors.New("vector cache required")

// Embedder serves vectors from a cache and falls through to an inner
// embedder on misses. Cache failures never fail an embedding call.
type Embedder struct {
	inner  ai.Embedder
	cache  storage.VectorCache
	model  string
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New wraps inner with cache. model namespaces the keys so vectors from
// different models never mix.
func New(inner ai.Embedder, cache storage.VectorCache, model string, opts ...Option) (*Embedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	e := &Embedder{
		inner:  inner,
		cache:  cache,
		model:  model,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "embedding-cache")
	return e, nil
}

// Key returns the cache key for text under model.
func Key(model, text string) core.ID {
	return core.IDFromContent(model + "\x00" + text)
}

func (e *Embedder) lookup(ctx context.Context, text string) ([]float32, bool) {
	vec, err := e.cache.GetVector(ctx, Key(e.model, text))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("vector cache read failed", "err", err)
		}
		return nil, false
	}
	return vec, len(vec) > 0
}

func (e *Embedder) store(ctx context.Context, vectors map[core.ID][]float32) {
	if len(vectors) == 0 {
		return
	}
	if err := e.cache.PutVectors(ctx, vectors); err != nil {
		e.logger.Warn("vector cache write failed", "count", len(vectors), "err", err)
	}
}

// EmbedText returns the cached vector for text or embeds and caches it.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.lookup(ctx, text); ok {
		return vec, nil
	}

	vec, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 {
		e.store(ctx, map[core.ID][]float32{Key(e.model, text): vec})
	}
	return vec, nil
}

// EmbedTexts embeds only the texts missing from the cache, in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var (
		missing    []string
		missingIdx []int
	)
	for i, text := range texts {
		if vec, ok := e.lookup(ctx, text); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	e.logger.Debug("cache miss", "hits", len(texts)-len(missing), "misses", len(missing))
	fresh, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(missing), len(fresh))
	}

	toCache := make(map[core.ID][]float32, len(fresh))
	for j, vec := range fresh {
		vectors[missingIdx[j]] = vec
		if len(vec) > 0 {
			toCache[Key(e.model, missing[j])] = vec
		}
	}
	e.store(ctx, toCache)
	return vectors, nil
}
