// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package groundwork

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/groundwork/ai"
	aicache "github.com/poiesic/groundwork/ai/cache"
	"github.com/poiesic/groundwork/ai/hosted"
	"github.com/poiesic/groundwork/ai/openai"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/reembed"
	"github.com/poiesic/groundwork/search"
	"github.com/poiesic/groundwork/storage"
	"github.com/poiesic/groundwork/storage/badger"
	"github.com/poiesic/groundwork/storage/sqlite"
)

// VectorCacheDir is the directory inside a corpus holding cached embeddings.
const VectorCacheDir = "vectors"

// Corpus bundles the evidence store, the embedding cache and the AI provider
// that make up one on-disk corpus.
type Corpus struct {
	store    *sqlite.Store
	cache    *badger.VectorCache
	provider ai.AIProvider
	embedder ai.Embedder
	base     *slog.Logger // handed to components, which add their own tag
	logger   *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an already constructed provider instead of building one
// from the AI config. The corpus takes ownership and closes it.
func WithProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CorpusOption {
	return func(o *corpusOptions) {
		o.logger = logger
	}
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == ai.ProviderOpenAI {
		return hosted.NewProvider(cfg)
	}
	return openai.NewProvider(cfg)
}

// Open opens or creates the corpus stored in dir.
func Open(dir string, opts ...CorpusOption) (*Corpus, error) {
	// Apply options
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	store, err := sqlite.Open(dir, sqlite.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	vectors, err := badger.OpenVectorCache(filepath.Join(dir, VectorCacheDir))
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = NewProvider(options.aiConfig)
		if err != nil {
			vectors.Close()
			store.Close()
			return nil, err
		}
	}

	embedder, err := aicache.New(provider.Embedder(), vectors, provider.Model(), aicache.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		vectors.Close()
		store.Close()
		return nil, err
	}

	return &Corpus{
		store:    store,
		cache:    vectors,
		provider: provider,
		embedder: embedder,
		base:     options.logger,
		logger:   options.logger.With("component", "corpus"),
	}, nil
}

// Close releases the provider, the vector cache and the store.
func (c *Corpus) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := c.cache.Close(); err != nil {
		c.logger.Error("error closing vector cache", "err", err)
		errs = append(errs, err)
	}
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing evidence store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Store returns the chunk repository.
func (c *Corpus) Store() storage.ChunkRepository {
	return c.store
}

// Embedder returns the cached embedder shared by search and ingestion.
func (c *Corpus) Embedder() ai.Embedder {
	return c.embedder
}

// Model returns the embedding model of the configured provider.
func (c *Corpus) Model() string {
	return c.provider.Model()
}

// NewSearcher creates a searcher over the whole corpus.
func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(c.base)}, opts...)
	return search.NewSearcher(c.store, c.embedder, opts...)
}

// NewGlobalSearcher creates a searcher scoped to chunks tagged with domain,
// for corpora shared between several projects.
func (c *Corpus) NewGlobalSearcher(domain string, opts ...search.Option) (*search.Searcher, error) {
	opts = append(opts, search.WithDomain(domain))
	return c.NewSearcher(opts...)
}

func (c *Corpus) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(c.base)}, opts...)
	return ingestion.NewPipeline(c.store, c.embedder, opts...)
}

// NewReembedder creates a reembedder writing progress to progress.
// A nil config uses reembed.DefaultConfig().
func (c *Corpus) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(c.store, c.embedder, config, progress)
}

// Stats reports chunk counts for the corpus.
func (c *Corpus) Stats(ctx context.Context) (*storage.Stats, error) {
	return c.store.Stats(ctx)
}

// CachedVectors counts the embeddings held in the vector cache.
func (c *Corpus) CachedVectors(ctx context.Context) (int, error) {
	return c.cache.Len(ctx)
}
