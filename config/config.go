// Package config loads groundwork settings from a TOML file and translates
// them into options for the AI provider, searcher and ingestion pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/reembed"
	"github.com/poiesic/groundwork/search"
)

// FileName is the config file looked up inside a corpus directory.
const FileName = "groundwork.toml"

// APIKeyEnv is consulted when the file leaves ai.api_key empty.
const APIKeyEnv = "OPENAI_API_KEY"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// File is the on-disk configuration.
type File struct {
	AI     AI     `toml:"ai"`
	Search Search `toml:"search"`
	Ingest Ingest `toml:"ingest"`
}

// AI selects the embedding backend.
type AI struct {
	Provider   string `toml:"provider"`
	Host       string `toml:"host"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key,omitempty"`
	Dimensions int    `toml:"dimensions,omitempty"`
}

// Search tunes retrieval.
type Search struct {
	TopK        int    `toml:"top_k"`
	LaneTimeout string `toml:"lane_timeout"`
	Domain      string `toml:"domain,omitempty"`
}

// Ingest tunes chunking and embedding of new documents.
type Ingest struct {
	MaxSentences int    `toml:"max_sentences"`
	MaxChars     int    `toml:"max_chars"`
	Overlap      int    `toml:"overlap"`
	BatchSize    int    `toml:"batch_size"`
	PoolSize     int    `toml:"pool_size,omitempty"`
	MaxRetries   int    `toml:"max_retries"`
	RetryDelay   string `toml:"retry_delay"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	aiDefaults := ai.DefaultConfig()
	chunker := ingestion.DefaultChunker()
	return &File{
		AI: AI{
			Provider: aiDefaults.Provider,
			Host:     aiDefaults.EmbeddingHost,
			Model:    aiDefaults.EmbeddingModel,
		},
		Search: Search{
			TopK:        search.DefaultTopK,
			LaneTimeout: search.DefaultLaneTimeout.String(),
		},
		Ingest: Ingest{
			MaxSentences: chunker.MaxSentences,
			MaxChars:     chunker.MaxChars,
			Overlap:      chunker.Overlap,
			BatchSize:    ingestion.DefaultBatchSize,
			MaxRetries:   3,
			RetryDelay:   "500ms",
		},
	}
}

// Load reads path over the defaults. A missing file yields Default().
// Keys absent from the file keep their default value.
func Load(path string) (*File, error) {
	f := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes f to path, creating parent directories.
func (f *File) Save(path string) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks value ranges and duration syntax.
func (f *File) Validate() error {
	if f.Search.TopK < 1 {
		return fmt.Errorf("%w: search.top_k must be at least 1", ErrInvalidConfig)
	}
	if _, err := positiveDuration("search.lane_timeout", f.Search.LaneTimeout); err != nil {
		return err
	}
	if f.Ingest.BatchSize < 1 {
		return fmt.Errorf("%w: ingest.batch_size must be at least 1", ErrInvalidConfig)
	}
	if f.Ingest.MaxRetries < 1 {
		return fmt.Errorf("%w: ingest.max_retries must be at least 1", ErrInvalidConfig)
	}
	if f.Ingest.Overlap < 0 || f.Ingest.PoolSize < 0 || f.AI.Dimensions < 0 {
		return fmt.Errorf("%w: negative value in [ingest] or [ai]", ErrInvalidConfig)
	}
	if _, err := positiveDuration("ingest.retry_delay", f.Ingest.RetryDelay); err != nil {
		return err
	}
	return nil
}

func positiveDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, key)
	}
	return d, nil
}

// AIConfig builds the provider configuration. An empty api_key falls back
// to the OPENAI_API_KEY environment variable.
func (f *File) AIConfig() *ai.Config {
	key := f.AI.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	return ai.NewConfig(
		ai.WithProvider(f.AI.Provider),
		ai.WithEmbeddingHost(f.AI.Host),
		ai.WithEmbeddingModel(f.AI.Model),
		ai.WithAPIKey(key),
		ai.WithDimensions(f.AI.Dimensions),
	)
}

// SearchOptions translates [search] into searcher options.
func (f *File) SearchOptions() ([]search.Option, error) {
	timeout, err := positiveDuration("search.lane_timeout", f.Search.LaneTimeout)
	if err != nil {
		return nil, err
	}
	opts := []search.Option{
		search.WithDefaultTopK(f.Search.TopK),
		search.WithLaneTimeout(timeout),
	}
	if f.Search.Domain != "" {
		opts = append(opts, search.WithDomain(f.Search.Domain))
	}
	return opts, nil
}

// IngestOptions translates [ingest] into pipeline options.
func (f *File) IngestOptions() ([]ingestion.Option, error) {
	delay, err := positiveDuration("ingest.retry_delay", f.Ingest.RetryDelay)
	if err != nil {
		return nil, err
	}
	opts := []ingestion.Option{
		ingestion.WithChunker(ingestion.Chunker{
			MaxSentences: f.Ingest.MaxSentences,
			MaxChars:     f.Ingest.MaxChars,
			Overlap:      f.Ingest.Overlap,
		}),
		ingestion.WithBatchSize(f.Ingest.BatchSize),
		ingestion.WithRetry(f.Ingest.MaxRetries, delay),
	}
	if f.Ingest.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(f.Ingest.PoolSize))
	}
	return opts, nil
}

// ReembedConfig derives re-embedding settings from [ingest].
func (f *File) ReembedConfig() (*reembed.Config, error) {
	delay, err := positiveDuration("ingest.retry_delay", f.Ingest.RetryDelay)
	if err != nil {
		return nil, err
	}
	cfg := reembed.DefaultConfig()
	cfg.BatchSize = f.Ingest.BatchSize
	cfg.MaxRetries = f.Ingest.MaxRetries
	cfg.RetryDelay = delay
	return cfg, nil
}
