package groundwork

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/ai/hosted"
	"github.com/poiesic/groundwork/ai/mock"
	"github.com/poiesic/groundwork/ai/openai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/ingestion"
)

func openTestCorpus(t *testing.T) (*Corpus, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	corpus, err := Open(filepath.Join(t.TempDir(), "corpus"), WithProvider(provider))
	require.NoError(t, err)
	return corpus, provider
}

func seedCorpus(t *testing.T, corpus *Corpus) {
	t.Helper()
	pipeline, err := corpus.NewIngestionPipeline(ingestion.WithChunker(ingestion.Chunker{MaxSentences: 1}))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Ingest(context.Background(),
		&ingestion.Document{
			SourceId:   "animals.md",
			SourceType: core.SourceTypeDocument,
			Text:       "The quick brown fox jumps over the lazy dog. Otters sleep holding hands.",
		},
		&ingestion.Document{
			SourceId:   "main.go",
			SourceType: core.SourceTypeCode,
			Text:       `func main() { fmt.Println("hello") }`,
		},
		&ingestion.Document{
			SourceId:   "disk-alert",
			SourceType: core.SourceTypeCapture,
			Domain:     "infra",
			Text:       "Disk usage is high on the database host.",
		},
	)
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("creates a new corpus", func(t *testing.T) {
		corpus, provider := openTestCorpus(t)
		assert.NotNil(t, corpus.Store())
		assert.NotNil(t, corpus.Embedder())
		assert.Equal(t, mock.MockModel, corpus.Model())

		stats, err := corpus.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.Chunks)

		require.NoError(t, corpus.Close())
		assert.True(t, provider.Closed())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a corpus at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		corpus, err := Open(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, corpus)
	})

	t.Run("error with incomplete AI config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOpenAI))
		corpus, err := Open(t.TempDir(), WithAIConfig(cfg))
		assert.Error(t, err)
		assert.Nil(t, corpus)
	})
}

func TestNewProvider(t *testing.T) {
	local, err := NewProvider(ai.DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, local)

	hostedCfg := ai.NewConfig(
		ai.WithProvider("OpenAI"),
		ai.WithAPIKey("sk-test"),
		ai.WithEmbeddingModel("text-embedding-3-small"))
	remote, err := NewProvider(hostedCfg)
	require.NoError(t, err)
	assert.IsType(t, &hosted.Provider{}, remote)
	assert.Equal(t, "text-embedding-3-small", remote.Model())

	_, err = NewProvider(ai.NewConfig(ai.WithProvider("bedrock")))
	assert.ErrorIs(t, err, ai.ErrUnknownProvider)
}

func TestCorpus_EndToEnd(t *testing.T) {
	ctx := context.Background()
	corpus, provider := openTestCorpus(t)
	defer corpus.Close()
	seedCorpus(t, corpus)

	stats, err := corpus.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Chunks)
	assert.Equal(t, 4, stats.Embedded)
	assert.Equal(t, 3, stats.Sources)

	searcher, err := corpus.NewSearcher()
	require.NoError(t, err)

	t.Run("exact phrase ranks first", func(t *testing.T) {
		results := searcher.Search(ctx, "quick brown fox", nil, 5)
		require.NotEmpty(t, results)
		assert.LessOrEqual(t, len(results), 5)
		assert.Equal(t, "The quick brown fox jumps over the lazy dog.", results[0].Chunk.Text)
		assert.Equal(t, 0, results[0].Signals.LexicalRank)
		assert.GreaterOrEqual(t, results[0].Signals.SemanticRank, 0)
	})

	t.Run("repeated queries hit the embedding cache", func(t *testing.T) {
		first := searcher.Search(ctx, "otters holding hands", nil, 5)
		calls := provider.GetMockEmbedder().CallCount()
		second := searcher.Search(ctx, "otters holding hands", nil, 5)
		assert.Equal(t, calls, provider.GetMockEmbedder().CallCount())
		assert.Equal(t, first, second)
	})

	t.Run("source type filter", func(t *testing.T) {
		results := searcher.Search(ctx, "quick brown fox", []core.SourceType{core.SourceTypeCode}, 5)
		for _, r := range results {
			assert.Equal(t, core.SourceTypeCode, r.SourceType)
		}
	})

	t.Run("global searcher is scoped to its domain", func(t *testing.T) {
		global, err := corpus.NewGlobalSearcher("infra")
		require.NoError(t, err)
		assert.Equal(t, "infra", global.Domain())

		results := global.Search(ctx, "disk usage", nil, 5)
		require.Len(t, results, 1)
		assert.Equal(t, "disk-alert", results[0].SourceId)
	})

	t.Run("vector cache holds ingested and query embeddings", func(t *testing.T) {
		n, err := corpus.CachedVectors(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 4)
	})

	t.Run("reembed rewrites every chunk", func(t *testing.T) {
		reembedder, err := corpus.NewReembedder(nil, io.Discard)
		require.NoError(t, err)
		n, err := reembedder.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}

func TestCorpus_ComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	corpus, err := Open(filepath.Join(t.TempDir(), "corpus"), WithProvider(provider), WithLogger(logger))
	require.NoError(t, err)
	defer corpus.Close()

	seedCorpus(t, corpus)
	searcher, err := corpus.NewSearcher()
	require.NoError(t, err)
	searcher.Search(context.Background(), "quick fox", nil, 3)

	out := buf.String()
	assert.Contains(t, out, `"component":"ingestion"`)
	assert.Contains(t, out, `"component":"searcher"`)
	for line := range strings.Lines(out) {
		assert.LessOrEqual(t, strings.Count(line, `"component"`), 1, line)
	}
}
