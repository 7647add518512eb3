// Package hosted provides an embedding provider for the hosted OpenAI API
// using the official SDK.
package hosted

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/poiesic/groundwork/ai"
)

// ErrEmbeddingFailed wraps errors returned by the embeddings endpoint.
var ErrEmbeddingFailed = errors.New("embedding generation failed")

// Embedder implements ai.Embedder against the OpenAI embeddings endpoint.
type Embedder struct {
	client     openai.Client
	model      string
	dimensions int
	logger     *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func newEmbedder(config *ai.Config, extra ...option.RequestOption) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderOpenAI {
		return nil, fmt.Errorf("hosted embedder requires provider %q, got %q", ai.ProviderOpenAI, config.Provider)
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.EmbeddingHost != "" {
		opts = append(opts, option.WithBaseURL(config.EmbeddingHost))
	}
	opts = append(opts, extra...)

	return &Embedder{
		client:     openai.NewClient(opts...),
		model:      config.EmbeddingModel,
		dimensions: config.Dimensions,
		logger:     slog.Default().With("component", "hosted-embedder"),
	}, nil
}

// NewEmbedder creates an embedder for the hosted API.
// Extra request options are passed through to the SDK client.
func NewEmbedder(config *ai.Config, extra ...option.RequestOption) (ai.Embedder, error) {
	return newEmbedder(config, extra...)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for texts in a single request.
// Results are placed by the index reported in the response.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingFailed, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, idx)
		}
		vec := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			vec[j] = float32(val)
		}
		vectors[idx] = vec
	}
	return vectors, nil
}
