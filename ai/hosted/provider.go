package hosted

import (
	"log/slog"

	"github.com/openai/openai-go/option"
	"github.com/poiesic/groundwork/ai"
)

// Provider implements ai.AIProvider for the hosted OpenAI API.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a provider for the hosted API.
func NewProvider(config *ai.Config, extra ...option.RequestOption) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config, extra...)
	if err != nil {
		return nil, err
	}
	return &Provider{
		config:   config,
		embedder: embedder,
		logger:   slog.Default().With("component", "hosted-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Model returns the configured embedding model.
func (p *Provider) Model() string {
	return p.config.EmbeddingModel
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing hosted provider")
	return nil
}
