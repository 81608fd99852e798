// Package embedding maps text to fixed-length dense vectors.
//
// The provider is the only part of the application aware of which embedding
// model is in use; swapping models is invisible to callers apart from the
// resulting vector dimensionality.
package embedding

import (
	"context"
	"fmt"
)

// Provider generates vector embeddings for text. All vectors produced by one
// provider share the same dimensionality.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// Config holds provider configuration.
type Config struct {
	Backend string
	APIKey  string
	Model   string
	BaseURL string
}

// NewProvider creates an embedding provider from configuration.
// The provider should be constructed once per process and reused; model
// clients are safe for concurrent use and cheap to share.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Backend {
	case "", "openai":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s", cfg.Backend)
	}
}
