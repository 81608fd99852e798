package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ledgersage/ledgersage/internal/common"
)

const defaultModel = "text-embedding-3-small"

// openAIProvider implements Provider using the OpenAI embeddings API.
type openAIProvider struct {
	client    openai.Client
	modelName string
	dimension int
}

func newOpenAIProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIProvider{
		client:    openai.NewClient(opts...),
		modelName: model,
		dimension: dimensionForModel(model),
	}, nil
}

// Embed generates an embedding for a single text.
func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", common.ErrEmbeddingFailed)
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one API call.
// Rate limits are retried with backoff before surfacing to the caller.
func (p *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// The API rejects empty strings; embedding quality for blank
	// descriptions is unspecified anyway, so substitute a single space.
	input := make([]string, len(texts))
	for i, text := range texts {
		if text == "" {
			text = " "
		}
		input[i] = text
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: input,
		},
		Model: openai.EmbeddingModel(p.modelName),
	}

	var response *openai.CreateEmbeddingResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		response, callErr = p.client.Embeddings.New(ctx, params)
		return classifyAPIError(callErr)
	}, common.RetryOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEmbeddingFailed, err)
	}

	if len(response.Data) != len(input) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			common.ErrEmbeddingFailed, len(input), len(response.Data))
	}

	vectors := make([][]float32, len(response.Data))
	for i, item := range response.Data {
		vector := make([]float32, len(item.Embedding))
		for j, val := range item.Embedding {
			vector[j] = float32(val)
		}
		vectors[i] = vector
	}

	return vectors, nil
}

// Dimension returns the dimension of the embeddings.
func (p *openAIProvider) Dimension() int {
	return p.dimension
}

// ModelName returns the name of the model.
func (p *openAIProvider) ModelName() string {
	return p.modelName
}

// classifyAPIError maps API failures onto the retry taxonomy.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
		case apiErr.StatusCode >= 500:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return &common.RetryableError{Err: err, Retryable: false}
		}
	}

	return err
}

func dimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}
