package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/pkg/config"
)

// maxEmbeddingInputChars truncates oversized inputs to stay under the
// provider's token limit
const maxEmbeddingInputChars = 8000

// Embedder is the embeddings provider contract: texts in, one
// fixed-length vector per text out, order preserved.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbeddingService implements Embedder against the OpenAI API
type OpenAIEmbeddingService struct {
	client openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbeddingService creates an embedding client from configuration
func NewOpenAIEmbeddingService(cfg config.OpenAIConfig) *OpenAIEmbeddingService {
	return &OpenAIEmbeddingService{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  openai.EmbeddingModel(cfg.EmbeddingModel),
	}
}

// EmbedTexts requests one embedding per input text in a single batch
// call. Transient failures (rate limit, timeout, 5xx) are retried with
// backoff before surfacing as ProviderTransientError.
func (s *OpenAIEmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, text := range texts {
		if len(text) > maxEmbeddingInputChars {
			text = text[:maxEmbeddingInputChars]
		}
		inputs[i] = text
	}

	var vectors [][]float32
	err := retryTransient(ctx, isTransientEmbeddingError, func() error {
		resp, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: s.model,
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: inputs,
			},
		})
		if err != nil {
			return err
		}

		if len(resp.Data) != len(inputs) {
			return &models.ProviderParseError{
				Err: fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Data)),
			}
		}

		vectors = make([][]float32, len(resp.Data))
		for _, item := range resp.Data {
			vector := make([]float32, len(item.Embedding))
			for i, v := range item.Embedding {
				vector[i] = float32(v)
			}
			vectors[item.Index] = vector
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vectors, nil
}

func isTransientEmbeddingError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
