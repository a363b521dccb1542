package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/pkg/config"
	"github.com/codelenshq/codelens/pkg/logger"
)

// maxProviderRetries bounds retries on transient provider errors
const maxProviderRetries = 3

// retryBaseDelay is doubled after each failed attempt
var retryBaseDelay = 2 * time.Second

// Completer is the text-generation provider contract: system prompt and
// user prompt in, response text out.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicService implements Completer against the Anthropic API
type AnthropicService struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicService creates a completion client from configuration
func NewAnthropicService(cfg config.AnthropicConfig) *AnthropicService {
	return &AnthropicService{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Complete sends one prompt and returns the response text. Transient
// failures (rate limit, timeout, 5xx) are retried with backoff before
// surfacing as ProviderTransientError.
func (s *AnthropicService) Complete(ctx context.Context, system, prompt string) (string, error) {
	var text string
	err := retryTransient(ctx, isTransientAPIError, func() error {
		var err error
		text, err = s.complete(ctx, system, prompt)
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// retryTransient runs op, retrying failures the classifier marks
// transient with doubling backoff. Non-transient failures return
// immediately; exhausting the attempt budget surfaces as
// ProviderTransientError.
func retryTransient(ctx context.Context, transient func(error) bool, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxProviderRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			logger.Warnf("Retrying provider call after %s (attempt %d/%d)", delay, attempt+1, maxProviderRetries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &models.ProviderTransientError{Err: ctx.Err()}
			}
		}

		err := op()
		if err == nil {
			return nil
		}
		if !transient(err) {
			return err
		}
		lastErr = err
	}

	return &models.ProviderTransientError{Err: lastErr}
}

func (s *AnthropicService) complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		sb.WriteString(block.Text)
	}
	if sb.Len() == 0 {
		return "", &models.ProviderParseError{Err: fmt.Errorf("empty completion response")}
	}

	return sb.String(), nil
}

// isTransientAPIError classifies provider failures worth retrying
func isTransientAPIError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

// extractJSONArray pulls the first JSON array out of a provider
// response, stripping markdown code fences and any surrounding prose.
func extractJSONArray(response string) (string, error) {
	cleaned := strings.TrimSpace(response)

	if idx := strings.Index(cleaned, "```"); idx != -1 {
		cleaned = cleaned[idx+3:]
		if nl := strings.Index(cleaned, "\n"); nl != -1 && nl < 20 {
			cleaned = cleaned[nl+1:]
		}
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON array in response")
	}

	return cleaned[start : end+1], nil
}
