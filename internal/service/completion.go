package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/resume-screener/internal/config"
)

var ErrEmptyCompletion = errors.New("empty completion from LLM")

// CompletionRequest is one prompt sent to a hosted chat model.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float64
	JSONMode    bool
}

type CompletionServiceInterface interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type EmbeddingServiceInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// NewCompletionService picks the backend named by LLM_PROVIDER.
func NewCompletionService(ctx context.Context, cfg *config.LLMConfig) (CompletionServiceInterface, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg)
	case config.ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY not set")
		}
		return NewOpenAIService(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
