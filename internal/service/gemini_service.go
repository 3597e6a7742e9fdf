package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/resume-screener/internal/config"
	"google.golang.org/genai"
)

type GeminiService struct {
	Client         *genai.Client
	EmbeddingModel string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, llmConfig *config.LLMConfig) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	apiKey := geminiConfig.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		Client:            client,
		EmbeddingModel:    geminiConfig.EmbeddingModel,
		MaxRetries:        llmConfig.MaxRetries,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RequestTimeout:    llmConfig.Timeout,
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}

	var text string
	err := s.withRetry(ctx, "GenerateContent", func(callCtx context.Context) error {
		result, err := s.Client.Models.GenerateContent(callCtx, req.Model, genai.Text(req.Prompt), genConfig)
		if err != nil {
			return err
		}
		if err := validateGenerateResponse(result); err != nil {
			return fmt.Errorf("invalid response: %w", errNonRetryable{err})
		}
		text = result.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}

	if len(trimmedText) > 10000 {
		log.Printf("Warning: text length %d exceeds recommended limit, truncating...", len(trimmedText))
		trimmedText = trimmedText[:10000]
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}

	var embeddings []float32
	err := s.withRetry(ctx, "GenerateEmbedding", func(callCtx context.Context) error {
		result, err := s.Client.Models.EmbedContent(callCtx, s.EmbeddingModel, content, nil)
		if err != nil {
			return err
		}
		embeddings, err = validateEmbeddingResponse(result)
		if err != nil {
			return fmt.Errorf("invalid embedding response: %w", errNonRetryable{err})
		}
		return nil
	})
	return embeddings, err
}

type errNonRetryable struct{ error }

func (e errNonRetryable) Unwrap() error { return e.error }

// withRetry runs call with exponential backoff and trips a shared breaker after
// circuitBreakerMax consecutive failed operations.
func (s *GeminiService) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	if n, open := s.GetCircuitBreakerStatus(); open {
		return fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", n)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			log.Printf("Retry attempt %d/%d for %s after %v", attempt, s.MaxRetries, op, delay)

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				s.recordFailure()
				return fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		err := call(timeoutCtx)
		if err == nil {
			s.ResetCircuitBreaker()
			return nil
		}
		lastErr = err

		if !s.isRetryableError(err) {
			log.Printf("Non-retryable error in %s: %v", op, err)
			s.recordFailure()
			return fmt.Errorf("%s failed: %w", op, err)
		}
		log.Printf("Retryable error on attempt %d: %v", attempt+1, err)
	}

	s.recordFailure()
	return fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25 * rand.Float64())
	return delay - jitter
}

func (s *GeminiService) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var nr errNonRetryable
	if errors.As(err, &nr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}

	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *GeminiService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors, s.consecutiveErrors >= s.circuitBreakerMax
}
