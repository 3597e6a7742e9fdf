package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fadilmartias/resume-screener/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenAIService talks to any OpenAI-compatible chat completions endpoint
// (Groq, OpenRouter, OpenAI).
type OpenAIService struct {
	client *resty.Client
}

func NewOpenAIService(cfg *config.LLMConfig) *OpenAIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(20 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	return &OpenAIService{client: client}
}

func (s *OpenAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	body := map[string]any{
		"model":       req.Model,
		"temperature": req.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.JSONMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode(), msg)
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
