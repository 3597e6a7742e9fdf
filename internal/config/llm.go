package config

import (
	"os"
	"sync"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LLMConfig describes the hosted completion endpoint. The "openai" provider covers
// any OpenAI-compatible chat completions API (Groq, OpenRouter).
type LLMConfig struct {
	Provider          string
	BaseURL           string
	APIKey            string
	StructuringModel  string
	AnalysisModel     string
	Temperature       float64
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		llmConfig = &LLMConfig{
			Provider:          getEnv("LLM_PROVIDER", ProviderOpenAI),
			BaseURL:           getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:            os.Getenv("LLM_API_KEY"),
			StructuringModel:  getEnv("STRUCTURING_MODEL", "llama-3.1-8b-instant"),
			AnalysisModel:     getEnv("ANALYSIS_MODEL", "llama-3.3-70b-versatile"),
			Temperature:       getEnvFloat("LLM_TEMPERATURE", 0.3),
			Timeout:           getEnvDuration("LLM_TIMEOUT", 90*time.Second),
			MaxRetries:        getEnvInt("LLM_MAX_RETRIES", 2),
			RequestsPerSecond: getEnvFloat("LLM_RPS", 0),
		}
	})
	return llmConfig
}
