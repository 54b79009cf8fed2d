// Package ai builds LLM service adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/docsmith/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/docsmith/internal/adapters/driven/llm/gemini"
	openaillm "github.com/custodia-labs/docsmith/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// pingTimeout bounds connectivity checks.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the adapter for the configured provider.
// Returns nil when no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.OllamaBaseURL
		}
		return openaillm.NewLLMService(openaillm.Config{
			BaseURL:     baseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:      settings.APIKey,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

// ValidateLLMConfig creates a service for settings and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
