// Package gemini provides an LLM service adapter for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultMaxTokens = 2000
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string

	// MaxTokens is used when a call does not set its own limit.
	MaxTokens int

	// Temperature is used when a call does not set its own value.
	Temperature float64
}

// LLMService generates text through the genai Models API.
type LLMService struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Generate produces a completion for a single prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	cfg := s.config(opts.SystemPrompt, opts.MaxTokens, opts.Temperature)
	if len(opts.StopWords) > 0 {
		cfg.StopSequences = opts.StopWords
	}
	return s.generate(ctx, genai.Text(prompt), cfg)
}

// Chat conducts a multi-turn conversation. Assistant turns map to the
// model role; system messages become the system instruction.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", errors.New("gemini: no user or assistant messages")
	}

	cfg := s.config(strings.Join(system, "\n\n"), opts.MaxTokens, opts.Temperature)
	return s.generate(ctx, contents, cfg)
}

func (s *LLMService) config(system string, maxTokens int, temperature float64) *genai.GenerateContentConfig {
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	if temperature <= 0 {
		temperature = s.temperature
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens), //nolint:gosec // bounded by settings
	}
	if temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(temperature))
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return cfg
}

func (s *LLMService) generate(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the configured model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
