package driven

import "github.com/custodia-labs/docsmith/internal/core/domain"

// AIConfigValidator checks an LLM configuration by connecting to the provider.
type AIConfigValidator interface {
	// ValidateLLM pings the configured provider.
	// Returns nil if the configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
