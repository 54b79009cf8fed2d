package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a text generation provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance, reached through its
	// OpenAI-compatible endpoint.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps each completion.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds the external search index configuration.
type IndexSettings struct {
	// APIURL is the index service base URL.
	APIURL string

	// APIKey authenticates against the index.
	APIKey string

	// IntegrationID selects the index integration.
	IntegrationID string

	// OnCreate enables indexing documents when they are created.
	OnCreate bool
}

// IsConfigured returns true when both credentials are present.
func (s IndexSettings) IsConfigured() bool {
	return s.APIKey != "" && s.IntegrationID != ""
}

// GenerationSettings holds document generation limits.
type GenerationSettings struct {
	// Timeout bounds each generation call.
	Timeout time.Duration
}

// AgentSettings holds conversational agent configuration.
type AgentSettings struct {
	// MaxClarificationRounds is how many clarification replies in a row the
	// agent gives before generating with what it has.
	MaxClarificationRounds int
}

// StorageBackend selects where documents are kept.
type StorageBackend string

// Storage backends.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	Backend StorageBackend
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM          LLMSettings
	Index        IndexSettings
	Generation   GenerationSettings
	Agent        AgentSettings
	Storage      StorageSettings
	TemplatesDir string
}

// Default setting values.
const (
	DefaultIndexAPIURL            = "https://api.inkeep.com"
	DefaultGenerationTimeout      = 120 * time.Second
	DefaultMaxClarificationRounds = 3
	DefaultTemperature            = 0.7
	DefaultMaxTokens              = 2000
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM provider and index credentials are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Index: IndexSettings{
			APIURL:   DefaultIndexAPIURL,
			OnCreate: true,
		},
		Generation: GenerationSettings{
			Timeout: DefaultGenerationTimeout,
		},
		Agent: AgentSettings{
			MaxClarificationRounds: DefaultMaxClarificationRounds,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}
