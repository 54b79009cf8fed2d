package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests provider validation
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "gemini is valid", provider: AIProviderGemini, expected: true},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: AIProvider("unknown"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAIProvider_RequiresAPIKey tests API key requirements
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProvider("unknown").RequiresAPIKey())
}

func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderGemini.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Gemini (cloud)", AIProviderGemini.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnv())
	assert.Equal(t, "GEMINI_API_KEY", AIProviderGemini.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())
}

// TestLLMSettings_IsConfigured tests LLM configuration detection
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty", LLMSettings{}, false},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"gemini with key", LLMSettings{Provider: AIProviderGemini, APIKey: "g"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestIndexSettings_IsConfigured(t *testing.T) {
	assert.False(t, IndexSettings{}.IsConfigured())
	assert.False(t, IndexSettings{APIKey: "k"}.IsConfigured())
	assert.True(t, IndexSettings{APIKey: "k", IntegrationID: "i"}.IsConfigured())
}

// TestDefaultAppSettings tests default settings creation
func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.Empty(t, settings.LLM.Provider)
	assert.False(t, settings.LLM.IsConfigured())
	assert.Equal(t, DefaultTemperature, settings.LLM.Temperature)
	assert.Equal(t, DefaultMaxTokens, settings.LLM.MaxTokens)

	assert.Equal(t, "https://api.inkeep.com", settings.Index.APIURL)
	assert.True(t, settings.Index.OnCreate)
	assert.False(t, settings.Index.IsConfigured())

	assert.Equal(t, DefaultGenerationTimeout, settings.Generation.Timeout)
	assert.Equal(t, 3, settings.Agent.MaxClarificationRounds)
	assert.Equal(t, StorageSQLite, settings.Storage.Backend)
}

func TestDefaultLLMModels(t *testing.T) {
	models := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, models[p], "provider %s has no default model", p)
	}
}
