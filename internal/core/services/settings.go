package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyGenTimeout       = "generation.timeout_seconds"
	keyIndexAPIURL      = "index.api_url"
	keyIndexAPIKey      = "index.api_key"
	keyIndexIntegration = "index.integration_id"
	keyIndexOnCreate    = "index.on_create"
	keyAgentMaxRounds   = "agent.max_clarification_rounds"
	keyTemplatesDir     = "templates.dir"
	keyStorageBackend   = "storage.backend"
	keyStorageDataDir   = "storage.data_dir"
)

// Environment variables that override file settings.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvIndexAPIKey        = "INKEEP_API_KEY"
	EnvIndexIntegrationID = "INKEEP_INTEGRATION_ID"
	EnvIndexAPIURL        = "INKEEP_API_URL"
)

// settingKind is the value type of a settable key.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKinds = map[string]settingKind{
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMTemperature:   kindFloat,
	keyLLMMaxTokens:     kindInt,
	keyGenTimeout:       kindInt,
	keyIndexAPIURL:      kindString,
	keyIndexAPIKey:      kindString,
	keyIndexIntegration: kindString,
	keyIndexOnCreate:    kindBool,
	keyAgentMaxRounds:   kindInt,
	keyTemplatesDir:     kindString,
	keyStorageBackend:   kindString,
	keyStorageDataDir:   kindString,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
// Values come from the config store, with environment variables taking
// precedence for credentials. Environment values are never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings with environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store only.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	model := s.getString(keyLLMModel, "")
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	backend := domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend)))
	if backend != domain.StorageSQLite && backend != domain.StorageMemory {
		backend = defaults.Storage.Backend
	}

	return &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    provider,
			Model:       model,
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Index: domain.IndexSettings{
			APIURL:        s.getString(keyIndexAPIURL, defaults.Index.APIURL),
			APIKey:        s.configStore.GetString(keyIndexAPIKey),
			IntegrationID: s.configStore.GetString(keyIndexIntegration),
			OnCreate:      s.getBool(keyIndexOnCreate, defaults.Index.OnCreate),
		},
		Generation: domain.GenerationSettings{
			Timeout: s.getSeconds(keyGenTimeout, defaults.Generation.Timeout),
		},
		Agent: domain.AgentSettings{
			MaxClarificationRounds: s.getInt(keyAgentMaxRounds, defaults.Agent.MaxClarificationRounds),
		},
		Storage: domain.StorageSettings{
			Backend: backend,
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		TemplatesDir: s.configStore.GetString(keyTemplatesDir),
	}
}

// applyEnv overlays credentials from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			settings.LLM.APIKey = v
		}
	}
	if v, ok := s.lookupEnv(EnvIndexAPIKey); ok && v != "" {
		settings.Index.APIKey = v
	}
	if v, ok := s.lookupEnv(EnvIndexIntegrationID); ok && v != "" {
		settings.Index.IntegrationID = v
	}
	if v, ok := s.lookupEnv(EnvIndexAPIURL); ok && v != "" {
		settings.Index.APIURL = v
	}
}

// Save persists application settings. Empty credentials are not written
// so that a key supplied by the environment is never blanked in the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMTemperature, settings.LLM.Temperature, false},
		{keyLLMMaxTokens, settings.LLM.MaxTokens, false},
		{keyGenTimeout, int(settings.Generation.Timeout / time.Second), false},
		{keyIndexAPIURL, settings.Index.APIURL, false},
		{keyIndexAPIKey, settings.Index.APIKey, settings.Index.APIKey == ""},
		{keyIndexIntegration, settings.Index.IntegrationID, settings.Index.IntegrationID == ""},
		{keyIndexOnCreate, settings.Index.OnCreate, false},
		{keyAgentMaxRounds, settings.Agent.MaxClarificationRounds, false},
		{keyTemplatesDir, settings.TemplatesDir, false},
		{keyStorageBackend, string(settings.Storage.Backend), false},
		{keyStorageDataDir, settings.Storage.DataDir, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q, expected one of: %s",
			domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = value
	}

	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrUnsupportedProvider, value)
		}
	case keyStorageBackend:
		if b := domain.StorageBackend(value); b != domain.StorageSQLite && b != domain.StorageMemory {
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, parsed)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrUnsupportedProvider, provider)
	}

	settings := s.stored()

	// An API key may come from the environment instead.
	if provider.RequiresAPIKey() && apiKey == "" {
		if v, ok := s.lookupEnv(provider.APIKeyEnv()); !ok || v == "" {
			return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
		}
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434/v1"
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetIndex configures the search index credentials.
func (s *SettingsService) SetIndex(apiKey, integrationID string) error {
	if apiKey == "" || integrationID == "" {
		return fmt.Errorf("%w: API key and integration ID are both required", domain.ErrInvalidInput)
	}
	settings := s.stored()
	settings.Index.APIKey = apiKey
	settings.Index.IntegrationID = integrationID
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	n := s.configStore.GetInt(key)
	if n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
