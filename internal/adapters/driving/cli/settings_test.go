package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func clearIndexEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INKEEP_API_KEY", "")
	t.Setenv("INKEEP_INTEGRATION_ID", "")
	t.Setenv("INKEEP_API_URL", "")
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(settingsCmd.Commands()))
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "llm", "index"}, names)
}

func TestSettingsShowCmd_Defaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	clearIndexEnv(t)

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Provider: (not set)")
	assert.Contains(t, out, "[Index]")
	assert.Contains(t, out, "Integration: (not set)")
	assert.Contains(t, out, "Index on create: true")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "docsmith settings llm")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	clearIndexEnv(t)

	out, err := executeCommand("settings", "set", "agent.max_clarification_rounds", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Set agent.max_clarification_rounds")

	out, err = executeCommand("settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Max clarification rounds: 5")
}

func TestSettingsSetCmd_Errors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "set", "llm.colour", "blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")

	_, err = executeCommand("settings", "set", "llm.max_tokens", "lots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a non-negative integer")

	_, err = executeCommand("settings", "set", "llm.max_tokens")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSettingsIndexCmd_ConfiguresIndex(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	clearIndexEnv(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader("ik-1234567890\nintegration-42\n"))
	rootCmd.SetArgs([]string{"settings", "index"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Index configured: integration integration-42, key ik-1...7890")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, "ik-1234567890", settings.Index.APIKey)
	assert.True(t, settings.Index.IsConfigured())
}

func TestSettingsIndexCmd_RequiresBothValues(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader("ik-1234567890\n\n"))
	rootCmd.SetArgs([]string{"settings", "index"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both an API key and an integration ID are required")
}

func TestSettingsLLMCmd_RequiresAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	t.Setenv("OPENAI_API_KEY", "")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	// OpenAI, default model, no key.
	rootCmd.SetIn(strings.NewReader("2\n\n\n"))
	rootCmd.SetArgs([]string{"settings", "llm"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Contains(t, buf.String(), "OpenAI (cloud)")
}

func TestSettingsCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := executeCommand("settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
