package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, the search index, storage and
generation options.

Settings live in ~/.docsmith/config.toml. Index credentials may also come from
INKEEP_API_KEY and INKEEP_INTEGRATION_ID, which take precedence over the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  docsmith settings set llm.temperature 0.3
  docsmith settings set agent.max_clarification_rounds 2
  docsmith settings set storage.backend memory`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for document generation and the agent.`,
	RunE:  runSettingsLLM,
}

var settingsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Configure the search index",
	Long:  `Configure the Inkeep API key and integration used for indexing and search.`,
	RunE:  runSettingsIndex,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsIndexCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(heading("Current Settings"))
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Status: %s\n", configuredLabel(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  API URL: %s\n", settings.Index.APIURL)
	if settings.Index.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Index.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if settings.Index.IntegrationID != "" {
		cmd.Printf("  Integration: %s\n", settings.Index.IntegrationID)
	} else {
		cmd.Printf("  Integration: (not set)\n")
	}
	cmd.Printf("  Index on create: %t\n", settings.Index.OnCreate)
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Index.IsConfigured()))
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Timeout: %s\n", settings.Generation.Timeout)
	cmd.Printf("  Max clarification rounds: %d\n", settings.Agent.MaxClarificationRounds)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	if settings.TemplatesDir != "" {
		cmd.Printf("  Templates dir: %s\n", settings.TemplatesDir)
	}
	cmd.Println()

	if !settings.LLM.IsConfigured() {
		cmd.Println(muted("Run 'docsmith settings llm' to configure document generation."))
	}
	return nil
}

func configuredLabel(ok bool) string {
	if ok {
		return successStyle.Render("configured")
	}
	return warningStyle.Render("not configured")
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsIndex(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureIndex(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key (or leave blank to use %s): ", selectedProvider.APIKeyEnv())
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			apiKey = os.Getenv(selectedProvider.APIKeyEnv())
		}
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureIndex(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Print("Enter Inkeep API key: ")
	apiKey := readPassword(reader)
	cmd.Println()
	cmd.Print("Enter integration ID: ")
	integrationID := readLine(reader)

	if apiKey == "" || integrationID == "" {
		return errors.New("both an API key and an integration ID are required")
	}
	if err := settingsService.SetIndex(apiKey, integrationID); err != nil {
		return fmt.Errorf("failed to configure index: %w", err)
	}

	cmd.Printf("Index configured: integration %s, key %s\n", integrationID, maskAPIKey(apiKey))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to a plain
// line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if isTerminal(os.Stdin) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
