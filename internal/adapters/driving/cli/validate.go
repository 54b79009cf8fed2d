package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var (
	validateJSON  bool
	validateField string
)

var validateCmd = &cobra.Command{
	Use:   "validate [text...]",
	Short: "Check a product idea for completeness",
	Long: `Scores a product description against the five core fields a document
needs: product name, problem statement, target users, core functionality and
success metrics. Missing fields are listed with a clarifying question each.

With --field the text is checked as the value of that single field.

Examples:
  docsmith validate "Planner helps remote teams track shared work"
  docsmith validate --field target_users "everyone"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the result as JSON")
	validateCmd.Flags().StringVar(&validateField, "field", "", "check the text as one core field value")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validator == nil {
		return errors.New("validator not configured")
	}

	text := strings.Join(args, " ")
	if validateField != "" {
		return runValidateField(cmd, text)
	}

	result := validator.Validate(text)
	questions := validator.ClarificationQuestions(result.MissingInfo)

	if validateJSON {
		out := struct {
			domain.ValidationResult
			Questions []string `json:"questions"`
		}{result, questions}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Completeness: %s\n\n", scoreBar(result.CompletenessScore))
	for _, f := range domain.CoreFields {
		if v, ok := result.ExtractedInfo[f]; ok {
			cmd.Printf("  %s %s: %s\n", successStyle.Render("✓"), f.DisplayName(), v)
		} else {
			cmd.Printf("  %s %s\n", errorStyle.Render("✗"), f.DisplayName())
		}
	}
	cmd.Println()

	if result.IsSufficient {
		cmd.Println(successStyle.Render("Enough information to generate a document."))
		return nil
	}

	cmd.Println(warningStyle.Render("More information needed:"))
	for _, q := range questions {
		cmd.Printf("  - %s\n", q)
	}
	return nil
}

func runValidateField(cmd *cobra.Command, value string) error {
	f, ok := domain.CoreFieldByName(validateField)
	if !ok {
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, validateField)
	}

	var verr *domain.ValidationError
	if err := validator.ValidateField(f, value); err != nil && !errors.As(err, &verr) {
		return err
	}

	if validateJSON {
		out := map[string]any{"field": string(f), "valid": verr == nil}
		if verr != nil {
			out["error"] = verr.Message
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if verr != nil {
		cmd.Printf("%s %s: %s\n", errorStyle.Render("✗"), f.DisplayName(), verr.Message)
		return nil
	}
	cmd.Printf("%s %s: %s\n", successStyle.Render("✓"), f.DisplayName(), value)
	return nil
}
