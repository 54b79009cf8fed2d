package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// templateMetadataKey records the template a stored document was built from.
const templateMetadataKey = "template"

var (
	generateKind    string
	generateName    string
	generateAuthor  string
	generateInputs  []string
	generateContext []string
	generateSave    bool
	generateJSON    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document from a template",
	Long: `Generates a document section by section from a template. Each section is
prompted with the product context and the sections written so far.

Section inputs are passed as key=value pairs. Optional sections without an
input are skipped.

Examples:
  docsmith generate --kind pmd --name "Team Inbox" \
    --input problem_statement="Support requests get lost across channels"
  docsmith generate --kind lean --name Checkout --save`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", "pmd", "template kind")
	generateCmd.Flags().StringVar(&generateName, "name", "", "product name (required)")
	generateCmd.Flags().StringVar(&generateAuthor, "author", "", "document author")
	generateCmd.Flags().StringArrayVarP(&generateInputs, "input", "i", nil, "section input as key=value (repeatable)")
	generateCmd.Flags().StringArrayVar(&generateContext, "context", nil, "extra context as key=value (repeatable)")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "store the generated document")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "output the document as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generator == nil {
		return errors.New("generator not configured")
	}
	if strings.TrimSpace(generateName) == "" {
		return errors.New("--name is required")
	}

	inputs, err := parseKeyValues(generateInputs)
	if err != nil {
		return err
	}
	extra, err := parseKeyValues(generateContext)
	if err != nil {
		return err
	}
	promptCtx := make(map[string]any, len(extra))
	for k, v := range extra {
		promptCtx[k] = v
	}

	ctx := context.Background()
	req := domain.GenerateRequest{
		TemplateKind: generateKind,
		ProductName:  generateName,
		Author:       generateAuthor,
		Context:      promptCtx,
		Inputs:       inputs,
	}

	if !generateJSON {
		cmd.Printf("Generating %s document for %s...\n", generateKind, generateName)
		if templateService != nil {
			report := templateService.ValidateTemplateData(ctx, generateKind, inputs)
			if len(report.MissingRequired) > 0 {
				cmd.Println(muted("No input for required sections, drafting from context: " +
					strings.Join(report.MissingRequired, ", ")))
			}
		}
	}
	gen, err := generator.GenerateDocument(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	var saved *domain.Document
	if generateSave {
		saved, err = saveGenerated(ctx, gen)
		if err != nil {
			return err
		}
	}

	if generateJSON {
		out := struct {
			*domain.GeneratedDocument
			DocumentID string `json:",omitempty"`
		}{GeneratedDocument: gen}
		if saved != nil {
			out.DocumentID = saved.ID
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println()
	cmd.Println(renderMarkdown(gen.Content))
	cmd.Println(muted(fmt.Sprintf("Generated %d sections, skipped %d.",
		len(gen.SectionsGenerated), len(gen.SectionsSkipped))))
	if saved != nil {
		cmd.Printf("Saved as %s\n", saved.ID)
	}
	return nil
}

// saveGenerated stores gen as a new draft document.
func saveGenerated(ctx context.Context, gen *domain.GeneratedDocument) (*domain.Document, error) {
	if documentService == nil {
		return nil, errors.New("document service not configured")
	}
	doc := domain.NewDocument("", gen.DocumentKind, gen.Title)
	doc.Content = gen.Content
	doc.Metadata[templateMetadataKey] = gen.TemplateKind
	saved, err := documentService.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return saved, nil
}

// parseKeyValues turns key=value pairs into a map. Later keys win.
func parseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
