package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template"},
	Short:   "Inspect and import document templates",
	Long: `Templates describe the sections of a document and the prompts used to
generate each one. Built-in templates can be shadowed by YAML files in the
templates directory or by templates imported into the database.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [kind]",
	Short: "Show a template's sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import a custom template",
	Long: `Reads a YAML template file, validates it and stores it. An imported
template takes precedence over a built-in template of the same kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesImport,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesImportCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	if templateService == nil {
		return errors.New("template service not configured")
	}

	infos, err := templateService.Available(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	if len(infos) == 0 {
		cmd.Println("No templates found.")
		return nil
	}

	cmd.Println(heading("Templates"))
	cmd.Println()
	for _, info := range infos {
		cmd.Printf("  %-10s %s\n", info.Kind, info.Name)
		if info.Description != "" {
			cmd.Printf("             %s\n", muted(info.Description))
		}
		cmd.Printf("             %d sections, required: %s\n",
			info.SectionCount, strings.Join(info.RequiredSections, ", "))
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	if templateService == nil {
		return errors.New("template service not configured")
	}

	tpl, err := templateService.Load(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	cmd.Printf("%s (%s)\n", heading(tpl.Name), tpl.Kind)
	if tpl.Description != "" {
		cmd.Println(muted(tpl.Description))
	}
	cmd.Println()

	for i, s := range tpl.Sections {
		marker := ""
		switch {
		case s.Required:
			marker = " *"
		case s.Optional:
			marker = " (optional)"
		}
		cmd.Printf("  %d. %s [%s]%s\n", i+1, s.Title, s.Key, marker)
		if s.IsList() {
			lo, hi := s.Bounds()
			cmd.Printf("     list, %d-%d items\n", lo, hi)
		}
		for _, sub := range s.Subsections {
			cmd.Printf("     - %s\n", sub.Name)
		}
		for _, p := range s.Prompts {
			cmd.Printf("     %s\n", muted("? "+p))
		}
	}
	return nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	if templateWriter == nil {
		return errors.New("template storage not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	var tpl domain.Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return fmt.Errorf("failed to parse template: %w: %w", domain.ErrTemplateMalformed, err)
	}
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if err := templateWriter.SaveTemplate(context.Background(), &tpl); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	cmd.Printf("Imported template %s (%d sections)\n", tpl.Kind, len(tpl.Sections))
	return nil
}
