package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var (
	specStack        []string
	specConstraints  []string
	specComponents   []string
	specIntegrations []string
	specTesting      string
	specEffort       string
	specTimeline     []string
	specResources    []string
	specSave         bool
	specJSON         bool
)

var specCmd = &cobra.Command{
	Use:   "spec [doc-id]",
	Short: "Derive an engineering spec from a product document",
	Long: `Summarises a stored product document and generates an engineering
specification from it: technical requirements, architecture, implementation
plan and estimates. Engineering inputs refine the result.

With --save the spec is stored as a new spec document linked to the source,
so later changes to the source show up in its impact analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpec,
}

func init() {
	f := specCmd.Flags()
	f.StringSliceVar(&specStack, "stack", nil, "technology stack entries")
	f.StringArrayVar(&specConstraints, "constraint", nil, "technical constraint (repeatable)")
	f.StringArrayVar(&specComponents, "component", nil, "system component (repeatable)")
	f.StringArrayVar(&specIntegrations, "integration", nil, "external integration (repeatable)")
	f.StringVar(&specTesting, "testing", "", "testing strategy")
	f.StringVar(&specEffort, "effort", "", "effort estimate")
	f.StringArrayVar(&specTimeline, "milestone", nil, "timeline milestone (repeatable)")
	f.StringArrayVar(&specResources, "resource", nil, "required resource (repeatable)")
	f.BoolVar(&specSave, "save", false, "store the spec and link it to the source")
	f.BoolVar(&specJSON, "json", false, "output the spec as JSON")
	rootCmd.AddCommand(specCmd)
}

func runSpec(cmd *cobra.Command, args []string) error {
	if generator == nil {
		return errors.New("generator not configured")
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	source, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	inputs := domain.EngineeringInputs{
		Constraints:     specConstraints,
		Components:      specComponents,
		Integrations:    specIntegrations,
		TechStack:       specStack,
		TestingStrategy: specTesting,
		EffortEstimate:  specEffort,
		Timeline:        specTimeline,
		Resources:       specResources,
	}

	spec, err := generator.GenerateSpec(ctx, source, inputs)
	if err != nil {
		return fmt.Errorf("spec generation failed: %w", err)
	}

	var saved *domain.Document
	if specSave {
		saved, err = saveSpec(ctx, source, spec)
		if err != nil {
			return err
		}
	}

	if specJSON {
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal spec: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Engineering spec for %s\n\n", heading(source.Title))
	cmd.Println(renderMarkdown(spec.Content()))
	if saved != nil {
		cmd.Printf("Saved as %s, linked to %s\n", saved.ID, source.ID)
	}
	return nil
}

// saveSpec stores spec as a draft spec document and links it to source.
func saveSpec(ctx context.Context, source *domain.Document, spec *domain.EngineeringSpec) (*domain.Document, error) {
	doc := domain.NewDocument("", domain.KindSpec, source.Title+" Engineering Spec")
	doc.Content = spec.Content()
	doc.Summary = spec.Architecture.Overview
	doc.Metadata[templateMetadataKey] = string(domain.KindSpec)
	doc.Metadata["pmd_reference"] = source.ID
	saved, err := documentService.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to save spec: %w", err)
	}
	if err := documentService.Link(ctx, source.ID, saved.ID); err != nil {
		return nil, fmt.Errorf("failed to link spec: %w", err)
	}
	return saved, nil
}
