package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var (
	updateChanges []string
	updateApply   bool
	updateJSON    bool
)

var updateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Analyse the impact of a change on linked documents",
	Long: `Works out which linked documents a change affects and proposes edits
for each of them. A change to a PMD affects its linked specs strongly; a
change to a spec affects its linked PMDs moderately.

Changes are key=value pairs. Use content.<section>=text to change a single
section. Without --apply the change is only previewed.

Examples:
  docsmith update 3f2a --change status=approved
  docsmith update 3f2a --change content.success_metrics="Weekly actives" --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringArrayVarP(&updateChanges, "change", "c", nil, "change as key=value (repeatable)")
	updateCmd.Flags().BoolVar(&updateApply, "apply", false, "apply the change to the document")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "output the plan as JSON")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if generator == nil {
		return errors.New("generator not configured")
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	changes, err := parseChanges(updateChanges)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return errors.New("at least one --change is required")
	}

	ctx := context.Background()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if updateApply {
		doc, err = documentService.Update(ctx, doc.ID, changes)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
	}

	linked, err := documentService.Linked(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to load linked documents: %w", err)
	}

	plan, err := generator.UpdateDocument(ctx, doc, changes, linked)
	if err != nil {
		return fmt.Errorf("impact analysis failed: %w", err)
	}

	if updateJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputUpdatePlan(cmd, doc, plan)
	return nil
}

func outputUpdatePlan(cmd *cobra.Command, doc *domain.Document, plan *domain.UpdatePlan) {
	if updateApply {
		cmd.Printf("Applied changes to %s.\n\n", doc.Title)
	}
	if len(plan.Impact.AffectedDocuments) == 0 {
		cmd.Println("No linked documents are affected.")
		return
	}

	cmd.Printf("%d linked documents affected:\n\n", len(plan.Impact.AffectedDocuments))
	for _, u := range plan.Updates {
		cmd.Printf("  %s  %s (%s)\n", impactBadge(u.ImpactLevel), u.DocumentTitle, u.DocumentID)
		for _, s := range u.SuggestedChanges {
			cmd.Printf("    - %s\n", s.Change)
			for _, field := range slices.Sorted(maps.Keys(s.Fields)) {
				cmd.Printf("      %s: %s\n", field, s.Fields[field])
			}
		}
	}
	if plan.Impact.Rationale != "" {
		cmd.Println()
		cmd.Println(heading("Rationale"))
		cmd.Println(plan.Impact.Rationale)
	}
}

// parseChanges turns key=value flags into document changes.
// content.<section> keys are grouped into one content change.
func parseChanges(pairs []string) (domain.Changes, error) {
	kv, err := parseKeyValues(pairs)
	if err != nil {
		return nil, err
	}

	changes := domain.Changes{}
	sections := map[string]string{}
	for k, v := range kv {
		if section, ok := strings.CutPrefix(k, "content."); ok && section != "" {
			sections[section] = v
			continue
		}
		changes[k] = v
	}
	if len(sections) > 0 {
		changes["content"] = sections
	}
	return changes, nil
}
