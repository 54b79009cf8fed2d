package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

func resetUpdateFlags() {
	updateChanges = nil
	updateApply = false
	updateJSON = false
}

func seedLinkedPair() {
	seedPMD()
	seedDocument(&domain.Document{
		ID:      "spec-1",
		Kind:    domain.KindSpec,
		Title:   "Planner Engineering Spec",
		Content: contentOf("overview", "Service design."),
	})
	linkDocuments("pmd-1", "spec-1")
}

func TestParseChanges(t *testing.T) {
	changes, err := parseChanges([]string{
		"title=New Title",
		"content.problem_statement=Teams lose work",
		"content.goals=Ship it",
	})

	require.NoError(t, err)
	assert.Equal(t, "New Title", changes["title"])
	assert.Equal(t, map[string]string{
		"problem_statement": "Teams lose work",
		"goals":             "Ship it",
	}, changes["content"])
}

func TestParseChanges_Invalid(t *testing.T) {
	_, err := parseChanges([]string{"oops"})
	assert.Error(t, err)
}

func TestUpdateCmd_RequiresChange(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetUpdateFlags()

	_, err := executeCommand("update", "pmd-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one --change is required")
}

func TestUpdateCmd_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer resetUpdateFlags()

	_, err := executeCommand("update", "pmd-1", "--change", "title=x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator not configured")
}

func TestUpdateCmd_NoLinkedDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetUpdateFlags()
	seedPMD()

	out, err := executeCommand("update", "pmd-1", "--change", "title=Planner 2")

	require.NoError(t, err)
	assert.Contains(t, out, "No linked documents are affected.")
	assert.Zero(t, testEnv.llm.calls)
}

func TestUpdateCmd_PMDChangeAffectsSpec(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetUpdateFlags()
	seedLinkedPair()

	out, err := executeCommand("update", "pmd-1", "--change", "content.problem_statement=Teams lose work")

	require.NoError(t, err)
	assert.Contains(t, out, "1 linked documents affected:")
	assert.Contains(t, out, "high  Planner Engineering Spec (spec-1)")
	assert.Contains(t, out, "- Update the success metrics")
	assert.Contains(t, out, "reason: scope changed")
	assert.Contains(t, out, "Rationale")
	assert.NotContains(t, out, "Applied changes")

	doc, err := testEnv.docs.Get(context.Background(), "pmd-1")
	require.NoError(t, err)
	assert.Equal(t, "Planner", doc.Title)
}

func TestUpdateCmd_Apply(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetUpdateFlags()
	seedLinkedPair()

	out, err := executeCommand("update", "pmd-1", "--change", "title=Planner 2", "--apply")

	require.NoError(t, err)
	assert.Contains(t, out, "Applied changes to Planner 2.")

	doc, err := testEnv.docs.Get(context.Background(), "pmd-1")
	require.NoError(t, err)
	assert.Equal(t, "Planner 2", doc.Title)
}

func TestUpdateCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetUpdateFlags()
	seedLinkedPair()

	out, err := executeCommand("update", "pmd-1", "--change", "title=x", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"spec-1"`)
	assert.Contains(t, out, `"high"`)
}
