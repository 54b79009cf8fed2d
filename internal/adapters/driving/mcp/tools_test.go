package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Validator == nil {
		ports.Validator = &mockValidator{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleValidate(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{})

	t.Run("insufficient input returns questions", func(t *testing.T) {
		_, output, err := server.handleValidate(ctx, nil, ValidateInput{Text: "a todo app"})

		require.NoError(t, err)
		assert.False(t, output.IsSufficient)
		assert.InDelta(t, 0.8, output.CompletenessScore, 0.001)
		assert.Equal(t, []string{"Problem Statement"}, output.MissingInfo)
		assert.Equal(t, []string{"What is the Problem Statement?"}, output.Questions)
	})

	t.Run("sufficient input has no questions", func(t *testing.T) {
		_, output, err := server.handleValidate(ctx, nil, ValidateInput{Text: "complete idea"})

		require.NoError(t, err)
		assert.True(t, output.IsSufficient)
		assert.Empty(t, output.MissingInfo)
		assert.NotNil(t, output.Questions)
		assert.Equal(t, "detected", output.ExtractedInfo["problem_statement"])
	})
}

func TestServer_handleListTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		server := newTestServer(t, &Ports{})
		_, _, err := server.handleListTemplates(ctx, nil, ListTemplatesInput{})
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("lists templates", func(t *testing.T) {
		server := newTestServer(t, &Ports{Templates: &mockTemplateService{
			infos: []domain.TemplateInfo{
				{Kind: "pmd", Name: "Product Management Document", SectionCount: 12, RequiredSections: []string{"overview"}},
				{Kind: "lean", Name: "Lean PRD", SectionCount: 4},
			},
		}})

		_, output, err := server.handleListTemplates(ctx, nil, ListTemplatesInput{})

		require.NoError(t, err)
		require.Len(t, output.Templates, 2)
		assert.Equal(t, "pmd", output.Templates[0].Kind)
		assert.Equal(t, 12, output.Templates[0].SectionCount)
		assert.Equal(t, []string{"overview"}, output.Templates[0].RequiredSections)
		assert.Equal(t, []string{}, output.Templates[1].RequiredSections)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Templates: &mockTemplateService{err: errors.New("disk error")}})
		_, _, err := server.handleListTemplates(ctx, nil, ListTemplatesInput{})
		assert.EqualError(t, err, "disk error")
	})
}

func TestServer_handleGenerate(t *testing.T) {
	ctx := context.Background()

	generated := func() *domain.GeneratedDocument {
		var content domain.Content
		content.Set("overview", domain.TextValue("A planner for teams."))
		content.Set("goals", domain.ListValue([]string{"Ship weekly", "Stay small"}))
		return &domain.GeneratedDocument{
			TemplateKind:      "lean",
			DocumentKind:      domain.KindPRD,
			Title:             "Planner",
			Content:           content,
			SectionsGenerated: []string{"overview", "goals"},
		}
	}

	t.Run("not configured", func(t *testing.T) {
		server := newTestServer(t, &Ports{})
		_, _, err := server.handleGenerate(ctx, nil, GenerateInput{ProductName: "Planner"})
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("defaults to pmd template", func(t *testing.T) {
		gen := &mockGenerator{generated: generated()}
		server := newTestServer(t, &Ports{Generator: gen})

		_, output, err := server.handleGenerate(ctx, nil, GenerateInput{
			ProductName: "Planner",
			Inputs:      map[string]string{"overview": "planner"},
		})

		require.NoError(t, err)
		assert.Equal(t, "pmd", gen.lastRequest.TemplateKind)
		assert.Equal(t, "Planner", gen.lastRequest.ProductName)
		assert.Equal(t, "planner", gen.lastRequest.Inputs["overview"])
		assert.Empty(t, output.DocumentID)
		assert.Equal(t, "prd", output.DocumentKind)
		assert.Contains(t, output.Markdown, "## overview")
		assert.Contains(t, output.Markdown, "- Ship weekly")
		assert.Equal(t, []string{}, output.SectionsSkipped)
	})

	t.Run("save stores the document", func(t *testing.T) {
		docs := &mockDocumentService{}
		server := newTestServer(t, &Ports{Generator: &mockGenerator{generated: generated()}, Documents: docs})

		_, output, err := server.handleGenerate(ctx, nil, GenerateInput{
			Template:    "lean",
			ProductName: "Planner",
			Save:        true,
		})

		require.NoError(t, err)
		assert.Equal(t, "doc-new", output.DocumentID)
		require.NotNil(t, docs.created)
		assert.Equal(t, domain.KindPRD, docs.created.Kind)
		assert.Equal(t, "lean", docs.created.Metadata["template"])
	})

	t.Run("save without document service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Generator: &mockGenerator{generated: generated()}})
		_, _, err := server.handleGenerate(ctx, nil, GenerateInput{ProductName: "Planner", Save: true})
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("returns generator error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Generator: &mockGenerator{err: errors.New("llm down")}})
		_, _, err := server.handleGenerate(ctx, nil, GenerateInput{ProductName: "Planner"})
		assert.EqualError(t, err, "llm down")
	})
}

func TestServer_handleAnalyzeImpact(t *testing.T) {
	ctx := context.Background()

	pmd := &domain.Document{ID: "pmd-1", Kind: domain.KindPMD, Title: "Planner PMD", Links: []string{"spec-1"}}
	spec := domain.Document{ID: "spec-1", Kind: domain.KindSpec, Title: "Planner Spec"}

	t.Run("not configured", func(t *testing.T) {
		server := newTestServer(t, &Ports{Generator: &mockGenerator{}})
		_, _, err := server.handleAnalyzeImpact(ctx, nil, ImpactInput{DocumentID: "pmd-1"})
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("returns the update plan", func(t *testing.T) {
		gen := &mockGenerator{plan: &domain.UpdatePlan{
			SourceID: "pmd-1",
			Impact: domain.ImpactAnalysis{
				AffectedDocuments: []string{"spec-1"},
				ImpactLevels:      map[string]domain.ImpactLevel{"spec-1": domain.ImpactHigh},
				Rationale:         "Specs follow their PMD.",
			},
			Updates: []domain.DocumentUpdate{{
				DocumentID:    "spec-1",
				DocumentTitle: "Planner Spec",
				ImpactLevel:   domain.ImpactHigh,
				SuggestedChanges: []domain.UpdateSuggestion{
					{Change: "Update the success metrics"},
				},
			}},
		}}
		docs := &mockDocumentService{document: pmd, linked: []domain.Document{spec}}
		server := newTestServer(t, &Ports{Generator: gen, Documents: docs})

		_, output, err := server.handleAnalyzeImpact(ctx, nil, ImpactInput{
			DocumentID: "pmd-1",
			Changes:    map[string]string{"summary": "New summary"},
		})

		require.NoError(t, err)
		assert.Equal(t, "New summary", gen.lastChanges["summary"])
		require.Len(t, gen.lastLinked, 1)
		assert.Equal(t, "spec-1", gen.lastLinked[0].ID)

		assert.Equal(t, "pmd-1", output.SourceID)
		assert.Equal(t, []string{"spec-1"}, output.AffectedDocuments)
		assert.Equal(t, "high", output.ImpactLevels["spec-1"])
		require.Len(t, output.Updates, 1)
		assert.Equal(t, []string{"Update the success metrics"}, output.Updates[0].Suggestions)
	})

	t.Run("unknown document", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Generator: &mockGenerator{}, Documents: docs})

		_, _, err := server.handleAnalyzeImpact(ctx, nil, ImpactInput{DocumentID: "missing"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "getting document")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		server := newTestServer(t, &Ports{})
		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		assert.ErrorIs(t, err, errNotConfigured)
	})

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					ID:      "doc-1",
					Title:   "Test Doc",
					Kind:    "pmd",
					URL:     "https://docs.example.com/doc-1",
					Snippet: "This is the content",
					Score:   0.95,
				},
			},
		}

		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "test", Limit: 5}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Len(t, output.Results, 1)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, "Test Doc", output.Results[0].Title)
		assert.Equal(t, "pmd", output.Results[0].Kind)
		assert.Equal(t, "https://docs.example.com/doc-1", output.Results[0].URL)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "This is the content", output.Results[0].Snippet)
		assert.Equal(t, 5, mockSearch.lastOpts.Limit)
	})

	t.Run("default limit is 10", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "test", Limit: 0}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 10, mockSearch.lastOpts.Limit)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: errors.New("search failed"),
		}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "test"}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestMarkdown(t *testing.T) {
	var content domain.Content
	content.Set("problem_statement", domain.TextValue("Teams lose track of work."))
	content.Set("user_personas", domain.KeyedValue([]domain.KeyedEntry{
		{Key: "team_lead", Value: "Plans the sprint."},
	}))

	out := markdown(content)

	assert.Equal(t, "## problem statement\n\nTeams lose track of work.\n\n"+
		"## user personas\n\n### team lead\nPlans the sprint.", out)
}
