package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

const defaultSearchLimit = 10

// ValidateInput is the input schema for the validate_input tool.
type ValidateInput struct {
	Text string `json:"text" jsonschema:"the product idea or request to check"`
}

// ValidateOutput is the output schema for the validate_input tool.
type ValidateOutput struct {
	CompletenessScore float64           `json:"completeness_score"`
	IsSufficient      bool              `json:"is_sufficient"`
	ExtractedInfo     map[string]string `json:"extracted_info"`
	MissingInfo       []string          `json:"missing_info"`
	Questions         []string          `json:"questions"`
}

// GenerateInput is the input schema for the generate_document tool.
type GenerateInput struct {
	Template    string            `json:"template,omitempty" jsonschema:"template kind such as pmd, lean or agile (default pmd)"`
	ProductName string            `json:"product_name" jsonschema:"name of the product or feature"`
	Author      string            `json:"author,omitempty" jsonschema:"document author"`
	Inputs      map[string]string `json:"inputs,omitempty" jsonschema:"user input per section key"`
	Save        bool              `json:"save,omitempty" jsonschema:"store the generated document"`
}

// GenerateOutput is the output schema for the generate_document tool.
type GenerateOutput struct {
	DocumentID        string   `json:"document_id,omitempty"`
	Template          string   `json:"template"`
	DocumentKind      string   `json:"document_kind"`
	Title             string   `json:"title"`
	Markdown          string   `json:"markdown"`
	SectionsGenerated []string `json:"sections_generated"`
	SectionsSkipped   []string `json:"sections_skipped"`
}

// ImpactInput is the input schema for the analyze_impact tool.
type ImpactInput struct {
	DocumentID string            `json:"document_id" jsonschema:"ID of the changed document"`
	Changes    map[string]string `json:"changes" jsonschema:"changed fields and their new values"`
}

// ImpactOutput is the output schema for the analyze_impact tool.
type ImpactOutput struct {
	SourceID          string            `json:"source_id"`
	AffectedDocuments []string          `json:"affected_documents"`
	ImpactLevels      map[string]string `json:"impact_levels"`
	Rationale         string            `json:"rationale,omitempty"`
	Updates           []UpdateOutput    `json:"updates"`
}

// UpdateOutput is the proposed edit for one affected document.
type UpdateOutput struct {
	DocumentID    string   `json:"document_id"`
	DocumentTitle string   `json:"document_title"`
	ImpactLevel   string   `json:"impact_level"`
	Suggestions   []string `json:"suggestions"`
}

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Kind       string  `json:"kind,omitempty"`
	URL        string  `json:"url,omitempty"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet,omitempty"`
}

// ListTemplatesInput is the empty input of the list_templates tool.
type ListTemplatesInput struct{}

// ListTemplatesOutput is the output schema for the list_templates tool.
type ListTemplatesOutput struct {
	Templates []TemplateOutput `json:"templates"`
}

// TemplateOutput summarises one template.
type TemplateOutput struct {
	Kind             string   `json:"kind"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	SectionCount     int      `json:"section_count"`
	RequiredSections []string `json:"required_sections"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_input",
		Description: "Check whether a product idea has enough detail to write a document",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the document templates available for generation",
	}, s.handleListTemplates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_document",
		Description: "Generate a product document section by section from a template",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_impact",
		Description: "Find linked documents affected by a change and propose edits",
	}, s.handleAnalyzeImpact)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed product documents",
	}, s.handleSearch)
}

// handleValidate handles the validate_input tool invocation.
func (s *Server) handleValidate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	result := s.ports.Validator.Validate(input.Text)

	extracted := make(map[string]string, len(result.ExtractedInfo))
	for f, v := range result.ExtractedInfo {
		extracted[string(f)] = v
	}

	return nil, ValidateOutput{
		CompletenessScore: result.CompletenessScore,
		IsSufficient:      result.IsSufficient,
		ExtractedInfo:     extracted,
		MissingInfo:       nonNil(result.MissingInfo),
		Questions:         nonNil(s.ports.Validator.ClarificationQuestions(result.MissingInfo)),
	}, nil
}

// handleListTemplates handles the list_templates tool invocation.
func (s *Server) handleListTemplates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	if s.ports.Templates == nil {
		return nil, ListTemplatesOutput{}, fmt.Errorf("templates: %w", errNotConfigured)
	}

	infos, err := s.ports.Templates.Available(ctx)
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}

	out := ListTemplatesOutput{Templates: make([]TemplateOutput, len(infos))}
	for i, info := range infos {
		out.Templates[i] = TemplateOutput{
			Kind:             info.Kind,
			Name:             info.Name,
			Description:      info.Description,
			SectionCount:     info.SectionCount,
			RequiredSections: nonNil(info.RequiredSections),
		}
	}
	return nil, out, nil
}

// handleGenerate handles the generate_document tool invocation.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if s.ports.Generator == nil {
		return nil, GenerateOutput{}, fmt.Errorf("generator: %w", errNotConfigured)
	}
	if input.Save && s.ports.Documents == nil {
		return nil, GenerateOutput{}, fmt.Errorf("documents: %w", errNotConfigured)
	}

	kind := input.Template
	if kind == "" {
		kind = string(domain.KindPMD)
	}

	gen, err := s.ports.Generator.GenerateDocument(ctx, domain.GenerateRequest{
		TemplateKind: kind,
		ProductName:  input.ProductName,
		Author:       input.Author,
		Inputs:       input.Inputs,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	out := GenerateOutput{
		Template:          gen.TemplateKind,
		DocumentKind:      string(gen.DocumentKind),
		Title:             gen.Title,
		Markdown:          markdown(gen.Content),
		SectionsGenerated: nonNil(gen.SectionsGenerated),
		SectionsSkipped:   nonNil(gen.SectionsSkipped),
	}

	if input.Save {
		doc, err := s.ports.Documents.Create(ctx, &domain.Document{
			Kind:     gen.DocumentKind,
			Title:    gen.Title,
			Content:  gen.Content,
			Metadata: map[string]any{"template": gen.TemplateKind},
		})
		if err != nil {
			return nil, GenerateOutput{}, fmt.Errorf("saving document: %w", err)
		}
		out.DocumentID = doc.ID
	}
	return nil, out, nil
}

// handleAnalyzeImpact handles the analyze_impact tool invocation.
func (s *Server) handleAnalyzeImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImpactInput,
) (*mcp.CallToolResult, ImpactOutput, error) {
	if s.ports.Generator == nil || s.ports.Documents == nil {
		return nil, ImpactOutput{}, fmt.Errorf("impact analysis: %w", errNotConfigured)
	}

	doc, err := s.ports.Documents.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, ImpactOutput{}, fmt.Errorf("getting document: %w", err)
	}
	linked, err := s.ports.Documents.Linked(ctx, doc.ID)
	if err != nil {
		return nil, ImpactOutput{}, fmt.Errorf("getting linked documents: %w", err)
	}

	changes := make(domain.Changes, len(input.Changes))
	for k, v := range input.Changes {
		changes[k] = v
	}

	plan, err := s.ports.Generator.UpdateDocument(ctx, doc, changes, linked)
	if err != nil {
		return nil, ImpactOutput{}, err
	}

	out := ImpactOutput{
		SourceID:          plan.SourceID,
		AffectedDocuments: nonNil(plan.Impact.AffectedDocuments),
		ImpactLevels:      make(map[string]string, len(plan.Impact.ImpactLevels)),
		Rationale:         plan.Impact.Rationale,
		Updates:           make([]UpdateOutput, len(plan.Updates)),
	}
	for id, lvl := range plan.Impact.ImpactLevels {
		out.ImpactLevels[id] = string(lvl)
	}
	for i, u := range plan.Updates {
		suggestions := make([]string, len(u.SuggestedChanges))
		for j, c := range u.SuggestedChanges {
			suggestions[j] = c.Change
		}
		out.Updates[i] = UpdateOutput{
			DocumentID:    u.DocumentID,
			DocumentTitle: u.DocumentTitle,
			ImpactLevel:   string(u.ImpactLevel),
			Suggestions:   suggestions,
		}
	}
	return nil, out, nil
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if s.ports.Search == nil {
		return nil, SearchOutput{}, fmt.Errorf("search: %w", errNotConfigured)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].ID,
			Title:      results[i].Title,
			Kind:       results[i].Kind,
			URL:        results[i].URL,
			Score:      results[i].Score,
			Snippet:    results[i].Snippet,
		}
	}

	return nil, output, nil
}

// markdown renders document content as plain markdown.
func markdown(content domain.Content) string {
	var b strings.Builder
	for _, sec := range content {
		b.WriteString("## " + strings.ReplaceAll(sec.Key, "_", " ") + "\n\n")
		switch sec.Value.Kind {
		case domain.ValueList:
			for _, item := range sec.Value.Items {
				b.WriteString("- " + item + "\n")
			}
		case domain.ValueKeyed:
			for _, e := range sec.Value.Entries {
				b.WriteString("### " + strings.ReplaceAll(e.Key, "_", " ") + "\n" + e.Value + "\n\n")
			}
		default:
			b.WriteString(sec.Value.Text + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
