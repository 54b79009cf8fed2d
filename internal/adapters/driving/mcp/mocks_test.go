package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// mockValidator is a mock implementation of driving.Validator.
// Text containing "complete" is sufficient; anything else misses the problem.
type mockValidator struct{}

func (m *mockValidator) Validate(text string) domain.ValidationResult {
	if strings.Contains(text, "complete") {
		return domain.ValidationResult{
			ExtractedInfo:     map[domain.CoreField]string{domain.FieldProblemStatement: "detected"},
			IsSufficient:      true,
			CompletenessScore: 1,
		}
	}
	return domain.ValidationResult{
		ExtractedInfo:     map[domain.CoreField]string{},
		MissingInfo:       []string{"Problem Statement"},
		CompletenessScore: 0.8,
	}
}

func (m *mockValidator) IsUnderspecified(text string) bool {
	return !strings.Contains(text, "complete")
}

func (m *mockValidator) ClarificationQuestions(missing []string) []string {
	out := make([]string, len(missing))
	for i, name := range missing {
		out[i] = "What is the " + name + "?"
	}
	return out
}

func (m *mockValidator) ValidateField(_ domain.CoreField, _ string) error {
	return nil
}

// mockTemplateService is a mock implementation of driving.TemplateService.
type mockTemplateService struct {
	infos []domain.TemplateInfo
	err   error
}

func (m *mockTemplateService) Load(_ context.Context, _ string) (*domain.Template, error) {
	return nil, m.err
}

func (m *mockTemplateService) RequiredSections(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockTemplateService) Available(_ context.Context) ([]domain.TemplateInfo, error) {
	return m.infos, m.err
}

func (m *mockTemplateService) ValidateTemplateData(_ context.Context, _ string, _ map[string]string) domain.TemplateDataReport {
	return domain.TemplateDataReport{IsValid: m.err == nil}
}

// mockGenerator is a mock implementation of driving.Generator.
type mockGenerator struct {
	generated *domain.GeneratedDocument
	plan      *domain.UpdatePlan
	err       error

	lastRequest domain.GenerateRequest
	lastChanges domain.Changes
	lastLinked  []domain.Document
}

func (m *mockGenerator) GenerateDocument(
	_ context.Context,
	req domain.GenerateRequest,
) (*domain.GeneratedDocument, error) {
	m.lastRequest = req
	return m.generated, m.err
}

func (m *mockGenerator) GenerateSpec(
	_ context.Context,
	_ *domain.Document,
	_ domain.EngineeringInputs,
) (*domain.EngineeringSpec, error) {
	return nil, m.err
}

func (m *mockGenerator) UpdateDocument(
	_ context.Context,
	_ *domain.Document,
	changes domain.Changes,
	linked []domain.Document,
) (*domain.UpdatePlan, error) {
	m.lastChanges = changes
	m.lastLinked = linked
	return m.plan, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	linked    []domain.Document
	created   *domain.Document
	err       error
}

func (m *mockDocumentService) Create(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	saved := *doc
	saved.ID = "doc-new"
	m.created = &saved
	return &saved, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ domain.DocumentFilter) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Update(_ context.Context, _ string, _ domain.Changes) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Link(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockDocumentService) Unlink(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockDocumentService) Linked(_ context.Context, _ string) ([]domain.Document, error) {
	return m.linked, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Chat(
	_ context.Context,
	_ []domain.ChatMessage,
	_ map[string]any,
) (domain.ChatResult, error) {
	return domain.ChatResult{}, m.err
}

func (m *mockSearchService) Suggestions(_ context.Context, _ string, _ domain.DocumentKind) ([]string, error) {
	return nil, m.err
}

func (m *mockSearchService) ValidateContent(
	_ context.Context,
	_ string,
	_ domain.DocumentKind,
) (domain.ContentReview, error) {
	return domain.ContentReview{}, m.err
}

func (m *mockSearchService) SimilarDocuments(
	_ context.Context,
	_ *domain.Document,
	_ int,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearchService) CrossReferences(_ context.Context, _ string) ([]domain.CrossReference, error) {
	return nil, m.err
}
