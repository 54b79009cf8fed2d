package cli

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/docsmith/internal/adapters/driven/ai"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/services"
)

// Ensure mocks implement interfaces.
var (
	_ driven.LLMService     = (*mockLLM)(nil)
	_ driven.SearchIndex    = (*mockSearchIndex)(nil)
	_ driven.TemplateWriter = (*mockTemplateWriter)(nil)
)

// mockReply is returned for every LLM call. It carries an architecture
// heading, a requirements list and update bullets so every generator path
// has something to parse.
const mockReply = `## Architecture
A web service with a relational store.

## Functional Requirements
- Users can create plans

- Update the success metrics
  reason: scope changed`

// mockReview is returned by the index chat capability.
const mockReview = `Issues:
- Success metrics are vague
Suggestions:
- Add a weekly active users target`

// mockLLM replies with mockReply.
type mockLLM struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return mockReply, nil
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "# Team Planner\n\n## Problem\nTeams lose track of work.", nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockSearchIndex is an enabled index with canned results.
type mockSearchIndex struct {
	mu      sync.Mutex
	indexed map[string]domain.IndexDocument
}

func newMockSearchIndex() *mockSearchIndex {
	return &mockSearchIndex{indexed: map[string]domain.IndexDocument{}}
}

func (m *mockSearchIndex) Enabled() bool { return true }

func (m *mockSearchIndex) Index(_ context.Context, doc domain.IndexDocument) (domain.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed[doc.ExternalID] = doc
	return domain.IndexResult{Status: domain.IndexSuccess, ExternalID: doc.ExternalID}, nil
}

func (m *mockSearchIndex) Exists(_ context.Context, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.indexed[externalID]
	return ok, nil
}

func (m *mockSearchIndex) Search(
	_ context.Context,
	query string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return []domain.SearchResult{
		{ID: "related-1", Title: "Related Plan", Kind: "pmd", Snippet: "matched " + query, Score: 0.9},
		{ID: "related-2", Title: "Older Plan", Kind: "prd", Score: 0.5},
	}, nil
}

func (m *mockSearchIndex) Chat(
	_ context.Context,
	_ []domain.ChatMessage,
	_ map[string]any,
) (domain.ChatResult, error) {
	return domain.ChatResult{Status: domain.IndexSuccess, Response: mockReview}, nil
}

func (m *mockSearchIndex) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.indexed)
}

// mockTemplateWriter records saved templates.
type mockTemplateWriter struct {
	saved []*domain.Template
}

func (m *mockTemplateWriter) SaveTemplate(_ context.Context, t *domain.Template) error {
	m.saved = append(m.saved, t)
	return nil
}

// mockSearchServiceError fails every search.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return nil, errors.New("index unreachable")
}

func (m *mockSearchServiceError) Chat(
	_ context.Context,
	_ []domain.ChatMessage,
	_ map[string]any,
) (domain.ChatResult, error) {
	return domain.ChatResult{}, errors.New("index unreachable")
}

func (m *mockSearchServiceError) Suggestions(_ context.Context, _ string, _ domain.DocumentKind) ([]string, error) {
	return nil, errors.New("index unreachable")
}

func (m *mockSearchServiceError) ValidateContent(
	_ context.Context,
	_ string,
	_ domain.DocumentKind,
) (domain.ContentReview, error) {
	return domain.ContentReview{Status: domain.IndexError}, errors.New("index unreachable")
}

func (m *mockSearchServiceError) SimilarDocuments(
	_ context.Context,
	_ *domain.Document,
	_ int,
) ([]domain.SearchResult, error) {
	return nil, errors.New("index unreachable")
}

func (m *mockSearchServiceError) CrossReferences(_ context.Context, _ string) ([]domain.CrossReference, error) {
	return nil, errors.New("index unreachable")
}

// testEnv exposes the fakes behind the services installed by setupTestServices.
var testEnv struct {
	docs   *memory.DocumentStore
	queue  *memory.IndexQueue
	llm    *mockLLM
	index  *mockSearchIndex
	writer *mockTemplateWriter
}

// setupTestServices wires real services over in-memory stores, a mock LLM
// and a mock index. The returned func uninstalls them.
func setupTestServices() func() {
	docStore := memory.NewDocumentStore()
	queue := memory.NewIndexQueue()
	llm := &mockLLM{}
	index := newMockSearchIndex()
	writer := &mockTemplateWriter{}

	templates := services.NewTemplateStore(file.NewTemplateSource(""))
	validatorSvc := services.NewValidator()
	idx := services.NewIndexer(docStore, index, queue, false)
	worker := services.NewIndexWorker(queue, docStore, idx)

	SetServices(&Services{
		Settings:       services.NewSettingsService(memory.NewConfigStore(nil), ai.NewConfigValidator()),
		Documents:      services.NewDocumentService(docStore, templates, idx),
		Generator:      services.NewGenerator(llm, templates, services.GeneratorConfig{}),
		Validator:      validatorSvc,
		Templates:      templates,
		TemplateWriter: writer,
		Agent:          services.NewAgent(llm, validatorSvc, templates, services.AgentConfig{MaxClarificationRounds: 3}),
		Indexer:        idx,
		Search:         services.NewSearchService(docStore, index),
		Worker:         worker,
		Scheduler:      services.NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), idx, worker),
	})

	testEnv.docs = docStore
	testEnv.queue = queue
	testEnv.llm = llm
	testEnv.index = index
	testEnv.writer = writer

	return func() {
		SetServices(nil)
	}
}

// seedDocument stores doc directly, bypassing the document service.
func seedDocument(doc *domain.Document) *domain.Document {
	if doc.Status == "" {
		doc.Status = domain.StatusDraft
	}
	if doc.Version == "" {
		doc.Version = domain.DefaultDocumentVersion
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	if err := testEnv.docs.Save(context.Background(), doc); err != nil {
		panic(err)
	}
	return doc
}

// linkDocuments links two seeded documents.
func linkDocuments(a, b string) {
	if err := testEnv.docs.Link(context.Background(), a, b); err != nil {
		panic(err)
	}
}

// contentOf builds text content from key/value pairs.
func contentOf(pairs ...string) domain.Content {
	var c domain.Content
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], domain.TextValue(strings.TrimSpace(pairs[i+1])))
	}
	return c
}
