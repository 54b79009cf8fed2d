package services

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure mocks implement interfaces.
var (
	_ driven.LLMService     = (*mockLLM)(nil)
	_ driven.DocumentStore  = (*mockDocumentStore)(nil)
	_ driven.SearchIndex    = (*mockSearchIndex)(nil)
	_ driven.IndexQueue     = (*mockIndexQueue)(nil)
	_ driven.TemplateSource = (*mockTemplateSource)(nil)
	_ driven.SchedulerStore = (*mockSchedulerStore)(nil)
	_ driven.ConfigStore    = (*mockConfigStore)(nil)
)

// mockLLM replies with a fixed response, or one chosen by respond.
type mockLLM struct {
	mu       sync.Mutex
	response string
	respond  func(prompt string) (string, error)
	err      error
	prompts  []string
	systems  []string
	messages [][]driven.ChatMessage
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, opts.SystemPrompt)
	respond, response, err := m.respond, m.response, m.err
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if respond != nil {
		return respond(prompt)
	}
	return response, nil
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	response, err := m.response, m.err
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return response, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockDocumentStore is a map-backed document store.
type mockDocumentStore struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	order   []string
	listErr error
}

func newMockDocumentStore(docs ...*domain.Document) *mockDocumentStore {
	m := &mockDocumentStore{docs: make(map[string]domain.Document)}
	for _, d := range docs {
		_ = m.Save(context.Background(), d)
	}
	return m
}

func (m *mockDocumentStore) Save(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		m.order = append(m.order, doc.ID)
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *mockDocumentStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for k, d := range m.docs {
		if d.IsLinkedTo(id) {
			d.Links = slices.DeleteFunc(d.Links, func(l string) bool { return l == id })
			m.docs[k] = d
		}
	}
	return nil
}

func (m *mockDocumentStore) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Document{}
	for _, id := range m.order {
		d := m.docs[id]
		if filter.Matches(&d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentStore) Link(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	da, okA := m.docs[a]
	db, okB := m.docs[b]
	if !okA || !okB {
		return domain.ErrNotFound
	}
	if !da.IsLinkedTo(b) {
		da.Links = append(da.Links, b)
	}
	if !db.IsLinkedTo(a) {
		db.Links = append(db.Links, a)
	}
	m.docs[a], m.docs[b] = da, db
	return nil
}

func (m *mockDocumentStore) Unlink(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	da, okA := m.docs[a]
	db, okB := m.docs[b]
	if !okA || !okB {
		return domain.ErrNotFound
	}
	da.Links = slices.DeleteFunc(da.Links, func(id string) bool { return id == b })
	db.Links = slices.DeleteFunc(db.Links, func(id string) bool { return id == a })
	m.docs[a], m.docs[b] = da, db
	return nil
}

func (m *mockDocumentStore) Linked(_ context.Context, id string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := []domain.Document{}
	for _, l := range d.Links {
		if ld, ok := m.docs[l]; ok {
			out = append(out, ld)
		}
	}
	return out, nil
}

// mockSearchIndex records indexed documents in memory.
type mockSearchIndex struct {
	mu        sync.Mutex
	enabled   bool
	indexed   map[string]domain.IndexDocument
	indexErr  error
	failIDs   map[string]bool
	existsErr error
	results   []domain.SearchResult
	byQuery   map[string][]domain.SearchResult
	searchErr error
	chatReply string
	chatErr   error
	queries   []string
	calls     int
}

func newMockSearchIndex() *mockSearchIndex {
	return &mockSearchIndex{
		enabled: true,
		indexed: make(map[string]domain.IndexDocument),
		failIDs: make(map[string]bool),
	}
}

func (m *mockSearchIndex) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *mockSearchIndex) Index(_ context.Context, doc domain.IndexDocument) (domain.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.indexErr != nil {
		return domain.IndexResult{}, m.indexErr
	}
	if m.failIDs[doc.ExternalID] {
		return domain.IndexResult{Status: domain.IndexError, ExternalID: doc.ExternalID, Message: "rejected"}, nil
	}
	m.indexed[doc.ExternalID] = doc
	return domain.IndexResult{Status: domain.IndexSuccess, ExternalID: doc.ExternalID}, nil
}

func (m *mockSearchIndex) Exists(_ context.Context, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.indexed[externalID]
	return ok, nil
}

func (m *mockSearchIndex) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := m.results
	if r, ok := m.byQuery[query]; ok {
		out = r
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockSearchIndex) Chat(
	_ context.Context,
	messages []domain.ChatMessage,
	_ map[string]any,
) (domain.ChatResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(messages) > 0 {
		m.queries = append(m.queries, messages[len(messages)-1].Content)
	}
	if m.chatErr != nil {
		return domain.ChatResult{}, m.chatErr
	}
	return domain.ChatResult{Status: domain.IndexSuccess, Response: m.chatReply}, nil
}

func (m *mockSearchIndex) indexedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.indexed)
}

// mockIndexQueue is a FIFO queue with per-document merging.
type mockIndexQueue struct {
	mu   sync.Mutex
	jobs []domain.IndexJob
}

func (m *mockIndexQueue) Enqueue(_ context.Context, job domain.IndexJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.jobs {
		if m.jobs[i].DocumentID == job.DocumentID {
			m.jobs[i].ForceUpdate = m.jobs[i].ForceUpdate || job.ForceUpdate
			if job.Attempts > m.jobs[i].Attempts {
				m.jobs[i].Attempts = job.Attempts
			}
			return nil
		}
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockIndexQueue) Dequeue(_ context.Context, limit int) ([]domain.IndexJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.jobs) {
		limit = len(m.jobs)
	}
	out := append([]domain.IndexJob{}, m.jobs[:limit]...)
	m.jobs = m.jobs[limit:]
	return out, nil
}

func (m *mockIndexQueue) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs), nil
}

// mockTemplateSource serves templates from a map and counts loads.
type mockTemplateSource struct {
	mu        sync.Mutex
	templates map[string]*domain.Template
	malformed map[string]bool
	loads     map[string]int
}

func newMockTemplateSource(templates ...*domain.Template) *mockTemplateSource {
	m := &mockTemplateSource{
		templates: make(map[string]*domain.Template),
		malformed: make(map[string]bool),
		loads:     make(map[string]int),
	}
	for _, t := range templates {
		m.templates[t.Kind] = t
	}
	return m
}

func (m *mockTemplateSource) Load(_ context.Context, kind string) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[kind]++
	if m.malformed[kind] {
		return nil, domain.ErrTemplateMalformed
	}
	t, ok := m.templates[kind]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (m *mockTemplateSource) Kinds(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.templates)+len(m.malformed))
	for k := range m.templates {
		kinds = append(kinds, k)
	}
	for k := range m.malformed {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds, nil
}

func (m *mockTemplateSource) loadCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[kind]
}

// mockSchedulerStore keeps tasks and results in maps.
type mockSchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]*domain.ScheduledTask
	results map[string][]domain.TaskResult
	listErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task == nil {
		return domain.ErrInvalidInput
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return nil
}

func (m *mockSchedulerStore) resultCount(taskID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results[taskID])
}

// mockConfigStore is a flat key-value config store.
type mockConfigStore struct {
	mu     sync.Mutex
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	ss, _ := v.([]string)
	return ss
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "mock.toml" }

// errBoom is a generic failure for tests.
var errBoom = errors.New("boom")

// testTemplate returns a small template exercising every section shape.
func testTemplate() *domain.Template {
	return &domain.Template{
		Kind:         "pmd",
		Name:         "Product/Market Document",
		DocumentKind: domain.KindPMD,
		Sections: []domain.SectionSpec{
			{Key: domain.HeaderSectionKey, Render: "# {{product_name}} by {{author_name}}"},
			{Key: "overview", Title: "Overview", Required: true, Prompt: "Summarise the product"},
			{
				Key: "goals", Title: "Goals", Required: true, Type: domain.SectionList,
				MinItems: 2, MaxItems: 3, Format: "One line each", Examples: []string{"Grow retention"},
			},
			{
				Key: "market", Title: "Market",
				Subsections: []domain.Subsection{{Name: "Size"}, {Name: "Competitors", Prompt: "Who else?"}},
			},
			{Key: "appendix", Title: "Appendix", Optional: true},
		},
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
