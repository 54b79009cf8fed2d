package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps documents in process memory. Links live in an
// adjacency set separate from the documents, so both sides of a link
// always agree. Documents are copied on the way in and out.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]*domain.Document
	order []string
	links map[string]map[string]struct{}
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:  make(map[string]*domain.Document),
		links: make(map[string]map[string]struct{}),
	}
}

// Save creates or replaces doc. Its Links replace the stored links;
// IDs of documents that do not exist are dropped.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.NewValidationError("id", "document ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc.Clone()

	for other := range s.links[doc.ID] {
		s.unlink(doc.ID, other)
	}
	for _, other := range doc.Links {
		if _, ok := s.docs[other]; ok && other != doc.ID {
			s.link(doc.ID, other)
		}
	}
	return nil
}

// Get returns a copy of the document with its current links.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.snapshot(doc), nil
}

// Delete removes the document and every link touching it.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	for other := range s.links[id] {
		s.unlink(id, other)
	}
	delete(s.links, id)
	delete(s.docs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns matching documents in insertion order.
func (s *DocumentStore) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Document{}
	for _, id := range s.order {
		doc := s.docs[id]
		if filter.Matches(doc) {
			out = append(out, *s.snapshot(doc))
		}
	}
	return out, nil
}

// Link connects a and b in both directions.
func (s *DocumentStore) Link(_ context.Context, a, b string) error {
	if a == b {
		return domain.NewValidationError("link", "a document cannot link to itself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBoth(a, b); err != nil {
		return err
	}
	s.link(a, b)
	return nil
}

// Unlink removes the link between a and b. Unlinking documents that are
// not linked is a no-op.
func (s *DocumentStore) Unlink(_ context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBoth(a, b); err != nil {
		return err
	}
	s.unlink(a, b)
	return nil
}

// Linked returns the documents linked to id, sorted by ID.
func (s *DocumentStore) Linked(_ context.Context, id string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.docs[id]; !ok {
		return nil, domain.ErrNotFound
	}
	out := []domain.Document{}
	for _, other := range s.linkIDs(id) {
		out = append(out, *s.snapshot(s.docs[other]))
	}
	return out, nil
}

func (s *DocumentStore) requireBoth(a, b string) error {
	if _, ok := s.docs[a]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.docs[b]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

// link and unlink expect s.mu held for writing.
func (s *DocumentStore) link(a, b string) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		set, ok := s.links[pair[0]]
		if !ok {
			set = make(map[string]struct{})
			s.links[pair[0]] = set
		}
		set[pair[1]] = struct{}{}
	}
}

func (s *DocumentStore) unlink(a, b string) {
	delete(s.links[a], b)
	delete(s.links[b], a)
}

func (s *DocumentStore) linkIDs(id string) []string {
	ids := make([]string, 0, len(s.links[id]))
	for other := range s.links[id] {
		ids = append(ids, other)
	}
	sort.Strings(ids)
	return ids
}

func (s *DocumentStore) snapshot(doc *domain.Document) *domain.Document {
	c := doc.Clone()
	c.Links = s.linkIDs(doc.ID)
	return c
}
