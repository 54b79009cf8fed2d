package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// MetadataTemplateKey records the template a document was generated from.
const MetadataTemplateKey = "template"

// DocumentService manages stored documents and their links.
// There is no per-document locking; concurrent updates to one document
// resolve as last-write-wins in the store.
type DocumentService struct {
	docStore  driven.DocumentStore
	templates *TemplateStore
	indexer   *Indexer
}

// NewDocumentService creates a new document service.
// templates and indexer may be nil.
func NewDocumentService(docStore driven.DocumentStore, templates *TemplateStore, indexer *Indexer) *DocumentService {
	return &DocumentService{
		docStore:  docStore,
		templates: templates,
		indexer:   indexer,
	}
}

// Create stores a new document, assigning an ID and defaults when missing.
func (s *DocumentService) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("document: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return nil, domain.NewValidationError("title", "Title is required")
	}
	if !doc.Kind.IsValid() {
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown document kind %q", doc.Kind))
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Version == "" {
		doc.Version = domain.DefaultDocumentVersion
	}
	if doc.Status == "" {
		doc.Status = domain.StatusDraft
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.validate(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.docStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if s.indexer != nil {
		s.indexer.OnCreated(ctx, doc)
	}
	return doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.Get(ctx, documentID)
}

// List returns documents matching filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	return s.docStore.List(ctx, filter)
}

// Update applies changes to a stored document. Known fields are set on the
// document; any other key is recorded in its metadata.
func (s *DocumentService) Update(
	ctx context.Context,
	documentID string,
	changes domain.Changes,
) (*domain.Document, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no changes given", domain.ErrInvalidInput)
	}

	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	for _, field := range changes.Fields() {
		if err := applyChange(doc, field, changes[field]); err != nil {
			return nil, err
		}
	}
	doc.UpdatedAt = time.Now()

	if err := s.validate(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.docStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if s.indexer != nil {
		s.indexer.OnUpdated(ctx, doc, changes)
	}
	return doc, nil
}

// applyChange sets one field on doc from a loosely typed value.
func applyChange(doc *domain.Document, field string, value any) error {
	switch field {
	case "title":
		title, _ := value.(string)
		if strings.TrimSpace(title) == "" {
			return domain.NewValidationError("title", "Title must be a non-empty string")
		}
		doc.Title = title
	case "summary":
		doc.Summary = fmt.Sprint(value)
	case "version":
		doc.Version = fmt.Sprint(value)
	case "status":
		status, err := domain.ParseDocumentStatus(fmt.Sprint(value))
		if err != nil {
			return err
		}
		doc.Status = status
	case "kind":
		kind, err := domain.ParseDocumentKind(fmt.Sprint(value))
		if err != nil {
			return err
		}
		doc.Kind = kind
	case "tags":
		doc.Tags = nil
		for _, t := range toStrings(value) {
			doc.AddTag(t)
		}
	case "content":
		return applyContent(doc, value)
	default:
		if doc.Metadata == nil {
			doc.Metadata = map[string]any{}
		}
		doc.Metadata[field] = value
	}
	return nil
}

// applyContent replaces whole content or sets individual sections.
func applyContent(doc *domain.Document, value any) error {
	switch v := value.(type) {
	case domain.Content:
		doc.Content = v
	case map[string]string:
		for k, text := range v {
			doc.Content.Set(k, domain.TextValue(text))
		}
	case map[string]any:
		for k, raw := range v {
			switch sv := raw.(type) {
			case domain.SectionValue:
				doc.Content.Set(k, sv)
			case string:
				doc.Content.Set(k, domain.TextValue(sv))
			default:
				doc.Content.Set(k, domain.ListValue(toStrings(sv)))
			}
		}
	default:
		return domain.NewValidationError("content", fmt.Sprintf("unsupported content value %T", value))
	}
	return nil
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// Delete removes a document and its links.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := s.docStore.Delete(ctx, documentID); err != nil {
		return err
	}
	if s.indexer != nil {
		s.indexer.OnDeleted(ctx, documentID)
	}
	return nil
}

// Link links two documents in both directions.
func (s *DocumentService) Link(ctx context.Context, a, b string) error {
	if a == b {
		return fmt.Errorf("%w: a document cannot link to itself", domain.ErrInvalidInput)
	}
	return s.docStore.Link(ctx, a, b)
}

// Unlink removes the link between two documents.
func (s *DocumentService) Unlink(ctx context.Context, a, b string) error {
	return s.docStore.Unlink(ctx, a, b)
}

// Linked returns the documents linked to documentID.
func (s *DocumentService) Linked(ctx context.Context, documentID string) ([]domain.Document, error) {
	return s.docStore.Linked(ctx, documentID)
}

// validate checks doc against its governing template. Documents whose
// template cannot be loaded are accepted as-is.
func (s *DocumentService) validate(ctx context.Context, doc *domain.Document) error {
	if s.templates == nil {
		return nil
	}
	kind := templateKindFor(doc)
	tpl, err := s.templates.Load(ctx, kind)
	if errors.Is(err, domain.ErrTemplateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return doc.ValidateAgainst(tpl)
}

// templateKindFor returns the template recorded on doc, or its kind.
func templateKindFor(doc *domain.Document) string {
	if t, ok := doc.Metadata[MetadataTemplateKey].(string); ok && t != "" {
		return t
	}
	return doc.Kind.String()
}
