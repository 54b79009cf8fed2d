package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultDocumentVersion is assigned to new documents.
const DefaultDocumentVersion = "1.0.0"

// DocumentKind identifies what sort of product document a Document is.
type DocumentKind string

// Supported document kinds.
const (
	KindPMD    DocumentKind = "pmd"
	KindSpec   DocumentKind = "spec"
	KindPRD    DocumentKind = "prd"
	KindDesign DocumentKind = "design"
	KindOther  DocumentKind = "other"
)

// IsValid returns true if the kind is recognised.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindPMD, KindSpec, KindPRD, KindDesign, KindOther:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k DocumentKind) String() string {
	return string(k)
}

// Label returns the short upper-case label used in prompts ("PMD", "SPEC").
func (k DocumentKind) Label() string {
	return strings.ToUpper(string(k))
}

// ParseDocumentKind parses a kind case-insensitively.
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", NewValidationError("kind", "unknown document kind "+s)
	}
	return k, nil
}

// DocumentStatus is the review lifecycle state of a Document.
type DocumentStatus string

// Document lifecycle states.
const (
	StatusDraft    DocumentStatus = "draft"
	StatusInReview DocumentStatus = "in_review"
	StatusApproved DocumentStatus = "approved"
	StatusArchived DocumentStatus = "archived"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusApproved, StatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// ParseDocumentStatus parses a status case-insensitively.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	st := DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", NewValidationError("status", "unknown document status "+s)
	}
	return st, nil
}

// Document is a structured product document.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Kind is the document kind (PMD, SPEC, ...).
	Kind DocumentKind

	// Title is the human-readable title.
	Title string

	// Version is a free-form version string, "1.0.0" by default.
	Version string

	// Status is the review lifecycle state.
	Status DocumentStatus

	// Content holds the section values in template order.
	Content Content

	// Summary is a short plain-text description.
	Summary string

	// Tags is a sorted set of labels.
	Tags []string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// Links holds the IDs of linked documents.
	// Links are symmetric; stores keep both sides in step.
	Links []string

	// CreatedAt is when the document was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// NewDocument creates a draft document with default version.
func NewDocument(id string, kind DocumentKind, title string) *Document {
	now := time.Now()
	return &Document{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Version:   DefaultDocumentVersion,
		Status:    StatusDraft,
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no slices or maps with d.
// Metadata values are copied shallowly.
func (d *Document) Clone() *Document {
	c := *d
	c.Content = d.Content.Clone()
	c.Tags = slices.Clone(d.Tags)
	c.Links = slices.Clone(d.Links)
	c.Metadata = maps.Clone(d.Metadata)
	return &c
}

// AddTag adds a tag, keeping Tags sorted and unique.
func (d *Document) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	i, found := slices.BinarySearch(d.Tags, tag)
	if found {
		return
	}
	d.Tags = slices.Insert(d.Tags, i, tag)
}

// IsLinkedTo reports whether the document links to id.
func (d *Document) IsLinkedTo(id string) bool {
	return slices.Contains(d.Links, id)
}

// ValidateAgainst checks the document content against its template.
// Content keys must be template sections; approved documents must have
// every required section filled in.
func (d *Document) ValidateAgainst(t *Template) error {
	if t == nil {
		return nil
	}
	for _, s := range d.Content {
		if _, ok := t.Section(s.Key); !ok {
			return NewValidationError(s.Key, "section is not part of the "+t.Kind+" template")
		}
	}
	if d.Status != StatusApproved {
		return nil
	}
	for _, key := range t.RequiredKeys() {
		v, ok := d.Content.Get(key)
		if !ok || v.IsEmpty() {
			return NewValidationError(key, "required section is empty on an approved document")
		}
	}
	return nil
}

// DocumentFilter narrows a document listing.
// Zero values match everything.
type DocumentFilter struct {
	Kind   DocumentKind
	Status DocumentStatus
}

// Matches reports whether doc passes the filter.
func (f DocumentFilter) Matches(doc *Document) bool {
	if f.Kind != "" && doc.Kind != f.Kind {
		return false
	}
	if f.Status != "" && doc.Status != f.Status {
		return false
	}
	return true
}

// Changes records the fields touched by an edit, keyed by field name.
type Changes map[string]any

// Fields returns the touched field names in sorted order.
func (c Changes) Fields() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Has reports whether field was touched.
func (c Changes) Has(field string) bool {
	_, ok := c[field]
	return ok
}
