package domain

import (
	"strings"
	"time"
)

// ExternalIDPrefix is prepended to document IDs in the external index.
const ExternalIDPrefix = "pma_"

// ExternalID maps an internal document ID to its index identifier.
func ExternalID(id string) string {
	return ExternalIDPrefix + id
}

// InternalID recovers the document ID from an index identifier.
// The second result is false when ext does not carry the prefix.
func InternalID(ext string) (string, bool) {
	if !strings.HasPrefix(ext, ExternalIDPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ext, ExternalIDPrefix), true
}

// IndexStatus is the outcome of submitting a document to the index.
type IndexStatus string

// Index outcomes.
const (
	IndexSuccess  IndexStatus = "success"
	IndexExists   IndexStatus = "exists"
	IndexError    IndexStatus = "error"
	IndexDisabled IndexStatus = "disabled"
)

// IndexDocument is what the index receives for one document.
type IndexDocument struct {
	ExternalID string
	Title      string
	Markdown   string
	URL        string
	Metadata   map[string]any
}

// IndexResult reports the outcome of indexing one document.
type IndexResult struct {
	Status     IndexStatus
	ExternalID string
	Message    string
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Filters are passed through to the index.
	Filters map[string]any
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// ID is the internal document ID.
	ID string

	// Title is the document title.
	Title string

	// Snippet is the matched text.
	Snippet string

	// Score is the relevance score.
	Score float64

	// Kind is the document kind recorded at index time.
	Kind string

	// URL links to the document.
	URL string
}

// ChatMessage is one message in an index chat exchange.
type ChatMessage struct {
	Role    Role
	Content string
}

// ChatResult is the reply from the index chat capability.
type ChatResult struct {
	Status   IndexStatus
	Response string
	Metadata map[string]any
}

// BulkIndexResult aggregates a bulk index run.
type BulkIndexResult struct {
	Total   int
	Indexed int
	Skipped int
	Failed  int
}

// SyncResult aggregates a sync run against the index.
type SyncResult struct {
	Checked      int
	NewlyIndexed int
	Failed       int
}

// ContentReview is the index's feedback on a piece of content.
type ContentReview struct {
	Status      IndexStatus
	Issues      []string
	Suggestions []string
}

// CrossReference is a related document found for a source document.
type CrossReference struct {
	DocumentID string
	Title      string
	Kind       string
	Score      float64
	URL        string
}

// IndexJob is a queued request to index one document.
type IndexJob struct {
	// ID identifies the job in the queue.
	ID string

	// DocumentID is the internal document ID.
	DocumentID string

	// ForceUpdate re-indexes even when the document already exists.
	ForceUpdate bool

	// Attempts counts failed deliveries.
	Attempts int

	// EnqueuedAt is when the job was first queued.
	EnqueuedAt time.Time
}

// BulkFilter selects documents for a bulk index run.
type BulkFilter struct {
	// Kind restricts the run to one document kind; empty means all kinds.
	Kind DocumentKind

	// Status restricts the run to one status; empty means StatusApproved.
	Status DocumentStatus

	// Force re-indexes documents that already exist.
	Force bool
}
