package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// reindexFields are the document fields whose change requires re-indexing.
var reindexFields = []string{"title", "content", "summary", "status", "kind"}

var indexLog = logger.For("indexer")

// ShouldReindex reports whether changes touch any indexed field.
func ShouldReindex(changes domain.Changes) bool {
	for _, f := range reindexFields {
		if changes.Has(f) {
			return true
		}
	}
	return false
}

// Indexer keeps the search index in step with stored documents.
//
// Document lifecycle hooks only enqueue jobs; an IndexWorker delivers them.
// When no queue is configured the hooks index inline and log failures.
type Indexer struct {
	docs     driven.DocumentStore
	index    driven.SearchIndex
	queue    driven.IndexQueue
	onCreate bool
}

// NewIndexer creates an indexer. index and queue may be nil.
func NewIndexer(docs driven.DocumentStore, index driven.SearchIndex, queue driven.IndexQueue, onCreate bool) *Indexer {
	return &Indexer{
		docs:     docs,
		index:    index,
		queue:    queue,
		onCreate: onCreate,
	}
}

// Enabled reports whether a configured index is attached.
func (i *Indexer) Enabled() bool {
	return i.index != nil && i.index.Enabled()
}

// OnCreated schedules a new document for indexing when auto-indexing is on
// and the document is a draft or approved.
func (i *Indexer) OnCreated(ctx context.Context, doc *domain.Document) {
	if !i.onCreate || !i.Enabled() {
		return
	}
	if doc.Status != domain.StatusDraft && doc.Status != domain.StatusApproved {
		return
	}
	i.schedule(ctx, doc, false)
}

// OnUpdated schedules a forced re-index when changes touch an indexed field.
// A status change to approved is covered because status is indexed.
func (i *Indexer) OnUpdated(ctx context.Context, doc *domain.Document, changes domain.Changes) {
	if !i.Enabled() || !ShouldReindex(changes) {
		return
	}
	i.schedule(ctx, doc, true)
}

// OnDeleted records a deletion. The index offers no removal call, so the
// external entry stays until the index expires it.
func (i *Indexer) OnDeleted(_ context.Context, id string) {
	if !i.Enabled() {
		return
	}
	indexLog.Info("document %s deleted; index entry %s left in place", id, domain.ExternalID(id))
}

func (i *Indexer) schedule(ctx context.Context, doc *domain.Document, force bool) {
	if i.queue == nil {
		if _, err := i.IndexDocument(ctx, doc, force); err != nil {
			indexLog.Warn("indexing %s failed: %v", doc.ID, err)
		}
		return
	}

	job := domain.IndexJob{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		ForceUpdate: force,
		EnqueuedAt:  time.Now(),
	}
	if err := i.queue.Enqueue(ctx, job); err != nil {
		indexLog.Warn("queueing %s failed: %v", doc.ID, err)
	}
}

// IndexDocument submits doc to the index. Without force, a document that
// already exists is left alone and reported as IndexExists.
func (i *Indexer) IndexDocument(ctx context.Context, doc *domain.Document, force bool) (domain.IndexResult, error) {
	ext := domain.ExternalID(doc.ID)
	if !i.Enabled() {
		return domain.IndexResult{Status: domain.IndexDisabled, ExternalID: ext}, nil
	}

	if !force {
		exists, err := i.index.Exists(ctx, ext)
		if err != nil {
			return domain.IndexResult{Status: domain.IndexError, ExternalID: ext, Message: err.Error()},
				fmt.Errorf("checking %s: %w", ext, err)
		}
		if exists {
			return domain.IndexResult{Status: domain.IndexExists, ExternalID: ext}, nil
		}
	}

	res, err := i.index.Index(ctx, NewIndexDocument(doc))
	if err != nil {
		return domain.IndexResult{Status: domain.IndexError, ExternalID: ext, Message: err.Error()},
			fmt.Errorf("indexing %s: %w", ext, err)
	}
	if res.ExternalID == "" {
		res.ExternalID = ext
	}
	return res, nil
}

// IndexAll indexes every document matching filter, approved documents by
// default. Per-document failures are counted, not returned.
func (i *Indexer) IndexAll(ctx context.Context, filter domain.BulkFilter) (domain.BulkIndexResult, error) {
	status := filter.Status
	if status == "" {
		status = domain.StatusApproved
	}

	docs, err := i.docs.List(ctx, domain.DocumentFilter{Kind: filter.Kind, Status: status})
	if err != nil {
		return domain.BulkIndexResult{}, fmt.Errorf("listing documents: %w", err)
	}

	result := domain.BulkIndexResult{Total: len(docs)}
	for idx := range docs {
		doc := &docs[idx]
		res, err := i.IndexDocument(ctx, doc, filter.Force)
		switch {
		case err != nil || res.Status == domain.IndexError:
			indexLog.Warn("bulk index of %s failed: %v", doc.ID, err)
			result.Failed++
		case res.Status == domain.IndexSuccess:
			result.Indexed++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

// Sync indexes approved documents that are missing from the index.
func (i *Indexer) Sync(ctx context.Context) (domain.SyncResult, error) {
	var result domain.SyncResult
	if !i.Enabled() {
		return result, nil
	}

	docs, err := i.docs.List(ctx, domain.DocumentFilter{Status: domain.StatusApproved})
	if err != nil {
		return result, fmt.Errorf("listing documents: %w", err)
	}

	for idx := range docs {
		result.Checked++
		res, err := i.IndexDocument(ctx, &docs[idx], false)
		switch {
		case err != nil || res.Status == domain.IndexError:
			result.Failed++
		case res.Status == domain.IndexSuccess:
			result.NewlyIndexed++
		}
	}
	return result, nil
}
