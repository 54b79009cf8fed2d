package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, kind, title, version, status, summary, content, tags, metadata, created_at, updated_at`

// Save upserts the document and replaces its links with doc.Links.
// Link targets that do not exist are dropped.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.NewValidationError("id", "document ID is required")
	}

	content, err := marshalJSON(doc.Content, "{}")
	if err != nil {
		return fmt.Errorf("marshalling content: %w", err)
	}
	tags, err := marshalJSON(doc.Tags, "[]")
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	metadata, err := marshalJSON(doc.Metadata, "{}")
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	return s.store.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				title = excluded.title,
				version = excluded.version,
				status = excluded.status,
				summary = excluded.summary,
				content = excluded.content,
				tags = excluded.tags,
				metadata = excluded.metadata,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
		`, doc.ID, string(doc.Kind), doc.Title, doc.Version, string(doc.Status), doc.Summary,
			content, tags, metadata, formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
		if err != nil {
			return fmt.Errorf("saving document: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM document_links WHERE low_id = ? OR high_id = ?", doc.ID, doc.ID); err != nil {
			return fmt.Errorf("clearing links: %w", err)
		}
		for _, other := range doc.Links {
			if other == doc.ID {
				continue
			}
			low, high := linkPair(doc.ID, other)
			// The SELECT guard drops targets that are not stored.
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO document_links (low_id, high_id)
				SELECT ?, ? WHERE EXISTS (SELECT 1 FROM documents WHERE id = ?)
			`, low, high, other)
			if err != nil {
				return fmt.Errorf("saving link %s: %w", other, err)
			}
		}
		return nil
	})
}

// Get retrieves a document by ID with its links.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Links, err = s.linkIDs(ctx, id); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document; its links cascade.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns matching documents in insertion order.
func (s *documentStore) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	var (
		where []string
		args  []any
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := "SELECT " + documentColumns + " FROM documents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	return s.query(ctx, query, args...)
}

// Link records a link between two stored documents.
func (s *documentStore) Link(ctx context.Context, a, b string) error {
	if a == b {
		return domain.NewValidationError("link", "a document cannot link to itself")
	}
	if err := s.requireBoth(ctx, a, b); err != nil {
		return err
	}
	low, high := linkPair(a, b)
	_, err := s.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO document_links (low_id, high_id) VALUES (?, ?)", low, high)
	if err != nil {
		return fmt.Errorf("linking documents: %w", err)
	}
	return nil
}

// Unlink removes the link between two documents, if any.
func (s *documentStore) Unlink(ctx context.Context, a, b string) error {
	if err := s.requireBoth(ctx, a, b); err != nil {
		return err
	}
	low, high := linkPair(a, b)
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM document_links WHERE low_id = ? AND high_id = ?", low, high)
	if err != nil {
		return fmt.Errorf("unlinking documents: %w", err)
	}
	return nil
}

// Linked returns the documents linked to id, ordered by ID.
func (s *documentStore) Linked(ctx context.Context, id string) ([]domain.Document, error) {
	if err := s.requireBoth(ctx, id, id); err != nil {
		return nil, err
	}
	return s.query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE id IN (
			SELECT high_id FROM document_links WHERE low_id = ?
			UNION
			SELECT low_id FROM document_links WHERE high_id = ?
		)
		ORDER BY id
	`, id, id)
}

func (s *documentStore) query(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	rows.Close()

	for i := range docs {
		if docs[i].Links, err = s.linkIDs(ctx, docs[i].ID); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *documentStore) linkIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT high_id FROM document_links WHERE low_id = ?
		UNION
		SELECT low_id FROM document_links WHERE high_id = ?
		ORDER BY 1
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var other string
		if err := rows.Scan(&other); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		ids = append(ids, other)
	}
	return ids, rows.Err()
}

func (s *documentStore) requireBoth(ctx context.Context, a, b string) error {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE id IN (?, ?)", a, b).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking documents: %w", err)
	}
	want := 2
	if a == b {
		want = 1
	}
	if n < want {
		return domain.ErrNotFound
	}
	return nil
}

func linkPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc                     domain.Document
		kind, status            string
		content, tags, metadata string
		createdAt, updatedAt    string
	)
	if err := row.Scan(&doc.ID, &kind, &doc.Title, &doc.Version, &status, &doc.Summary,
		&content, &tags, &metadata, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Kind = domain.DocumentKind(kind)
	doc.Status = domain.DocumentStatus(status)
	if err := json.Unmarshal([]byte(content), &doc.Content); err != nil {
		return nil, fmt.Errorf("unmarshalling content of %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags of %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata of %s: %w", doc.ID, err)
	}
	if len(doc.Tags) == 0 {
		doc.Tags = nil
	}
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return &doc, nil
}
