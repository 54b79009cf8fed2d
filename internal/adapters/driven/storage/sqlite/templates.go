package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

var (
	_ driven.TemplateSource = (*TemplateStore)(nil)
	_ driven.TemplateWriter = (*TemplateStore)(nil)
)

// TemplateStore keeps custom templates as JSON rows.
type TemplateStore struct {
	store *Store
}

// Load returns the stored template for kind.
func (s *TemplateStore) Load(ctx context.Context, kind string) (*domain.Template, error) {
	var body string
	err := s.store.db.QueryRowContext(ctx, "SELECT body FROM templates WHERE kind = ?", kind).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", kind, err)
	}

	var t domain.Template
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTemplateMalformed, kind, err)
	}
	if t.Kind == "" {
		t.Kind = kind
	}
	return &t, nil
}

// Kinds lists stored template kinds in sorted order.
func (s *TemplateStore) Kinds(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT kind FROM templates ORDER BY kind")
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	kinds := []string{}
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("scanning template kind: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, rows.Err()
}

// SaveTemplate validates and upserts t.
func (s *TemplateStore) SaveTemplate(ctx context.Context, t *domain.Template) error {
	if t == nil {
		return domain.NewValidationError("template", "template is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshalling template: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO templates (kind, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, t.Kind, string(body), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving template %s: %w", t.Kind, err)
	}
	return nil
}
