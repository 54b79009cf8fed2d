package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure TemplateStore implements the interface.
var _ driving.TemplateService = (*TemplateStore)(nil)

// TemplateStore caches templates loaded from a TemplateSource.
//
// Each kind is written to the cache at most once and never invalidated;
// template sources are static for the process lifetime. Reads are safe
// from any number of goroutines.
type TemplateStore struct {
	source driven.TemplateSource

	mu    sync.RWMutex
	cache map[string]*domain.Template
}

// NewTemplateStore creates a template cache over source.
func NewTemplateStore(source driven.TemplateSource) *TemplateStore {
	return &TemplateStore{
		source: source,
		cache:  make(map[string]*domain.Template),
	}
}

// Load returns the template for kind, loading it on first use.
// A malformed source is logged and reported as a not-found template.
func (s *TemplateStore) Load(ctx context.Context, kind string) (*domain.Template, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))

	s.mu.RLock()
	if t, ok := s.cache[kind]; ok {
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	if s.source == nil {
		return nil, fmt.Errorf("template %q: %w", kind, domain.ErrTemplateNotFound)
	}

	// Load without holding the lock
	t, err := s.source.Load(ctx, kind)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateMalformed) {
			logger.Warn("template %q is malformed: %v", kind, err)
		}
		return nil, fmt.Errorf("template %q: %w", kind, err)
	}
	if err := t.Validate(); err != nil {
		logger.Warn("template %q is invalid: %v", kind, err)
		return nil, fmt.Errorf("template %q: %w: %w", kind, domain.ErrTemplateMalformed, err)
	}

	// First writer wins; later loads of the same kind reuse its value
	s.mu.Lock()
	if existing, ok := s.cache[kind]; ok {
		t = existing
	} else {
		s.cache[kind] = t
	}
	s.mu.Unlock()

	return t, nil
}

// Sections returns the section specs for kind in order.
func (s *TemplateStore) Sections(ctx context.Context, kind string) ([]domain.SectionSpec, error) {
	t, err := s.Load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return t.Sections, nil
}

// RequiredSections returns the keys of required sections for kind.
func (s *TemplateStore) RequiredSections(ctx context.Context, kind string) ([]string, error) {
	t, err := s.Load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return t.RequiredKeys(), nil
}

// Available lists every template the source offers.
// Templates that fail to load are skipped.
func (s *TemplateStore) Available(ctx context.Context) ([]domain.TemplateInfo, error) {
	if s.source == nil {
		return nil, nil
	}
	kinds, err := s.source.Kinds(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	infos := make([]domain.TemplateInfo, 0, len(kinds))
	for _, kind := range kinds {
		t, err := s.Load(ctx, kind)
		if err != nil {
			continue
		}
		infos = append(infos, t.Info())
	}
	return infos, nil
}

// ValidateTemplateData checks user-supplied section text against the
// required sections of kind.
func (s *TemplateStore) ValidateTemplateData(
	ctx context.Context,
	kind string,
	data map[string]string,
) domain.TemplateDataReport {
	sections, err := s.Sections(ctx, kind)
	if err != nil {
		return domain.TemplateDataReport{
			Errors: []string{fmt.Sprintf("Template %s not found", kind)},
		}
	}

	var missing []string
	for _, sec := range sections {
		if !sec.Required {
			continue
		}
		if strings.TrimSpace(data[sec.Key]) == "" {
			title := sec.Title
			if title == "" {
				title = sec.Key
			}
			missing = append(missing, title)
		}
	}

	var errs []string
	if len(missing) > 0 {
		errs = append(errs, "Missing required sections: "+strings.Join(missing, ", "))
	}

	return domain.TemplateDataReport{
		Errors:          errs,
		MissingRequired: missing,
		IsValid:         len(errs) == 0,
	}
}

// LayeredSource consults its sources in order; the first source that has a
// kind wins. A malformed template stops the search rather than falling
// through to a lower layer.
type LayeredSource []driven.TemplateSource

var _ driven.TemplateSource = LayeredSource(nil)

// Load returns the template for kind from the first source that has it.
func (l LayeredSource) Load(ctx context.Context, kind string) (*domain.Template, error) {
	for _, src := range l {
		if src == nil {
			continue
		}
		t, err := src.Load(ctx, kind)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, domain.ErrTemplateMalformed) || !errors.Is(err, domain.ErrTemplateNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, kind)
}

// Kinds returns the sorted union of every source's kinds.
func (l LayeredSource) Kinds(ctx context.Context) ([]string, error) {
	var kinds []string
	for _, src := range l {
		if src == nil {
			continue
		}
		k, err := src.Kinds(ctx)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k...)
	}
	slices.Sort(kinds)
	return slices.Compact(kinds), nil
}
