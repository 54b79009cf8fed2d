package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	defaultSearchLimit  = 10
	maxSuggestions      = 5
	maxCrossReferences  = 10
	crossRefQueryLimit  = 5
	similarContentLimit = 500
)

// SearchService wraps the external index with document-aware helpers.
type SearchService struct {
	docStore driven.DocumentStore
	index    driven.SearchIndex
}

// NewSearchService creates a new search service. index may be nil.
func NewSearchService(docStore driven.DocumentStore, index driven.SearchIndex) *SearchService {
	return &SearchService{
		docStore: docStore,
		index:    index,
	}
}

func (s *SearchService) enabled() bool {
	return s.index != nil && s.index.Enabled()
}

// Search runs a semantic query. A disabled index or empty query returns
// no results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" || !s.enabled() {
		return []domain.SearchResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchLimit
	}

	results, err := s.index.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Search returned %d results", len(results))
	return results, nil
}

// Chat forwards a conversation to the index chat capability.
func (s *SearchService) Chat(
	ctx context.Context, messages []domain.ChatMessage, grounding map[string]any,
) (domain.ChatResult, error) {
	if !s.enabled() {
		return domain.ChatResult{Status: domain.IndexDisabled}, nil
	}
	if len(messages) == 0 {
		return domain.ChatResult{}, fmt.Errorf("%w: no messages", domain.ErrInvalidInput)
	}
	return s.index.Chat(ctx, messages, grounding)
}

// Suggestions asks the index for up to five improvements to content.
func (s *SearchService) Suggestions(
	ctx context.Context, content string, kind domain.DocumentKind,
) ([]string, error) {
	if !s.enabled() || strings.TrimSpace(content) == "" {
		return []string{}, nil
	}

	prompt := fmt.Sprintf(
		"Based on similar %s documents, suggest up to %d improvements for the following content. "+
			"Answer as a bulleted list.\n\n%s",
		kind.Label(), maxSuggestions, content,
	)
	res, err := s.ask(ctx, prompt)
	if err != nil || res.Status == domain.IndexDisabled {
		return []string{}, err
	}
	return ParseSuggestions(res.Response, maxSuggestions), nil
}

// ValidateContent asks the index to review content against similar documents.
func (s *SearchService) ValidateContent(
	ctx context.Context, content string, kind domain.DocumentKind,
) (domain.ContentReview, error) {
	if !s.enabled() {
		return domain.ContentReview{Status: domain.IndexDisabled}, nil
	}

	prompt := fmt.Sprintf(
		"Review the following %s content for completeness and consistency.\n"+
			"List problems under an \"Issues\" heading and improvements under a \"Suggestions\" heading.\n\n%s",
		kind.Label(), content,
	)
	res, err := s.ask(ctx, prompt)
	if err != nil {
		return domain.ContentReview{Status: domain.IndexError}, err
	}
	if res.Status == domain.IndexDisabled {
		return domain.ContentReview{Status: domain.IndexDisabled}, nil
	}

	issues, suggestions := ParseValidationFeedback(res.Response)
	return domain.ContentReview{
		Status:      domain.IndexSuccess,
		Issues:      issues,
		Suggestions: suggestions,
	}, nil
}

func (s *SearchService) ask(ctx context.Context, prompt string) (domain.ChatResult, error) {
	res, err := s.index.Chat(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return res, fmt.Errorf("index chat: %w", err)
	}
	return res, nil
}

// SimilarDocuments searches with doc's title and summary, excluding doc itself.
func (s *SearchService) SimilarDocuments(
	ctx context.Context, doc *domain.Document, limit int,
) ([]domain.SearchResult, error) {
	if doc == nil || !s.enabled() {
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := doc.Title
	if doc.Summary != "" {
		query += " " + truncate(doc.Summary, similarContentLimit)
	}

	// One extra in case doc matches itself.
	results, err := s.Search(ctx, query, domain.SearchOptions{Limit: limit + 1})
	if err != nil {
		return nil, err
	}

	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.ID == doc.ID {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CrossReferences searches with the document's title, summary and tags,
// and returns the best ten distinct hits other than the document itself.
func (s *SearchService) CrossReferences(ctx context.Context, documentID string) ([]domain.CrossReference, error) {
	if !s.enabled() {
		return []domain.CrossReference{}, nil
	}

	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	queries := []string{doc.Title}
	if doc.Summary != "" {
		queries = append(queries, truncate(doc.Summary, similarContentLimit))
	}
	queries = append(queries, doc.Tags...)

	best := make(map[string]domain.CrossReference)
	for _, q := range queries {
		results, err := s.Search(ctx, q, domain.SearchOptions{Limit: crossRefQueryLimit})
		if err != nil {
			logger.Warn("Cross-reference query %q failed: %v", q, err)
			continue
		}
		for _, r := range results {
			if r.ID == "" || r.ID == doc.ID {
				continue
			}
			if prev, ok := best[r.ID]; ok && prev.Score >= r.Score {
				continue
			}
			best[r.ID] = domain.CrossReference{
				DocumentID: r.ID,
				Title:      r.Title,
				Kind:       r.Kind,
				Score:      r.Score,
				URL:        r.URL,
			}
		}
	}

	refs := make([]domain.CrossReference, 0, len(best))
	for _, ref := range best {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Score != refs[j].Score {
			return refs[i].Score > refs[j].Score
		}
		return refs[i].DocumentID < refs[j].DocumentID
	})
	if len(refs) > maxCrossReferences {
		refs = refs[:maxCrossReferences]
	}
	return refs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
