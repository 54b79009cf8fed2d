// Package inkeep provides a SearchIndex adapter for the Inkeep semantic
// search and chat API.
package inkeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SearchIndex = (*Client)(nil)

var log = logger.For("inkeep")

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 10
)

// Config holds configuration for the Inkeep client.
type Config struct {
	// APIURL is the API base URL (default: domain.DefaultIndexAPIURL).
	APIURL string

	// APIKey authenticates every request.
	APIKey string

	// IntegrationID scopes requests to one knowledge base.
	IntegrationID string

	// RequestsPerSecond throttles outgoing calls (default: 5).
	RequestsPerSecond float64

	// Timeout bounds each HTTP request (default: 30s).
	Timeout time.Duration
}

// Client talks to the Inkeep REST API. A client without an API key or
// integration ID is disabled and never makes network calls.
type Client struct {
	http          *http.Client
	limiter       *rate.Limiter
	apiURL        string
	apiKey        string
	integrationID string
}

// NewClient creates an Inkeep client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = domain.DefaultIndexAPIURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		http:          &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
		apiURL:        strings.TrimRight(cfg.APIURL, "/"),
		apiKey:        cfg.APIKey,
		integrationID: cfg.IntegrationID,
	}
	if !c.Enabled() {
		log.Warn("integration disabled: missing API key or integration ID")
	}
	return c
}

// NewClientFromSettings creates a client from index settings.
func NewClientFromSettings(s domain.IndexSettings) *Client {
	return NewClient(Config{
		APIURL:        s.APIURL,
		APIKey:        s.APIKey,
		IntegrationID: s.IntegrationID,
	})
}

// Enabled reports whether both credentials are configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.integrationID != ""
}

type indexedDocument struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	URL         string         `json:"url,omitempty"`
	ContentType string         `json:"contentType"`
}

type indexRequest struct {
	IntegrationID string            `json:"integrationId"`
	Documents     []indexedDocument `json:"documents"`
}

// Index submits one document. A rejection by the API is reported as an
// IndexError result; only transport failures return an error.
func (c *Client) Index(ctx context.Context, doc domain.IndexDocument) (domain.IndexResult, error) {
	if !c.Enabled() {
		return domain.IndexResult{Status: domain.IndexDisabled, ExternalID: doc.ExternalID}, nil
	}

	body := indexRequest{
		IntegrationID: c.integrationID,
		Documents: []indexedDocument{{
			ID:          doc.ExternalID,
			Title:       doc.Title,
			Content:     doc.Markdown,
			Metadata:    doc.Metadata,
			URL:         doc.URL,
			ContentType: "markdown",
		}},
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/v1/index/documents", body)
	if err != nil {
		return domain.IndexResult{}, err
	}
	if status != http.StatusOK {
		log.Warn("index %s rejected: status %d", doc.ExternalID, status)
		return domain.IndexResult{
			Status:     domain.IndexError,
			ExternalID: doc.ExternalID,
			Message:    strings.TrimSpace(string(raw)),
		}, nil
	}

	log.Debug("indexed %s", doc.ExternalID)
	return domain.IndexResult{Status: domain.IndexSuccess, ExternalID: doc.ExternalID}, nil
}

// Exists reports whether externalID is already in the index.
func (c *Client) Exists(ctx context.Context, externalID string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	status, raw, err := c.do(ctx, http.MethodGet, "/v1/index/documents/"+url.PathEscape(externalID), nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("inkeep: exists %s: status %d: %s", externalID, status, strings.TrimSpace(string(raw)))
	}
}

type searchRequest struct {
	IntegrationID string         `json:"integrationId"`
	Query         string         `json:"query"`
	Limit         int            `json:"limit"`
	Filters       map[string]any `json:"filters,omitempty"`
}

type searchResponse struct {
	Results []struct {
		ID       string         `json:"id"`
		Title    string         `json:"title"`
		Snippet  string         `json:"snippet"`
		Score    float64        `json:"score"`
		URL      string         `json:"url"`
		Metadata map[string]any `json:"metadata"`
	} `json:"results"`
}

// Search runs a semantic query. Hits that cannot be traced back to a
// document are dropped.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if !c.Enabled() {
		return []domain.SearchResult{}, nil
	}

	body := searchRequest{
		IntegrationID: c.integrationID,
		Query:         query,
		Limit:         opts.Limit,
		Filters:       opts.Filters,
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/v1/search", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("inkeep: search: status %d: %s", status, strings.TrimSpace(string(raw)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("inkeep: decode search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		id := documentID(r.ID, r.Metadata)
		if id == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:      id,
			Title:   r.Title,
			Snippet: r.Snippet,
			Score:   r.Score,
			Kind:    stringField(r.Metadata, "type"),
			URL:     r.URL,
		})
	}
	return results, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	IntegrationID string         `json:"integrationId"`
	Messages      []chatMessage  `json:"messages"`
	Stream        bool           `json:"stream"`
	Context       map[string]any `json:"context,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Metadata map[string]any `json:"metadata"`
}

// Chat sends a non-streaming chat completion, optionally grounded by
// extra context.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage, grounding map[string]any) (domain.ChatResult, error) {
	if !c.Enabled() {
		return domain.ChatResult{Status: domain.IndexDisabled}, nil
	}

	body := chatRequest{
		IntegrationID: c.integrationID,
		Messages:      make([]chatMessage, len(messages)),
		Context:       grounding,
	}
	for i, m := range messages {
		body.Messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return domain.ChatResult{Status: domain.IndexError}, err
	}
	if status != http.StatusOK {
		return domain.ChatResult{Status: domain.IndexError},
			fmt.Errorf("inkeep: chat: status %d: %s", status, strings.TrimSpace(string(raw)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.ChatResult{Status: domain.IndexError}, fmt.Errorf("inkeep: decode chat response: %w", err)
	}

	res := domain.ChatResult{Status: domain.IndexSuccess, Metadata: decoded.Metadata}
	if len(decoded.Choices) > 0 {
		res.Response = decoded.Choices[0].Message.Content
	}
	return res, nil
}

// do sends one rate-limited JSON request and returns the status code and
// raw body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("inkeep: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("inkeep: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("inkeep: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("inkeep: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// documentID prefers the document_id recorded at index time and falls
// back to stripping the external prefix from the hit ID.
func documentID(hitID string, metadata map[string]any) string {
	if id := stringField(metadata, "document_id"); id != "" {
		return id
	}
	id, _ := domain.InternalID(hitID)
	return id
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
