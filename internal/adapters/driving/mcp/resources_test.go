package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "docsmith://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "docsmith://documents/doc-456/links",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTemplatesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil template service returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleTemplatesResource(ctx, makeReadResourceRequest("docsmith://templates"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns templates", func(t *testing.T) {
		server := newTestServer(t, &Ports{Templates: &mockTemplateService{
			infos: []domain.TemplateInfo{{Kind: "agile", Name: "Agile Epic", SectionCount: 6}},
		}})

		result, err := server.handleTemplatesResource(ctx, makeReadResourceRequest("docsmith://templates"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "agile")
		assert.Contains(t, result.Contents[0].Text, "Agile Epic")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Templates: &mockTemplateService{err: errors.New("disk error")}})

		_, err := server.handleTemplatesResource(ctx, makeReadResourceRequest("docsmith://templates"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing templates")
	})
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docsmith://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents with resource URIs", func(t *testing.T) {
		docs := &mockDocumentService{
			documents: []domain.Document{
				{ID: "doc-1", Kind: domain.KindPMD, Title: "Planner", Status: domain.StatusApproved, Links: []string{"doc-2"}},
				{ID: "doc-2", Kind: domain.KindSpec, Title: "Planner Spec", Status: domain.StatusDraft},
			},
		}
		server := newTestServer(t, &Ports{Documents: docs})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docsmith://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "doc-1"`)
		assert.Contains(t, text, `"status": "approved"`)
		assert.Contains(t, text, `"uri": "docsmith://documents/doc-2"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: &mockDocumentService{err: errors.New("database error")}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docsmith://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docsmith://documents/doc-1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: &mockDocumentService{}})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docsmith://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("returns document markdown", func(t *testing.T) {
		var content domain.Content
		content.Set("overview", domain.TextValue("Weekly planning for small teams."))
		docs := &mockDocumentService{document: &domain.Document{
			ID:      "doc-1",
			Title:   "Planner",
			Summary: "Team planner.",
			Content: content,
		}}
		server := newTestServer(t, &Ports{Documents: docs})

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docsmith://documents/doc-1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Equal(t, "# Planner\n\nTeam planner.\n\n## overview\n\nWeekly planning for small teams.",
			result.Contents[0].Text)
	})

	t.Run("returns error on get failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Documents: &mockDocumentService{err: domain.ErrNotFound}})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docsmith://documents/doc-123"))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "getting document")
	})
}
