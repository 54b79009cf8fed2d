package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// ToMarkdown renders document content for the search index.
//
// Each section becomes a level-2 heading with underscores replaced by
// spaces and words title-cased. Keyed entries become level-3 headings,
// list items become dash bullets and text is written verbatim. Section
// order is preserved.
func ToMarkdown(content domain.Content) string {
	var b strings.Builder
	for _, sec := range content {
		b.WriteString("## ")
		b.WriteString(headingTitle(sec.Key))
		b.WriteString("\n\n")

		switch sec.Value.Kind {
		case domain.ValueList:
			for _, item := range sec.Value.Items {
				b.WriteString("- ")
				b.WriteString(item)
				b.WriteString("\n")
			}
		case domain.ValueKeyed:
			for _, e := range sec.Value.Entries {
				b.WriteString("### ")
				b.WriteString(headingTitle(e.Key))
				b.WriteString("\n")
				b.WriteString(e.Value)
				b.WriteString("\n\n")
			}
		default:
			b.WriteString(sec.Value.Text)
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}
	return b.String()
}

// headingTitle turns a section key into a title-cased heading. A letter
// is upper-cased when it follows a non-letter, so "non-functional" becomes
// "Non-Functional".
func headingTitle(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		prevLetter := false
		for _, r := range w {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = unicode.IsLetter(r)
		}
	}
	return b.String()
}

// IndexMetadata builds the metadata attached to a document in the index.
// Core keys take precedence over document metadata.
func IndexMetadata(doc *domain.Document) map[string]any {
	meta := make(map[string]any, len(doc.Metadata)+6)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta["document_id"] = doc.ID
	meta["type"] = doc.Kind.String()
	meta["status"] = doc.Status.String()
	meta["version"] = doc.Version
	meta["created_at"] = doc.CreatedAt.UTC().Format(time.RFC3339)
	meta["updated_at"] = doc.UpdatedAt.UTC().Format(time.RFC3339)
	return meta
}

// NewIndexDocument prepares doc for submission to the index.
func NewIndexDocument(doc *domain.Document) domain.IndexDocument {
	return domain.IndexDocument{
		ExternalID: domain.ExternalID(doc.ID),
		Title:      doc.Title,
		Markdown:   ToMarkdown(doc.Content),
		URL:        "/documents/" + doc.ID,
		Metadata:   IndexMetadata(doc),
	}
}
