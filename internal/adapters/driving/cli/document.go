package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/normalisers/markdown"
)

var documentCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"document"},
	Short:   "Manage stored documents",
	Long:    `Create, list, view, link and review stored product documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty document",
	Long: `Creates a document by hand. Section content can be given as key=value
pairs, or read from a file: either a JSON object of section keys to text, or
a markdown file whose "##" headings name the template's sections.

A markdown file's "#" heading is used as the title when --title is not set.`,
	RunE: runDocumentCreate,
}

var documentLinkCmd = &cobra.Command{
	Use:   "link [doc-id] [doc-id]",
	Short: "Link two documents",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentLink,
}

var documentUnlinkCmd = &cobra.Command{
	Use:   "unlink [doc-id] [doc-id]",
	Short: "Remove a link between two documents",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentUnlink,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id] [status]",
	Short: "Set document status",
	Long:  `Sets a document's status to draft, in_review, approved or archived.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentStatus,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentRelatedCmd = &cobra.Command{
	Use:   "related [doc-id]",
	Short: "Find related documents in the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRelated,
}

var documentSimilarCmd = &cobra.Command{
	Use:   "similar [doc-id]",
	Short: "Search the index for documents like this one",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSimilar,
}

var documentReviewCmd = &cobra.Command{
	Use:   "review [doc-id]",
	Short: "Review a document against indexed best practice",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReview,
}

var (
	docListKind      string
	docListStatus    string
	docGetJSON       bool
	docCreateKind    string
	docCreateTitle   string
	docCreateSum     string
	docCreateTags    []string
	docCreateFile    string
	docCreateFields  []string
	docSimilarLimit  int
	docReviewSuggest bool
)

func init() {
	documentListCmd.Flags().StringVar(&docListKind, "kind", "", "filter by kind")
	documentListCmd.Flags().StringVar(&docListStatus, "status", "", "filter by status")
	documentSimilarCmd.Flags().IntVarP(&docSimilarLimit, "limit", "n", 5, "maximum number of results")
	documentReviewCmd.Flags().BoolVar(&docReviewSuggest, "suggest", false, "also ask for improvement suggestions")
	documentGetCmd.Flags().BoolVar(&docGetJSON, "json", false, "output the document as JSON")

	documentCreateCmd.Flags().StringVar(&docCreateKind, "kind", string(domain.KindPMD), "document kind")
	documentCreateCmd.Flags().StringVar(&docCreateTitle, "title", "", "document title (required)")
	documentCreateCmd.Flags().StringVar(&docCreateSum, "summary", "", "short summary")
	documentCreateCmd.Flags().StringSliceVar(&docCreateTags, "tag", nil, "tags")
	documentCreateCmd.Flags().StringVarP(&docCreateFile, "file", "f", "", "JSON or markdown file of section content")
	documentCreateCmd.Flags().StringArrayVarP(&docCreateFields, "section", "s", nil, "section as key=value (repeatable)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentCreateCmd)
	documentCmd.AddCommand(documentLinkCmd)
	documentCmd.AddCommand(documentUnlinkCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentRelatedCmd)
	documentCmd.AddCommand(documentSimilarCmd)
	documentCmd.AddCommand(documentReviewCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var filter domain.DocumentFilter
	if docListKind != "" {
		kind, err := domain.ParseDocumentKind(docListKind)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	if docListStatus != "" {
		status, err := domain.ParseDocumentStatus(docListStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	docs, err := documentService.List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %-6s %s  %s\n", docs[i].ID, docs[i].Kind, docs[i].Title, statusBadge(docs[i].Status))
		if len(docs[i].Links) > 0 {
			cmd.Printf("    %s\n", muted(fmt.Sprintf("%d linked", len(docs[i].Links))))
		}
	}
	cmd.Println()
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if docGetJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Kind:     %s\n", doc.Kind.Label())
	cmd.Printf("  Status:   %s\n", statusBadge(doc.Status))
	cmd.Printf("  Version:  %s\n", doc.Version)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.Summary != "" {
		cmd.Printf("  Summary:  %s\n", doc.Summary)
	}
	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:     %v\n", doc.Tags)
	}
	if len(doc.Links) > 0 {
		cmd.Println("\n  Linked:")
		for _, id := range doc.Links {
			cmd.Printf("    %s\n", id)
		}
	}
	if len(doc.Content) > 0 {
		cmd.Println()
		cmd.Println(renderMarkdown(doc.Content))
	}
	return nil
}

func runDocumentCreate(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	kind, err := domain.ParseDocumentKind(docCreateKind)
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc := domain.NewDocument("", kind, docCreateTitle)
	doc.Summary = docCreateSum

	sections := map[string]string{}
	if docCreateFile != "" {
		data, err := os.ReadFile(docCreateFile)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if isMarkdownFile(docCreateFile) {
			if err := readMarkdownContent(ctx, cmd, doc, data); err != nil {
				return err
			}
		} else if err := json.Unmarshal(data, &sections); err != nil {
			return fmt.Errorf("failed to parse content: %w", err)
		}
	}
	fields, err := parseKeyValues(docCreateFields)
	if err != nil {
		return err
	}
	for k, v := range fields {
		sections[k] = v
	}

	for _, t := range docCreateTags {
		doc.AddTag(t)
	}
	for _, key := range sortedKeys(sections) {
		doc.Content.Set(key, domain.TextValue(sections[key]))
	}

	created, err := documentService.Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	cmd.Printf("Created %s %s\n", created.Kind.Label(), created.ID)
	return nil
}

func runDocumentLink(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Link(context.Background(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to link documents: %w", err)
	}
	cmd.Printf("Linked %s <-> %s\n", args[0], args[1])
	return nil
}

func runDocumentUnlink(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Unlink(context.Background(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to unlink documents: %w", err)
	}
	cmd.Printf("Unlinked %s and %s\n", args[0], args[1])
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	status, err := domain.ParseDocumentStatus(args[1])
	if err != nil {
		return err
	}
	doc, err := documentService.Update(context.Background(), args[0], domain.Changes{"status": string(status)})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	cmd.Printf("%s is now %s\n", doc.Title, statusBadge(doc.Status))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func runDocumentRelated(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	refs, err := searchService.CrossReferences(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to find related documents: %w", err)
	}
	if len(refs) == 0 {
		cmd.Println("No related documents found.")
		return nil
	}

	cmd.Println("Related documents:")
	cmd.Println()
	for i, r := range refs {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, r.Title, r.Score)
		cmd.Printf("      %s %s\n", r.Kind, muted(r.DocumentID))
	}
	return nil
}

func runDocumentSimilar(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	results, err := searchService.SimilarDocuments(ctx, doc, docSimilarLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputSearchTable(cmd, results)
}

func runDocumentReview(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	text := plainText(doc)

	review, err := searchService.ValidateContent(ctx, text, doc.Kind)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}
	if review.Status != domain.IndexSuccess {
		cmd.Printf("Review unavailable (%s). Configure the index with 'docsmith settings index'.\n",
			indexBadge(review.Status))
		return nil
	}

	if len(review.Issues) == 0 {
		cmd.Println(successStyle.Render("No issues found."))
	} else {
		cmd.Println(heading("Issues"))
		for _, issue := range review.Issues {
			cmd.Printf("  - %s\n", issue)
		}
	}
	suggestions := review.Suggestions
	if docReviewSuggest {
		more, err := searchService.Suggestions(ctx, text, doc.Kind)
		if err != nil {
			return fmt.Errorf("suggestions failed: %w", err)
		}
		suggestions = append(suggestions, more...)
	}
	if len(suggestions) > 0 {
		cmd.Println()
		cmd.Println(heading("Suggestions"))
		for _, s := range suggestions {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}

// plainText flattens a document into text for review prompts.
func plainText(doc *domain.Document) string {
	text := doc.Title + "\n\n"
	if doc.Summary != "" {
		text += doc.Summary + "\n\n"
	}
	return text + renderPlain(doc.Content)
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// readMarkdownContent fills doc from a markdown file laid out by the
// template of doc's kind. Headings the template does not know are reported
// and left out.
func readMarkdownContent(ctx context.Context, cmd *cobra.Command, doc *domain.Document, data []byte) error {
	if templateService == nil {
		return errors.New("template service not configured")
	}
	tpl, err := templateService.Load(ctx, doc.Kind.String())
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	parsed := markdown.Parse(data, docCreateFile)
	content, unmatched := parsed.Content(tpl)
	doc.Content = content
	if doc.Title == "" {
		doc.Title = parsed.Title
	}
	if doc.Summary == "" {
		doc.Summary = parsed.Preamble
	}
	if len(unmatched) > 0 {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Skipped sections not in the %s template: %s",
			tpl.Kind, strings.Join(unmatched, ", "))))
	}
	return nil
}
