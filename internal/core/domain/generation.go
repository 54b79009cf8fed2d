package domain

// GenerateRequest asks for a whole document to be generated from a template.
type GenerateRequest struct {
	// TemplateKind selects the governing template ("pmd", "lean", ...).
	TemplateKind string

	// ProductName is substituted into the header and prompt context.
	ProductName string

	// Author is recorded in the header, "PM" when empty.
	Author string

	// Context carries extra values into every section prompt.
	Context map[string]any

	// Inputs holds user-supplied text per section key.
	// Optional sections without input are skipped.
	Inputs map[string]string
}

// GeneratedDocument is proposed content; nothing is persisted.
type GeneratedDocument struct {
	TemplateKind      string
	DocumentKind      DocumentKind
	Title             string
	Content           Content
	SectionsGenerated []string
	SectionsSkipped   []string
}
