package mcp

import (
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Validator scores product ideas for completeness.
	Validator driving.Validator

	// Templates lists and loads document templates.
	Templates driving.TemplateService

	// Generator writes documents and update plans.
	Generator driving.Generator

	// Documents manages stored documents.
	Documents driving.DocumentService

	// Search queries the external index.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
// Only the validator is required; tools for missing ports report that
// their service is not configured.
func (p *Ports) Validate() error {
	if p.Validator == nil {
		return ErrMissingValidator
	}
	return nil
}
