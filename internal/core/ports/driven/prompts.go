package driven

// PromptStore provides access to LLM system prompts.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAgentSystem is the base expert-PM system prompt for the agent.
	PromptAgentSystem = "agent_system"

	// PromptSectionSystem is the system prompt for section generation.
	PromptSectionSystem = "section_system"

	// PromptSpecSystem is the system prompt for engineering spec generation.
	PromptSpecSystem = "spec_system"

	// PromptSpecSummary is the system prompt for summarising a source PMD.
	PromptSpecSummary = "spec_summary"

	// PromptImpactSystem is the system prompt for impact narratives.
	PromptImpactSystem = "impact_system"

	// PromptUpdateSystem is the system prompt for linked-document updates.
	PromptUpdateSystem = "update_system"

	// PromptDocumentSummary is the system prompt for document summaries.
	PromptDocumentSummary = "document_summary"

	// PromptClarification is appended when input is missing core fields.
	PromptClarification = "clarification"

	// PromptTemplatePrefix prefixes template-specific guidance ("template_lean").
	PromptTemplatePrefix = "template_"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in default prompts.
	SetPromptStore(store PromptStore)
}
