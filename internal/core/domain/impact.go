package domain

// ImpactLevel is how strongly a change affects a linked document.
type ImpactLevel string

// Impact levels.
const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// ImpactAnalysis lists the linked documents a change affects.
// AffectedDocuments and ImpactLevels come from the kind-pair heuristic;
// Rationale is model narrative and never selects documents.
type ImpactAnalysis struct {
	AffectedDocuments []string
	ImpactLevels      map[string]ImpactLevel
	Rationale         string
}

// LevelFor returns the impact level for id, low when unknown.
func (a *ImpactAnalysis) LevelFor(id string) ImpactLevel {
	if lvl, ok := a.ImpactLevels[id]; ok {
		return lvl
	}
	return ImpactLow
}

// UpdateSuggestion is one suggested edit for a linked document.
type UpdateSuggestion struct {
	// Change is the bullet text.
	Change string

	// Fields holds "key: value" lines that followed the bullet, keys lower-cased.
	Fields map[string]string
}

// DocumentUpdate proposes edits for one linked document.
type DocumentUpdate struct {
	DocumentID       string
	DocumentTitle    string
	SuggestedChanges []UpdateSuggestion
	ImpactLevel      ImpactLevel
}

// UpdatePlan is the outcome of propagating a change to linked documents.
type UpdatePlan struct {
	SourceID string
	Impact   ImpactAnalysis
	Updates  []DocumentUpdate
}
