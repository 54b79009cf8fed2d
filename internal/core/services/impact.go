package services

import "github.com/custodia-labs/docsmith/internal/core/domain"

// ImpactLevelFor returns the impact of a change to a source document on a
// linked target. The second result is false when the pair is not
// automatically affected.
func ImpactLevelFor(source, target domain.DocumentKind) (domain.ImpactLevel, bool) {
	switch {
	case source == domain.KindPMD && target == domain.KindSpec:
		return domain.ImpactHigh, true
	case source == domain.KindSpec && target == domain.KindPMD:
		return domain.ImpactMedium, true
	default:
		return "", false
	}
}

// AnalyzeImpact selects the linked documents a change to source affects.
// Affected IDs keep the order of linked. Rationale is left empty for the
// caller to fill.
func AnalyzeImpact(source *domain.Document, linked []domain.Document) domain.ImpactAnalysis {
	analysis := domain.ImpactAnalysis{
		AffectedDocuments: []string{},
		ImpactLevels:      map[string]domain.ImpactLevel{},
	}
	if source == nil {
		return analysis
	}

	for i := range linked {
		target := &linked[i]
		if target.ID == source.ID {
			continue
		}
		level, ok := ImpactLevelFor(source.Kind, target.Kind)
		if !ok {
			continue
		}
		if _, seen := analysis.ImpactLevels[target.ID]; seen {
			continue
		}
		analysis.AffectedDocuments = append(analysis.AffectedDocuments, target.ID)
		analysis.ImpactLevels[target.ID] = level
	}
	return analysis
}
