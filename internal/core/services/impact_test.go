package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

func TestImpactLevelFor(t *testing.T) {
	tests := []struct {
		source, target domain.DocumentKind
		want           domain.ImpactLevel
		affected       bool
	}{
		{domain.KindPMD, domain.KindSpec, domain.ImpactHigh, true},
		{domain.KindSpec, domain.KindPMD, domain.ImpactMedium, true},
		{domain.KindPMD, domain.KindPMD, "", false},
		{domain.KindSpec, domain.KindSpec, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"->"+string(tt.target), func(t *testing.T) {
			level, ok := ImpactLevelFor(tt.source, tt.target)
			assert.Equal(t, tt.affected, ok)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestAnalyzeImpact_PMDChange(t *testing.T) {
	pmd := domain.NewDocument("pmd-1", domain.KindPMD, "FitTracker PMD")
	linked := []domain.Document{
		*domain.NewDocument("spec-1", domain.KindSpec, "API spec"),
		*domain.NewDocument("pmd-2", domain.KindPMD, "Sibling PMD"),
		*domain.NewDocument("spec-2", domain.KindSpec, "Mobile spec"),
		*domain.NewDocument("spec-1", domain.KindSpec, "API spec again"),
		*domain.NewDocument("pmd-1", domain.KindPMD, "self"),
	}

	analysis := AnalyzeImpact(pmd, linked)

	assert.Equal(t, []string{"spec-1", "spec-2"}, analysis.AffectedDocuments)
	assert.Equal(t, domain.ImpactHigh, analysis.ImpactLevels["spec-1"])
	assert.NotContains(t, analysis.ImpactLevels, "pmd-2")
	assert.Empty(t, analysis.Rationale)
}

func TestAnalyzeImpact_SpecChange(t *testing.T) {
	spec := domain.NewDocument("spec-1", domain.KindSpec, "API spec")
	linked := []domain.Document{
		*domain.NewDocument("pmd-1", domain.KindPMD, "PMD"),
		*domain.NewDocument("spec-2", domain.KindSpec, "Other spec"),
	}

	analysis := AnalyzeImpact(spec, linked)

	assert.Equal(t, []string{"pmd-1"}, analysis.AffectedDocuments)
	assert.Equal(t, domain.ImpactMedium, analysis.LevelFor("pmd-1"))
}

func TestAnalyzeImpact_NoLinks(t *testing.T) {
	analysis := AnalyzeImpact(domain.NewDocument("x", domain.KindPMD, "x"), nil)

	assert.Empty(t, analysis.AffectedDocuments)
	assert.NotNil(t, analysis.ImpactLevels)

	assert.Empty(t, AnalyzeImpact(nil, nil).AffectedDocuments)
}
