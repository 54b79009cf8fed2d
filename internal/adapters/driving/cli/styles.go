package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// Palette shared by every command.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
)

func heading(s string) string {
	return headingStyle.Render(s)
}

func muted(s string) string {
	return mutedStyle.Render(s)
}

// statusBadge colours a document status.
func statusBadge(s domain.DocumentStatus) string {
	switch s {
	case domain.StatusApproved:
		return successStyle.Render(string(s))
	case domain.StatusInReview:
		return warningStyle.Render(string(s))
	case domain.StatusArchived:
		return mutedStyle.Render(string(s))
	default:
		return string(s)
	}
}

// impactBadge colours an impact level.
func impactBadge(l domain.ImpactLevel) string {
	switch l {
	case domain.ImpactHigh:
		return errorStyle.Render(string(l))
	case domain.ImpactMedium:
		return warningStyle.Render(string(l))
	default:
		return mutedStyle.Render(string(l))
	}
}

// indexBadge colours an index status.
func indexBadge(s domain.IndexStatus) string {
	switch s {
	case domain.IndexSuccess, domain.IndexExists:
		return successStyle.Render(string(s))
	case domain.IndexError:
		return errorStyle.Render(string(s))
	default:
		return mutedStyle.Render(string(s))
	}
}

// scoreBar renders a completeness score in [0,1] as a ten cell bar.
func scoreBar(score float64) string {
	filled := int(score*10 + 0.5)
	filled = max(0, min(10, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	style := errorStyle
	switch {
	case score >= 0.8:
		style = successStyle
	case score >= 0.5:
		style = warningStyle
	}
	return fmt.Sprintf("%s %3.0f%%", style.Render(bar), score*100)
}

// renderMarkdown renders content for the terminal with styled headings.
func renderMarkdown(content domain.Content) string {
	var b strings.Builder
	for _, sec := range content {
		b.WriteString(heading("## " + sectionTitle(sec.Key)))
		b.WriteString("\n\n")
		switch sec.Value.Kind {
		case domain.ValueList:
			for _, item := range sec.Value.Items {
				b.WriteString("- " + item + "\n")
			}
		case domain.ValueKeyed:
			for _, e := range sec.Value.Entries {
				b.WriteString(headingStyle.UnsetBold().Render("### "+sectionTitle(e.Key)) + "\n")
				b.WriteString(e.Value + "\n\n")
			}
		default:
			b.WriteString(sec.Value.Text + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func sectionTitle(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// renderPlain flattens content into unstyled text.
func renderPlain(content domain.Content) string {
	var b strings.Builder
	for _, sec := range content {
		b.WriteString(sectionTitle(sec.Key) + ":\n")
		switch sec.Value.Kind {
		case domain.ValueList:
			for _, item := range sec.Value.Items {
				b.WriteString("- " + item + "\n")
			}
		case domain.ValueKeyed:
			for _, e := range sec.Value.Entries {
				b.WriteString(sectionTitle(e.Key) + ": " + e.Value + "\n")
			}
		default:
			b.WriteString(sec.Value.Text + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
