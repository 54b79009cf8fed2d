package services

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// The parsers in this file are best-effort line scanners over model output.
// They never fail: input with no recognisable structure yields the empty
// value for its variant, and lines that match no rule are dropped.

var parseLog = logger.For("parser")

// ParseSection parses raw model output into the variant declared by spec.
// The variant is chosen from the section type alone, never from the text.
func ParseSection(raw string, spec domain.SectionSpec) domain.SectionValue {
	switch {
	case spec.IsList():
		_, maxItems := spec.Bounds()
		items := ParseList(raw, maxItems)
		if len(items) == 0 && strings.TrimSpace(raw) != "" {
			parseLog.Debug("no list items found for section %q", spec.Key)
		}
		return domain.ListValue(items)
	case spec.IsKeyed():
		names := make([]string, len(spec.Subsections))
		for i, sub := range spec.Subsections {
			names[i] = sub.Name
		}
		entries := ParseKeyed(raw, names)
		if len(entries) == 0 && strings.TrimSpace(raw) != "" {
			parseLog.Debug("no subsection headers found for section %q", spec.Key)
		}
		return domain.KeyedValue(entries)
	default:
		return domain.TextValue(strings.TrimSpace(raw))
	}
}

// ParseList keeps lines starting with "-", "*" or a digit, strips the
// marker and any "N." ordinal, and truncates to maxItems when positive.
// Lines left empty by stripping, such as "---" rules, are dropped.
func ParseList(raw string, maxItems int) []string {
	items := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		first := rune(line[0])
		isDigit := unicode.IsDigit(first)
		if first != '-' && first != '*' && !isDigit {
			continue
		}

		item := strings.TrimSpace(strings.TrimLeft(line, "-*"))
		if item == "" {
			continue
		}
		if isDigit {
			head := item
			if len(head) > 3 {
				head = head[:3]
			}
			if strings.Contains(head, ".") {
				_, rest, _ := strings.Cut(item, ".")
				item = strings.TrimSpace(rest)
			}
			if item == "" {
				continue
			}
		}

		items = append(items, item)
	}

	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

// ParseKeyed groups lines under the subsection whose name the most recent
// header line contains. Text before the first header is discarded. A
// repeated header replaces the earlier value and keeps its position.
func ParseKeyed(raw string, names []string) []domain.KeyedEntry {
	entries := []domain.KeyedEntry{}

	current := ""
	var body []string
	flush := func() {
		if current == "" {
			return
		}
		value := strings.TrimSpace(strings.Join(body, "\n"))
		for i := range entries {
			if entries[i].Key == current {
				entries[i].Value = value
				return
			}
		}
		entries = append(entries, domain.KeyedEntry{Key: current, Value: value})
	}

	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		header := ""
		for _, name := range names {
			if name != "" && strings.Contains(lower, strings.ToLower(name)) {
				header = name
				break
			}
		}

		if header != "" {
			flush()
			current = header
			body = nil
			continue
		}
		if current != "" {
			body = append(body, line)
		}
	}
	flush()

	return entries
}

// ExtractRequirements collects dash-bulleted lines following the first
// line that mentions reqType, stopping at a blank line.
func ExtractRequirements(content, reqType string) []string {
	reqs := []string{}
	keyword := strings.ToLower(reqType)
	inSection := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(strings.ToLower(line), keyword):
			inSection = true
		case inSection && strings.HasPrefix(trimmed, "-"):
			reqs = append(reqs, strings.TrimSpace(strings.TrimLeft(trimmed, "-")))
		case inSection && trimmed == "":
			inSection = false
		}
	}
	return reqs
}

// ExtractSection returns the non-heading lines after the first line that
// mentions name, up to the next "#" heading.
func ExtractSection(content, name string) string {
	keyword := strings.ToLower(name)
	inSection := false
	var lines []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inSection {
			if strings.Contains(strings.ToLower(line), keyword) {
				inSection = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		if trimmed != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseUpdateSuggestions reads bullet records with trailing key: value
// fields. Field lines before the first bullet are ignored.
func ParseUpdateSuggestions(text string) []domain.UpdateSuggestion {
	suggestions := []domain.UpdateSuggestion{}
	var current *domain.UpdateSuggestion

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			suggestions = append(suggestions, domain.UpdateSuggestion{
				Change: strings.TrimSpace(strings.TrimLeft(line, "-*")),
				Fields: map[string]string{},
			})
			current = &suggestions[len(suggestions)-1]
			continue
		}

		if current == nil {
			continue
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			current.Fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}
	return suggestions
}

// ParseSuggestions returns at most limit bulleted or numbered suggestions.
func ParseSuggestions(text string, limit int) []string {
	return ParseList(text, limit)
}

// ParseValidationFeedback splits a review reply into issues and
// suggestions. Bullets under a heading mentioning "issue" or "problem" are
// issues; bullets under "suggest" or "improve" are suggestions.
func ParseValidationFeedback(text string) (issues, suggestions []string) {
	issues, suggestions = []string{}, []string{}
	var target *[]string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		isBullet := strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*")
		if !isBullet {
			lower := strings.ToLower(trimmed)
			switch {
			case strings.Contains(lower, "issue"), strings.Contains(lower, "problem"):
				target = &issues
			case strings.Contains(lower, "suggest"), strings.Contains(lower, "improve"):
				target = &suggestions
			}
			continue
		}

		if target != nil {
			*target = append(*target, strings.TrimSpace(strings.TrimLeft(trimmed, "-*")))
		}
	}
	return issues, suggestions
}
