// Package markdown reads a markdown file into document sections.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	bulletPattern  = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Section is the text under one second-level heading.
type Section struct {
	Heading string
	Body    string
}

// Document is a markdown file split at its "##" headings.
type Document struct {
	// Title is the first "#" heading, or the file name without extension.
	Title string

	// Preamble is any text before the first section.
	Preamble string

	Sections []Section
}

// Parse splits data into a title and sections. Fenced code blocks are kept
// verbatim and their lines are never treated as headings.
func Parse(data []byte, name string) *Document {
	doc := &Document{}
	var body []string
	current := -1
	inFence := false

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if current < 0 {
			doc.Preamble = text
		} else {
			doc.Sections[current].Body = text
		}
		body = body[:0]
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			body = append(body, line)
			continue
		}
		if inFence {
			body = append(body, line)
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		switch {
		case m != nil && len(m[1]) == 1 && doc.Title == "" && current < 0:
			doc.Title = m[2]
		case m != nil && len(m[1]) == 2:
			flush()
			doc.Sections = append(doc.Sections, Section{Heading: m[2]})
			current = len(doc.Sections) - 1
		default:
			body = append(body, line)
		}
	}
	flush()

	if doc.Title == "" {
		doc.Title = titleFromName(name)
	}
	return doc
}

// Content maps the sections onto tpl. A heading matches a section by title
// or by key, ignoring case and punctuation. List sections keep their bullet
// items and keyed sections split at "###" headings. Headings that match no
// section are returned in order.
func (d *Document) Content(tpl *domain.Template) (domain.Content, []string) {
	var content domain.Content
	var unmatched []string

	for _, sec := range d.Sections {
		spec, ok := match(tpl, sec.Heading)
		if !ok {
			unmatched = append(unmatched, sec.Heading)
			continue
		}
		switch {
		case spec.IsList():
			content.Set(spec.Key, domain.ListValue(bullets(sec.Body)))
		case spec.IsKeyed():
			content.Set(spec.Key, domain.KeyedValue(subsections(sec.Body, spec.Subsections)))
		default:
			content.Set(spec.Key, domain.TextValue(sec.Body))
		}
	}
	return content, unmatched
}

func match(tpl *domain.Template, heading string) (domain.SectionSpec, bool) {
	if tpl == nil {
		return domain.SectionSpec{}, false
	}
	want := normalise(heading)
	for _, s := range tpl.Sections {
		if normalise(s.Title) == want || normalise(s.Key) == want {
			return s, true
		}
	}
	return domain.SectionSpec{}, false
}

// normalise lowercases s and collapses everything but letters and digits
// to underscores, so "Risks & Assumptions" becomes "risks_assumptions".
func normalise(s string) string {
	return strings.Trim(nonWordPattern.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func bullets(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		if loc := bulletPattern.FindStringIndex(line); loc != nil {
			if item := strings.TrimSpace(line[loc[1]:]); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// subsections splits body at "###" headings. A heading naming a declared
// subsection takes that subsection's name as its key.
func subsections(body string, declared []domain.Subsection) []domain.KeyedEntry {
	var entries []domain.KeyedEntry
	var lines []string
	key := ""

	flush := func() {
		if key != "" {
			entries = append(entries, domain.KeyedEntry{
				Key:   key,
				Value: strings.TrimSpace(strings.Join(lines, "\n")),
			})
		}
		lines = lines[:0]
	}

	for _, line := range strings.Split(body, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil && len(m[1]) == 3 {
			flush()
			key = m[2]
			for _, sub := range declared {
				if normalise(sub.Name) == normalise(key) {
					key = sub.Name
					break
				}
			}
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return entries
}

func titleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
