package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

const agentSystemPrompt = `You are an expert Product Manager with 10+ years of experience creating successful products.
Your role is to help create comprehensive, actionable product documents.

Core Principles:
- Be specific and actionable, not generic or vague
- Focus on user value and business outcomes
- Include measurable success criteria
- Consider technical feasibility
- Think about edge cases and risks
- Write in clear, professional language suitable for stakeholders

When helping with documents:
1. FIRST CHECK: Do NOT generate a document if information is minimal. Instead, ask for the required information.
2. If the user provides a vague description, ask specific clarifying questions
3. Only generate document content when you have sufficient information
4. Structure responses to match the section being discussed
5. Include specific examples and metrics where appropriate

Before creating a document, you MUST have at minimum:
1. Product/Feature Name: What is this product or feature called?
2. Problem Statement: What specific problem are you solving?
3. Target Users: Who will use this? (Be specific - "everyone" is not acceptable)
4. Core Functionality: What are the 2-3 main things this product must do?
5. Success Metric: How will you measure if this is successful?

If ANY of these are missing, do NOT generate the document. Instead, ask for the missing information in a structured way.`

const clarificationPrompt = `I need more information to create a comprehensive document. Based on your request, I'm missing some essential details:

%s

Please provide the missing information so I can help you create a complete document.`

// defaultPrompts holds the built-in system prompts by name.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAgentSystem:     agentSystemPrompt,
	driven.PromptSectionSystem:   "You are a product management expert helping to create a comprehensive PMD.",
	driven.PromptSpecSystem:      "You are a senior engineering architect creating technical specifications.",
	driven.PromptSpecSummary:     "Extract technical requirements from product documentation.",
	driven.PromptImpactSystem:    "Analyze document change impact and dependencies.",
	driven.PromptUpdateSystem:    "You are updating related documents to maintain consistency across the product documentation.",
	driven.PromptDocumentSummary: "Summarize document content concisely.",
	driven.PromptClarification:   clarificationPrompt,

	driven.PromptTemplatePrefix + "lean": `Template Context: Lean PRD
Focus on minimal viable documentation - problem, solution, metrics.
Keep sections concise and focused on essential information only.
Emphasize rapid iteration and learning.`,
	driven.PromptTemplatePrefix + "agile": `Template Context: Agile PRD
Emphasize user stories with clear acceptance criteria.
Structure content around sprints and iterative development.`,
	driven.PromptTemplatePrefix + "startup": `Template Context: Startup PRD
Include hypothesis, experiments, and pivot criteria.
Focus on MVP approach and rapid validation.
Emphasize metrics and learning objectives.`,
	driven.PromptTemplatePrefix + "pmd": `Template Context: Product/Market Document
Cover the market, the users and the product goals that engineering specs will be derived from.`,
	driven.PromptTemplatePrefix + "spec": `Template Context: Engineering Specification
Include detailed technical requirements, architecture and delivery estimates.`,
}

// DefaultPrompts returns a copy of the built-in prompts, keyed by name.
// File-backed prompt stores seed user-editable files from it.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

// loadPrompt returns the named prompt from store, falling back to the built-in.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	return defaultPrompts[name]
}

// BuildSectionPrompt builds the generation instruction for one section.
// The output depends only on its arguments; context keys are serialised
// in sorted order.
func BuildSectionPrompt(
	docLabel string,
	key string,
	spec domain.SectionSpec,
	context map[string]any,
	userInput string,
) string {
	if context == nil {
		context = map[string]any{}
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Generate content for the '%s' section of a %s.\n\n", key, docLabel)

	if spec.Prompt != "" {
		fmt.Fprintf(&b, "Section Goal: %s\n\n", spec.Prompt)
	}

	if userInput != "" {
		fmt.Fprintf(&b, "User Input: %s\n\n", userInput)
	}

	fmt.Fprintf(&b, "Context:\n%s\n\n", marshalIndent(context))

	if len(spec.Subsections) > 0 {
		b.WriteString("Include the following subsections:\n")
		for _, sub := range spec.Subsections {
			if sub.Prompt != "" {
				fmt.Fprintf(&b, "- %s\n", sub.Prompt)
			} else {
				fmt.Fprintf(&b, "- %s\n", sub.Name)
			}
		}
	}

	if spec.IsList() {
		minItems, maxItems := spec.Bounds()
		fmt.Fprintf(&b, "\nProvide between %d and %d items.\n", minItems, maxItems)

		if spec.Format != "" {
			fmt.Fprintf(&b, "Format: %s\n", spec.Format)
		}

		if len(spec.Examples) > 0 {
			b.WriteString("Examples:\n")
			for _, ex := range spec.Examples {
				fmt.Fprintf(&b, "- %s\n", ex)
			}
		}
	}

	return b.String()
}

// BuildSystemPrompt assembles the agent's system prompt from the base
// prompt, template guidance, the current draft, the template structure and
// any missing core fields.
func BuildSystemPrompt(
	store driven.PromptStore,
	tpl *domain.Template,
	current string,
	missing []string,
) string {
	parts := []string{loadPrompt(store, driven.PromptAgentSystem)}

	if tpl != nil {
		if guidance := loadPrompt(store, driven.PromptTemplatePrefix+tpl.Kind); guidance != "" {
			parts = append(parts, guidance)
		}
	}

	if current != "" {
		parts = append(parts, "Current Document Content:\n"+current)
	}

	if tpl != nil && len(tpl.Sections) > 0 {
		parts = append(parts, "Template Structure:\n"+FormatTemplateSections(tpl))
	}

	if len(missing) > 0 {
		parts = append(parts, "Missing Required Information:\n"+bulletList(missing))
	}

	return strings.Join(parts, "\n\n")
}

// FormatTemplateSections renders section titles with required markers and
// guiding questions.
func FormatTemplateSections(tpl *domain.Template) string {
	var lines []string
	for _, sec := range tpl.Sections {
		title := sec.Title
		if title == "" {
			title = sec.Key
		}
		required := ""
		if sec.Required {
			required = " (Required)"
		}
		lines = append(lines, fmt.Sprintf("**%s**%s", title, required))
		if len(sec.Prompts) > 0 {
			lines = append(lines, "  Guiding questions:")
			for _, p := range sec.Prompts {
				lines = append(lines, "  - "+p)
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// BuildClarification renders the clarification reply for missing fields.
func BuildClarification(store driven.PromptStore, missing, questions []string) string {
	items := make([]string, len(missing))
	for i, name := range missing {
		if i < len(questions) {
			items[i] = name + ": " + questions[i]
		} else {
			items[i] = name
		}
	}
	tmpl := loadPrompt(store, driven.PromptClarification)
	if !strings.Contains(tmpl, "%s") {
		return tmpl + "\n\n" + bulletList(items)
	}
	return fmt.Sprintf(tmpl, bulletList(items))
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// marshalIndent renders v as indented JSON, or "{}" when it cannot.
func marshalIndent(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
