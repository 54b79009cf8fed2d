package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure Generator implements the interfaces.
var (
	_ driving.Generator       = (*Generator)(nil)
	_ driven.PromptStoreAware = (*Generator)(nil)
)

// summaryContentLimit caps the content JSON embedded in summary prompts.
const summaryContentLimit = 2000

// defaultAuthor is recorded in the header when the request names none.
const defaultAuthor = "PM"

var genLog = logger.For("generator")

// GeneratorConfig holds generation limits.
type GeneratorConfig struct {
	// Timeout bounds each LLM call. Zero means no per-call deadline.
	Timeout time.Duration

	// MaxTokens caps each completion.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// GeneratorConfigFrom derives generator limits from application settings.
func GeneratorConfigFrom(s *domain.AppSettings) GeneratorConfig {
	return GeneratorConfig{
		Timeout:     s.Generation.Timeout,
		MaxTokens:   s.LLM.MaxTokens,
		Temperature: s.LLM.Temperature,
	}
}

// Generator is the document generation orchestrator. It proposes content
// and never writes to a document store.
type Generator struct {
	llm       driven.LLMService
	templates *TemplateStore
	prompts   driven.PromptStore
	cfg       GeneratorConfig
	now       func() time.Time
}

// NewGenerator creates a generator. llm may be nil, in which case every
// generation call returns domain.ErrLLMUnavailable.
func NewGenerator(llm driven.LLMService, templates *TemplateStore, cfg GeneratorConfig) *Generator {
	return &Generator{
		llm:       llm,
		templates: templates,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetPromptStore sets the store used for customisable system prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// GenerateDocument walks the template's sections in order. The header is
// rendered from context, optional sections without input are skipped and
// every other section is generated and parsed. The first section failure
// aborts the document.
func (g *Generator) GenerateDocument(
	ctx context.Context,
	req domain.GenerateRequest,
) (*domain.GeneratedDocument, error) {
	if g.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(req.ProductName) == "" {
		return nil, domain.NewValidationError("product_name", "Product name is required")
	}

	tpl, err := g.templates.Load(ctx, req.TemplateKind)
	if err != nil {
		return nil, err
	}

	docKind := tpl.DocumentKind
	if !docKind.IsValid() {
		docKind = domain.KindPMD
	}

	base := g.baseContext(req)
	out := &domain.GeneratedDocument{
		TemplateKind:      tpl.Kind,
		DocumentKind:      docKind,
		Title:             req.ProductName,
		Content:           domain.Content{},
		SectionsGenerated: []string{},
		SectionsSkipped:   []string{},
	}
	system := loadPrompt(g.prompts, driven.PromptSectionSystem)

	for _, spec := range tpl.Sections {
		if spec.Key == domain.HeaderSectionKey {
			out.Content.Set(spec.Key, domain.TextValue(RenderHeader(spec.Render, base)))
			continue
		}

		input := strings.TrimSpace(req.Inputs[spec.Key])
		if spec.Optional && input == "" {
			out.SectionsSkipped = append(out.SectionsSkipped, spec.Key)
			continue
		}

		promptCtx := make(map[string]any, len(base)+1)
		for k, v := range base {
			promptCtx[k] = v
		}
		if len(out.Content) > 0 {
			promptCtx["current_document"] = out.Content
		}

		prompt := BuildSectionPrompt(docKind.Label(), spec.Key, spec, promptCtx, input)
		genLog.Debug("generating section %q of %s", spec.Key, tpl.Kind)

		raw, err := g.generate(ctx, prompt, system)
		if err != nil {
			return nil, &domain.GenerationError{Document: tpl.Kind, Section: spec.Key, Err: err}
		}

		out.Content.Set(spec.Key, ParseSection(raw, spec))
		out.SectionsGenerated = append(out.SectionsGenerated, spec.Key)
	}

	return out, nil
}

// baseContext is the substitution and prompt context shared by all sections.
// Caller-supplied context overrides the defaults.
func (g *Generator) baseContext(req domain.GenerateRequest) map[string]any {
	author := req.Author
	if author == "" {
		author = defaultAuthor
	}
	ctx := map[string]any{
		"product_name": req.ProductName,
		"author_name":  author,
		"date":         g.now().UTC().Format("2006-01-02"),
		"version":      domain.DefaultDocumentVersion,
	}
	for k, v := range req.Context {
		ctx[k] = v
	}
	return ctx
}

// GenerateSpec summarises source, asks for a technical specification and
// restructures the reply into the four spec facets. Engineering inputs are
// copied through unchanged.
func (g *Generator) GenerateSpec(
	ctx context.Context,
	source *domain.Document,
	inputs domain.EngineeringInputs,
) (*domain.EngineeringSpec, error) {
	if g.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if source == nil {
		return nil, fmt.Errorf("source document: %w", domain.ErrInvalidInput)
	}

	summary, err := g.generate(ctx, buildSourceSummaryPrompt(source.Content),
		loadPrompt(g.prompts, driven.PromptSpecSummary))
	if err != nil {
		return nil, &domain.GenerationError{Document: "spec", Section: "summary", Err: err}
	}

	content, err := g.generate(ctx, buildSpecPrompt(summary, inputs),
		loadPrompt(g.prompts, driven.PromptSpecSystem))
	if err != nil {
		return nil, &domain.GenerationError{Document: "spec", Err: err}
	}

	return &domain.EngineeringSpec{
		PMDReference: source.ID,
		TechnicalRequirements: domain.TechnicalRequirements{
			Functional:    ExtractRequirements(content, "functional"),
			NonFunctional: ExtractRequirements(content, "non-functional"),
			Constraints:   nonNil(inputs.Constraints),
		},
		Architecture: domain.Architecture{
			Overview:     ExtractSection(content, "architecture"),
			Components:   nonNil(inputs.Components),
			Integrations: nonNil(inputs.Integrations),
		},
		Implementation: domain.Implementation{
			TechnologyStack: nonNil(inputs.TechStack),
			Phases:          ExtractSection(content, "phases"),
			TestingStrategy: inputs.TestingStrategy,
		},
		Estimates: domain.Estimates{
			Effort:    inputs.EffortEstimate,
			Timeline:  nonNil(inputs.Timeline),
			Resources: nonNil(inputs.Resources),
		},
	}, nil
}

// UpdateDocument decides which linked documents a change affects and
// proposes edits for each. The kind-pair heuristic selects the documents;
// the model narrative only fills Rationale and its failure is not fatal.
func (g *Generator) UpdateDocument(
	ctx context.Context,
	doc *domain.Document,
	changes domain.Changes,
	linked []domain.Document,
) (*domain.UpdatePlan, error) {
	if doc == nil {
		return nil, fmt.Errorf("document: %w", domain.ErrInvalidInput)
	}

	impact := AnalyzeImpact(doc, linked)
	plan := &domain.UpdatePlan{
		SourceID: doc.ID,
		Impact:   impact,
		Updates:  []domain.DocumentUpdate{},
	}

	if len(impact.AffectedDocuments) == 0 {
		return plan, nil
	}
	if g.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	narrative, err := g.generate(ctx, buildImpactPrompt(doc, changes, linked),
		loadPrompt(g.prompts, driven.PromptImpactSystem))
	if err != nil {
		genLog.Warn("impact narrative for %s failed: %v", doc.ID, err)
	} else {
		plan.Impact.Rationale = strings.TrimSpace(narrative)
	}

	byID := make(map[string]*domain.Document, len(linked))
	for i := range linked {
		byID[linked[i].ID] = &linked[i]
	}

	for _, id := range impact.AffectedDocuments {
		target := byID[id]

		summary, err := g.generate(ctx, buildDocumentSummaryPrompt(target),
			loadPrompt(g.prompts, driven.PromptDocumentSummary))
		if err != nil {
			return nil, &domain.GenerationError{Document: target.ID, Section: "summary", Err: err}
		}

		reply, err := g.generate(ctx, buildUpdatePrompt(doc, changes, target, summary),
			loadPrompt(g.prompts, driven.PromptUpdateSystem))
		if err != nil {
			return nil, &domain.GenerationError{Document: target.ID, Err: err}
		}

		plan.Updates = append(plan.Updates, domain.DocumentUpdate{
			DocumentID:       target.ID,
			DocumentTitle:    target.Title,
			SuggestedChanges: ParseUpdateSuggestions(reply),
			ImpactLevel:      impact.LevelFor(target.ID),
		})
	}

	return plan, nil
}

// generate runs one LLM call under the configured deadline.
// A deadline hit is reported as domain.ErrGenerationTimeout.
func (g *Generator) generate(ctx context.Context, prompt, system string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	text, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		SystemPrompt: system,
		MaxTokens:    g.cfg.MaxTokens,
		Temperature:  g.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
		}
		return "", err
	}
	return text, nil
}

// RenderHeader substitutes {{name}} placeholders in tmpl from values.
// An empty tmpl renders the default title block.
func RenderHeader(tmpl string, values map[string]any) string {
	if tmpl == "" {
		tmpl = "# {{product_name}}\n\nAuthor: {{author_name}}\nDate: {{date}}\nVersion: {{version}}"
	}
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}

func buildSourceSummaryPrompt(content domain.Content) string {
	return "Summarize the following PMD content, focusing on technical requirements:\n\n" +
		marshalIndent(content) +
		"\n\nExtract:\n" +
		"1. Core functionality requirements\n" +
		"2. User stories and use cases\n" +
		"3. Performance expectations\n" +
		"4. Integration needs\n" +
		"5. Success metrics"
}

func buildSpecPrompt(summary string, inputs domain.EngineeringInputs) string {
	return "Based on the following PMD summary and engineering inputs, generate a detailed technical specification:\n\n" +
		"PMD Summary:\n" + summary + "\n\n" +
		"Engineering Inputs:\n" + marshalIndent(inputs) + "\n\n" +
		"Generate a comprehensive technical specification including:\n" +
		"1. Technical requirements (functional and non-functional)\n" +
		"2. System architecture overview\n" +
		"3. Implementation approach\n" +
		"4. Resource and timeline estimates"
}

type linkedRef struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

func buildImpactPrompt(doc *domain.Document, changes domain.Changes, linked []domain.Document) string {
	refs := make([]linkedRef, len(linked))
	for i, l := range linked {
		refs[i] = linkedRef{ID: l.ID, Type: l.Kind.String(), Title: l.Title}
	}
	return "Analyze the impact of these changes on related documents:\n\n" +
		"Document Type: " + doc.Kind.String() + "\n" +
		"Changes: " + marshalIndent(changes) + "\n\n" +
		"Linked Documents:\n" + marshalIndent(refs) + "\n\n" +
		"Determine which documents need updates and the impact level (high/medium/low)."
}

func buildDocumentSummaryPrompt(doc *domain.Document) string {
	data, err := json.Marshal(doc.Content)
	if err != nil {
		data = []byte("{}")
	}
	content := string(data)
	if len(content) > summaryContentLimit {
		cut := summaryContentLimit
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return "Provide a brief summary of this document:\n\n" +
		"Type: " + doc.Kind.String() + "\n" +
		"Title: " + doc.Title + "\n" +
		"Content: " + content
}

func buildUpdatePrompt(source *domain.Document, changes domain.Changes, target *domain.Document, summary string) string {
	return "The following changes were made to a related document:\n\n" +
		"Original Document Type: " + source.Kind.String() + "\n" +
		"Changes: " + marshalIndent(changes) + "\n\n" +
		"Current Document Type: " + target.Kind.String() + "\n" +
		"Current Content Summary: " + strings.TrimSpace(summary) + "\n\n" +
		"Generate necessary updates to maintain consistency."
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
