package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
)

// Ensure Validator implements the interface.
var _ driving.Validator = (*Validator)(nil)

// underspecifiedScore and underspecifiedLength gate generation attempts.
const (
	underspecifiedScore  = 0.4
	underspecifiedLength = 20
)

// detectedEvidence marks keyword-detected fields in ExtractedInfo.
const detectedEvidence = "detected"

// productNamePatterns are tried in priority order; the first match wins.
// The last pattern needs a real capital letter so "an app" is not a name.
var productNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:product|app|feature|tool|system|platform)\s+(?:called|named)\s+([^\s,.]+)`),
	regexp.MustCompile(`(?i)building\s+(?:an?\s+)?([^\s,.]+)`),
	regexp.MustCompile(`(?i)create\s+(?:an?\s+)?([^\s,.]+)`),
	regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:[A-Z][a-zA-Z]*)*)\s+(?i:app|product|feature)\b`),
}

// fieldKeywords are matched as lower-case substrings.
var fieldKeywords = map[domain.CoreField][]string{
	domain.FieldProblemStatement:  {"problem", "issue", "challenge", "pain point", "struggle", "difficulty"},
	domain.FieldTargetUsers:       {"users", "customers", "audience", "people", "target", "for"},
	domain.FieldCoreFunctionality: {"features", "functionality", "does", "capabilities", "functions"},
	domain.FieldSuccessMetrics:    {"success", "metrics", "kpi", "measure", "goal", "target"},
}

var clarificationQuestions = map[domain.CoreField]string{
	domain.FieldProductName:       "What should we call this product or feature?",
	domain.FieldProblemStatement:  "What specific problem are you trying to solve? Who experiences this problem and what's the impact?",
	domain.FieldTargetUsers:       "Who are your target users? Please be specific (e.g., 'small business owners', 'fitness enthusiasts', 'software developers').",
	domain.FieldCoreFunctionality: "What are the 2-3 main things this product must do? What are the core features?",
	domain.FieldSuccessMetrics:    "How will you measure success? What are your target KPIs or goals?",
}

var genericProductNames = []string{"product", "app", "feature", "tool", "system"}

var genericAudiences = []string{"everyone", "users", "people", "customers"}

// Validator is the completeness validator. It is stateless and safe for
// concurrent use.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate extracts core-field signals from text and scores them.
func (v *Validator) Validate(text string) domain.ValidationResult {
	extracted := extractCoreFields(text)

	var missing []string
	for _, f := range domain.CoreFields {
		if extracted[f] == "" {
			missing = append(missing, f.DisplayName())
		}
	}

	found := len(domain.CoreFields) - len(missing)
	return domain.ValidationResult{
		ExtractedInfo:     extracted,
		MissingInfo:       missing,
		IsSufficient:      len(missing) == 0,
		CompletenessScore: float64(found) / float64(len(domain.CoreFields)),
	}
}

// IsUnderspecified reports whether text scores below 0.4 or is shorter
// than 20 characters once trimmed.
func (v *Validator) IsUnderspecified(text string) bool {
	result := v.Validate(text)
	return result.CompletenessScore < underspecifiedScore ||
		len(strings.TrimSpace(text)) < underspecifiedLength
}

// ClarificationQuestions returns the canned question for each missing field.
// Fields may be given by key or display name; unknown names are skipped.
func (v *Validator) ClarificationQuestions(missing []string) []string {
	questions := make([]string, 0, len(missing))
	for _, name := range missing {
		f, ok := domain.CoreFieldByName(name)
		if !ok {
			continue
		}
		questions = append(questions, clarificationQuestions[f])
	}
	return questions
}

func extractCoreFields(text string) map[domain.CoreField]string {
	info := make(map[domain.CoreField]string)

	for _, re := range productNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				info[domain.FieldProductName] = name
				break
			}
		}
	}

	lower := strings.ToLower(text)
	for _, f := range domain.CoreFields {
		for _, kw := range fieldKeywords[f] {
			if strings.Contains(lower, kw) {
				info[f] = detectedEvidence
				break
			}
		}
	}

	return info
}

// ValidateField runs the field-level check for f.
func (v *Validator) ValidateField(f domain.CoreField, value string) error {
	return ValidateField(f, value)
}

// ValidateProductName rejects short or generic product names.
func ValidateProductName(value string) error {
	if len(strings.TrimSpace(value)) < 2 {
		return domain.NewValidationError(string(domain.FieldProductName), "Product name must be at least 2 characters")
	}
	if containsFold(genericProductNames, value) {
		return domain.NewValidationError(string(domain.FieldProductName), "Product name should be specific, not generic")
	}
	return nil
}

// ValidateProblemStatement requires a descriptive statement naming the problem.
func ValidateProblemStatement(value string) error {
	if len(strings.TrimSpace(value)) < 10 {
		return domain.NewValidationError(string(domain.FieldProblemStatement),
			"Problem statement should be descriptive (at least 10 characters)")
	}
	lower := strings.ToLower(value)
	if !strings.Contains(lower, "problem") && !strings.Contains(lower, "issue") {
		return domain.NewValidationError(string(domain.FieldProblemStatement),
			"Problem statement should clearly describe the problem")
	}
	return nil
}

// ValidateTargetUsers rejects short or generic audiences.
func ValidateTargetUsers(value string) error {
	if len(strings.TrimSpace(value)) < 5 {
		return domain.NewValidationError(string(domain.FieldTargetUsers),
			"Target users should be specific (at least 5 characters)")
	}
	if containsFold(genericAudiences, strings.TrimSpace(value)) {
		return domain.NewValidationError(string(domain.FieldTargetUsers),
			"Target users should be specific, not generic")
	}
	return nil
}

// ValidateCoreFunctionality requires a descriptive functionality summary.
func ValidateCoreFunctionality(value string) error {
	if len(strings.TrimSpace(value)) < 10 {
		return domain.NewValidationError(string(domain.FieldCoreFunctionality),
			"Core functionality should be descriptive (at least 10 characters)")
	}
	return nil
}

// ValidateSuccessMetrics requires a specific metric description.
func ValidateSuccessMetrics(value string) error {
	if len(strings.TrimSpace(value)) < 5 {
		return domain.NewValidationError(string(domain.FieldSuccessMetrics),
			"Success metrics should be specific (at least 5 characters)")
	}
	return nil
}

// ValidateField runs the field-level validator for f.
func ValidateField(f domain.CoreField, value string) error {
	switch f {
	case domain.FieldProductName:
		return ValidateProductName(value)
	case domain.FieldProblemStatement:
		return ValidateProblemStatement(value)
	case domain.FieldTargetUsers:
		return ValidateTargetUsers(value)
	case domain.FieldCoreFunctionality:
		return ValidateCoreFunctionality(value)
	case domain.FieldSuccessMetrics:
		return ValidateSuccessMetrics(value)
	default:
		return domain.NewValidationError(string(f), "unknown field")
	}
}

func containsFold(list []string, value string) bool {
	for _, s := range list {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
