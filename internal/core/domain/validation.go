package domain

// CoreField identifies one of the five fields needed before generation.
type CoreField string

// Core requirement fields in their fixed reporting order.
const (
	FieldProductName       CoreField = "product_name"
	FieldProblemStatement  CoreField = "problem_statement"
	FieldTargetUsers       CoreField = "target_users"
	FieldCoreFunctionality CoreField = "core_functionality"
	FieldSuccessMetrics    CoreField = "success_metrics"
)

// CoreFields lists the required fields in reporting order.
var CoreFields = []CoreField{
	FieldProductName,
	FieldProblemStatement,
	FieldTargetUsers,
	FieldCoreFunctionality,
	FieldSuccessMetrics,
}

// DisplayName returns the human-readable name used in missing-info lists.
func (f CoreField) DisplayName() string {
	switch f {
	case FieldProductName:
		return "Product/Feature Name"
	case FieldProblemStatement:
		return "Problem Statement"
	case FieldTargetUsers:
		return "Target Users"
	case FieldCoreFunctionality:
		return "Core Functionality"
	case FieldSuccessMetrics:
		return "Success Metrics"
	default:
		return string(f)
	}
}

// CoreFieldByName resolves a field key or display name.
func CoreFieldByName(name string) (CoreField, bool) {
	for _, f := range CoreFields {
		if string(f) == name || f.DisplayName() == name {
			return f, true
		}
	}
	return "", false
}

// ValidationResult reports how completely free text covers the core fields.
type ValidationResult struct {
	// ExtractedInfo maps each detected field to its evidence.
	// For keyword fields the evidence is "detected".
	ExtractedInfo map[CoreField]string

	// MissingInfo lists display names of undetected fields in CoreFields order.
	MissingInfo []string

	// IsSufficient is true iff MissingInfo is empty.
	IsSufficient bool

	// CompletenessScore is found/total over CoreFields, in [0, 1].
	CompletenessScore float64
}
