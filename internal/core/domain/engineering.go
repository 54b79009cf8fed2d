package domain

// EngineeringInputs are caller-supplied values carried into a spec unchanged.
type EngineeringInputs struct {
	Constraints     []string `json:"constraints,omitempty"`
	Components      []string `json:"components,omitempty"`
	Integrations    []string `json:"integrations,omitempty"`
	TechStack       []string `json:"tech_stack,omitempty"`
	TestingStrategy string   `json:"testing_strategy,omitempty"`
	EffortEstimate  string   `json:"effort_estimate,omitempty"`
	Timeline        []string `json:"timeline,omitempty"`
	Resources       []string `json:"resources,omitempty"`
}

// TechnicalRequirements is the requirements facet of a spec.
type TechnicalRequirements struct {
	Functional    []string `json:"functional"`
	NonFunctional []string `json:"non_functional"`
	Constraints   []string `json:"constraints"`
}

// Architecture is the architecture facet of a spec.
type Architecture struct {
	Overview     string   `json:"overview"`
	Components   []string `json:"components"`
	Integrations []string `json:"integrations"`
}

// Implementation is the delivery facet of a spec.
type Implementation struct {
	TechnologyStack []string `json:"technology_stack"`
	Phases          string   `json:"phases"`
	TestingStrategy string   `json:"testing_strategy"`
}

// Estimates is the planning facet of a spec.
type Estimates struct {
	Effort    string   `json:"effort"`
	Timeline  []string `json:"timeline"`
	Resources []string `json:"resources"`
}

// EngineeringSpec is an engineering specification derived from a PMD.
type EngineeringSpec struct {
	PMDReference          string                `json:"pmd_reference"`
	TechnicalRequirements TechnicalRequirements `json:"technical_requirements"`
	Architecture          Architecture          `json:"architecture"`
	Implementation        Implementation        `json:"implementation"`
	Estimates             Estimates             `json:"estimates"`
}

// Content converts the spec into keyed document content.
func (s *EngineeringSpec) Content() Content {
	return Content{
		{Key: "technical_requirements", Value: KeyedValue([]KeyedEntry{
			{Key: "functional", Value: bulletLines(s.TechnicalRequirements.Functional)},
			{Key: "non_functional", Value: bulletLines(s.TechnicalRequirements.NonFunctional)},
			{Key: "constraints", Value: bulletLines(s.TechnicalRequirements.Constraints)},
		})},
		{Key: "architecture", Value: KeyedValue([]KeyedEntry{
			{Key: "overview", Value: s.Architecture.Overview},
			{Key: "components", Value: bulletLines(s.Architecture.Components)},
			{Key: "integrations", Value: bulletLines(s.Architecture.Integrations)},
		})},
		{Key: "implementation", Value: KeyedValue([]KeyedEntry{
			{Key: "technology_stack", Value: bulletLines(s.Implementation.TechnologyStack)},
			{Key: "phases", Value: s.Implementation.Phases},
			{Key: "testing_strategy", Value: s.Implementation.TestingStrategy},
		})},
		{Key: "estimates", Value: KeyedValue([]KeyedEntry{
			{Key: "effort", Value: s.Estimates.Effort},
			{Key: "timeline", Value: bulletLines(s.Estimates.Timeline)},
			{Key: "resources", Value: bulletLines(s.Estimates.Resources)},
		})},
	}
}

func bulletLines(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "\n"
		}
		out += "- " + item
	}
	return out
}
