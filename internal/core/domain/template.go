package domain

// SectionType declares how a section's generated text is structured.
type SectionType string

// Section types.
const (
	SectionFreeform SectionType = "freeform"
	SectionList     SectionType = "list"
)

// Default item bounds for list sections.
const (
	DefaultMinItems = 3
	DefaultMaxItems = 10
)

// HeaderSectionKey is rendered from context rather than generated.
const HeaderSectionKey = "header"

// Subsection is a named part of a keyed section.
type Subsection struct {
	// Name is matched case-insensitively against generated header lines.
	Name string `json:"name" yaml:"name"`

	// Prompt is the guidance shown to the model for this subsection.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// SectionSpec describes one section of a template.
type SectionSpec struct {
	Key         string       `json:"key" yaml:"key"`
	Title       string       `json:"title" yaml:"title"`
	Required    bool         `json:"required" yaml:"required"`
	Optional    bool         `json:"optional,omitempty" yaml:"optional,omitempty"`
	Type        SectionType  `json:"type,omitempty" yaml:"type,omitempty"`
	MinItems    int          `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems    int          `json:"max_items,omitempty" yaml:"max_items,omitempty"`
	Format      string       `json:"format,omitempty" yaml:"format,omitempty"`
	Examples    []string     `json:"examples,omitempty" yaml:"examples,omitempty"`
	Prompt      string       `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Prompts     []string     `json:"prompts,omitempty" yaml:"prompts,omitempty"`
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`

	// Pattern is a fill-in sentence shape such as "As a [user], I want ...".
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Render is the substitution text for the header section.
	// Placeholders are written {{name}}.
	Render string `json:"render,omitempty" yaml:"render,omitempty"`
}

// IsList reports whether the section is a list section.
func (s SectionSpec) IsList() bool {
	return s.Type == SectionList
}

// IsKeyed reports whether the section has declared subsections.
func (s SectionSpec) IsKeyed() bool {
	return !s.IsList() && len(s.Subsections) > 0
}

// Bounds returns the list item bounds with defaults applied.
func (s SectionSpec) Bounds() (minItems, maxItems int) {
	minItems, maxItems = s.MinItems, s.MaxItems
	if minItems <= 0 {
		minItems = DefaultMinItems
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return minItems, maxItems
}

// Template is the section schema for one kind of document.
// Templates are immutable once loaded.
type Template struct {
	// Kind is the template identifier ("pmd", "lean", ...).
	Kind string `json:"kind" yaml:"kind"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Description says what the template is for.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// DocumentKind is the kind of document the template produces.
	DocumentKind DocumentKind `json:"document_kind" yaml:"document_kind"`

	// Sections are the section specs in document order.
	Sections []SectionSpec `json:"sections" yaml:"sections"`
}

// Section returns the spec for key.
func (t *Template) Section(key string) (SectionSpec, bool) {
	for _, s := range t.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// Keys returns the section keys in order.
func (t *Template) Keys() []string {
	keys := make([]string, len(t.Sections))
	for i, s := range t.Sections {
		keys[i] = s.Key
	}
	return keys
}

// RequiredKeys returns the keys of required sections in order.
func (t *Template) RequiredKeys() []string {
	var keys []string
	for _, s := range t.Sections {
		if s.Required {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// Validate checks the template is well formed.
func (t *Template) Validate() error {
	if t.Kind == "" {
		return NewValidationError("kind", "template kind is required")
	}
	seen := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		if s.Key == "" {
			return NewValidationError("sections", "section key is required")
		}
		if seen[s.Key] {
			return NewValidationError(s.Key, "duplicate section key")
		}
		seen[s.Key] = true
		switch s.Type {
		case "", SectionFreeform, SectionList:
		default:
			return NewValidationError(s.Key, "unknown section type "+string(s.Type))
		}
		if s.MinItems > 0 && s.MaxItems > 0 && s.MinItems > s.MaxItems {
			return NewValidationError(s.Key, "min_items exceeds max_items")
		}
	}
	return nil
}

// TemplateInfo summarises a template for listings.
type TemplateInfo struct {
	Kind             string
	Name             string
	Description      string
	SectionCount     int
	RequiredSections []string
}

// Info returns the listing summary of the template.
func (t *Template) Info() TemplateInfo {
	return TemplateInfo{
		Kind:             t.Kind,
		Name:             t.Name,
		Description:      t.Description,
		SectionCount:     len(t.Sections),
		RequiredSections: t.RequiredKeys(),
	}
}

// TemplateDataReport is the result of checking user data against a template.
type TemplateDataReport struct {
	Errors          []string
	MissingRequired []string
	IsValid         bool
}
