// Package generation builds scoped structured-output requests for the language model,
// runs them and parses the returned text as JSON.
package generation

// Scope names the part of a course tree a request asks the model for
type Scope string

const (
	ScopeCourse        Scope = "course"
	ScopeModule        Scope = "module"
	ScopeLesson        Scope = "lesson"
	ScopeLessonContent Scope = "lesson content"
	ScopeOutcomes      Scope = "learning outcomes"
)

// Schema type names, as the structured-output API spells them
const (
	TypeString = "STRING"
	TypeArray  = "ARRAY"
	TypeObject = "OBJECT"
)

// Schema describes the JSON the model must return. It mirrors the subset of OpenAPI that
// the model API accepts for structured output.
type Schema struct {
	Type        string             `json:"type"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`

	// PropertyOrdering fixes the order in which the model emits object properties
	PropertyOrdering []string `json:"propertyOrdering,omitempty"`
}

// Request is one self-contained generation call
type Request struct {
	Scope             Scope
	Prompt            string
	SystemInstruction string
	Schema            *Schema
}
