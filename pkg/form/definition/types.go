package definition

// Document is the serialised shape of a form definition file.
type Document struct {
	Name     string    `json:"name" yaml:"name"`
	Action   string    `json:"action" yaml:"action"`
	Method   string    `json:"method" yaml:"method"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Element describes one node of the element tree. Kind is "field",
// "fieldset" or "markup"; an empty kind is inferred from the other keys.
type Element struct {
	Kind        string       `json:"kind" yaml:"kind"`
	Label       string       `json:"label" yaml:"label"`
	Content     string       `json:"content" yaml:"content"`
	Field       *Field       `json:"field" yaml:"field"`
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
	Conditions  []Condition  `json:"conditions" yaml:"conditions"`
	Children    []Element    `json:"children" yaml:"children"`
}

// Field describes the field held by a "field" element.
type Field struct {
	Name    string         `json:"name" yaml:"name"`
	Type    string         `json:"type" yaml:"type"`
	Options map[string]any `json:"options" yaml:"options"`
}

// Constraint names a form.Constraint and its options.
type Constraint struct {
	Type    string         `json:"type" yaml:"type"`
	Options map[string]any `json:"options" yaml:"options"`
}

// Condition names a condition variant registered in a condition.Registry.
type Condition struct {
	Condition string         `json:"condition" yaml:"condition"`
	Options   map[string]any `json:"options" yaml:"options"`
}
