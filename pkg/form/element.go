package form

import (
	"fmt"
	"strings"

	"github.com/sitegear/go-sitegear/pkg/condition"
)

// Element kinds provided by this package.
const (
	KindField    = "field"
	KindFieldset = "fieldset"
	KindMarkup   = "markup"
)

// Element is a node in a form's structural tree. The tree is strict: every
// element has at most one parent and no element contains itself.
//
// Custom element kinds are defined by embedding ElementBase and implementing
// Kind; the embedded base supplies the remaining methods.
type Element interface {
	Kind() string
	Label() string
	Children() []Element
	Conditions() []condition.Condition
	AddCondition(c condition.Condition) error
	// Active reports whether every attached condition matches values. An
	// element without conditions is always active.
	Active(values map[string]any) bool
	Parent() Element
	Freeze()
	Frozen() bool

	base() *ElementBase
}

// ElementOption configures the shared element attributes at construction.
type ElementOption func(*ElementBase)

// WithConditions attaches conditions to the element being built.
func WithConditions(conditions ...condition.Condition) ElementOption {
	return func(b *ElementBase) {
		for _, c := range conditions {
			if c != nil {
				b.conditions = append(b.conditions, c)
			}
		}
	}
}

// ElementBase carries the label, conditions and tree links shared by every
// element kind.
type ElementBase struct {
	label      string
	conditions []condition.Condition
	parent     Element
	attached   bool
	frozen     bool
}

func (b *ElementBase) init(label string, opts []ElementOption) {
	b.label = strings.TrimSpace(label)
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
}

// InitElement applies label and options to an embedded base. Custom element
// kinds call it from their constructors.
func InitElement(b *ElementBase, label string, opts ...ElementOption) {
	b.init(label, opts)
}

func (b *ElementBase) Label() string { return b.label }

// SetLabel replaces the label until the element is frozen.
func (b *ElementBase) SetLabel(label string) error {
	if b.frozen {
		return &ImmutableStateError{Target: b.describe(), Operation: "relabel"}
	}
	b.label = strings.TrimSpace(label)
	return nil
}

// Children returns nil; container kinds override it.
func (b *ElementBase) Children() []Element { return nil }

func (b *ElementBase) Conditions() []condition.Condition {
	return append([]condition.Condition(nil), b.conditions...)
}

func (b *ElementBase) AddCondition(c condition.Condition) error {
	if b.frozen {
		return &ImmutableStateError{Target: b.describe(), Operation: "add condition to"}
	}
	if c == nil {
		return fmt.Errorf("form: condition is nil for %s", b.describe())
	}
	b.conditions = append(b.conditions, c)
	return nil
}

func (b *ElementBase) Active(values map[string]any) bool {
	for _, c := range b.conditions {
		if !c.Matches(values) {
			return false
		}
	}
	return true
}

func (b *ElementBase) Parent() Element { return b.parent }

func (b *ElementBase) Freeze() { b.frozen = true }

func (b *ElementBase) Frozen() bool { return b.frozen }

func (b *ElementBase) base() *ElementBase { return b }

func (b *ElementBase) describe() string {
	if b.label == "" {
		return "element"
	}
	return fmt.Sprintf("element %q", b.label)
}

// attach links child under parent. A nil parent marks a top-level form
// element.
// attachAll links every child to parent, or none of them when any child is
// nil, already attached, repeated, or an ancestor of parent.
func attachAll(parent Element, children []Element) error {
	seen := make(map[Element]struct{}, len(children))
	for _, child := range children {
		if child == nil {
			return ErrNilElement
		}
		cb := child.base()
		for p := parent; p != nil; p = p.Parent() {
			if p == child {
				return fmt.Errorf("%w: %s", ErrCycle, cb.describe())
			}
		}
		if _, dup := seen[child]; dup || cb.attached {
			return fmt.Errorf("%w: %s", ErrAlreadyAttached, cb.describe())
		}
		seen[child] = struct{}{}
	}
	for _, child := range children {
		cb := child.base()
		cb.parent = parent
		cb.attached = true
	}
	return nil
}

// FieldElement is a leaf element wrapping exactly one field.
type FieldElement struct {
	ElementBase
	field Field
}

// NewFieldElement wraps field in a leaf element.
func NewFieldElement(label string, field Field, opts ...ElementOption) (*FieldElement, error) {
	if field == nil {
		return nil, fmt.Errorf("form: field element %q requires a field", label)
	}
	el := &FieldElement{field: field}
	el.init(label, opts)
	return el, nil
}

func (e *FieldElement) Kind() string { return KindField }

func (e *FieldElement) Field() Field { return e.field }

// Group is a container element (rendered as a fieldset by the HTML renderers).
type Group struct {
	ElementBase
	children []Element
}

// NewGroup constructs a group and attaches the supplied children in order.
func NewGroup(label string, children []Element, opts ...ElementOption) (*Group, error) {
	g := &Group{}
	g.init(label, opts)
	if err := g.Add(children...); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) Kind() string { return KindFieldset }

func (g *Group) Children() []Element {
	return append([]Element(nil), g.children...)
}

// Add appends children. Each child must be unattached and must not be an
// ancestor of g. On error no child is attached.
func (g *Group) Add(children ...Element) error {
	if g.frozen {
		return &ImmutableStateError{Target: g.describe(), Operation: "add children to"}
	}
	if err := attachAll(g, children); err != nil {
		return err
	}
	g.children = append(g.children, children...)
	return nil
}

// Markup is a static content element, such as an introduction paragraph.
// Renderers are expected to sanitise the content.
type Markup struct {
	ElementBase
	content string
}

// NewMarkup constructs a markup element.
func NewMarkup(content string, opts ...ElementOption) *Markup {
	m := &Markup{content: content}
	m.init("", opts)
	return m
}

func (m *Markup) Kind() string { return KindMarkup }

func (m *Markup) Content() string { return m.content }
