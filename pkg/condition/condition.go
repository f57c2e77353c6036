package condition

// Options carries the configuration a condition is constructed from. Keys are
// validated eagerly by each constructor.
type Options map[string]any

// Condition decides whether a form element is active for a given value
// mapping. Implementations must be pure: the same values always produce the
// same answer and evaluation never mutates its input.
type Condition interface {
	// Name identifies the condition variant (e.g. "exact-match"). Together with
	// Options it allows the condition to be mirrored by a client-side runtime.
	Name() string
	Options() Options
	Matches(values map[string]any) bool
}

// Func adapts a predicate into a Condition. The name is reported as-is and no
// options are exposed.
type Func struct {
	Label string
	Fn    func(values map[string]any) bool
}

func (f Func) Name() string { return f.Label }

func (f Func) Options() Options { return nil }

// Matches delegates to the underlying function; a nil function never matches.
func (f Func) Matches(values map[string]any) bool {
	if f.Fn == nil {
		return false
	}
	return f.Fn(values)
}

type all struct {
	conditions []Condition
}

// All returns a conjunction of the supplied conditions. A conjunction of zero
// conditions always matches. Nil entries are ignored.
func All(conditions ...Condition) Condition {
	filtered := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if c != nil {
			filtered = append(filtered, c)
		}
	}
	return all{conditions: filtered}
}

func (a all) Name() string { return "all" }

func (a all) Options() Options { return nil }

func (a all) Matches(values map[string]any) bool {
	for _, c := range a.conditions {
		if !c.Matches(values) {
			return false
		}
	}
	return true
}

func (o Options) clone() Options {
	if len(o) == 0 {
		return nil
	}
	out := make(Options, len(o))
	for key, value := range o {
		out[key] = value
	}
	return out
}
