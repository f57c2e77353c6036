package render

import "log/slog"

// Policy controls what a tree walk does when a node has no renderer.
type Policy int

const (
	// SkipUnsupported logs a warning, omits the node and keeps rendering its
	// siblings.
	SkipUnsupported Policy = iota
	// AbortOnUnsupported stops the walk and returns the *UnsupportedTypeError.
	AbortOnUnsupported
)

func (p Policy) String() string {
	switch p {
	case SkipUnsupported:
		return "skip"
	case AbortOnUnsupported:
		return "abort"
	default:
		return "unknown"
	}
}

// Options carry per-request data into a render pass without touching the
// form model.
type Options struct {
	// Values pre-populates controls and drives condition evaluation. When nil
	// the form defaults are used.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field name.
	// Unknown keys are rendered as form-level messages.
	Errors map[string][]string
	// Hidden fields are emitted before the visible elements in name order.
	Hidden []HiddenField
	// IncludeInactive renders elements whose conditions do not hold so a
	// client can toggle them; renderers see Scope.Suppressed() == true.
	IncludeInactive bool
	// Policy applies to unsupported element and field kinds.
	Policy Policy
	// Logger receives skip warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
