package html

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
)

// FieldKinds lists the field kinds Register wires up.
var FieldKinds = []string{
	form.TypeText,
	form.TypeEmail,
	form.TypePassword,
	form.TypeNumber,
	form.TypeHidden,
	form.TypeTextarea,
	form.TypeCheckbox,
	form.TypeSelect,
	form.TypeRadio,
	form.KindCaptcha,
}

// Register installs the HTML element and field renderers into factory.
func Register(factory *render.Factory, engine *Engine) error {
	if factory == nil {
		return render.ErrNilFactory
	}
	if engine == nil {
		return fmt.Errorf("html: engine is nil")
	}

	elements := map[string]render.Constructor[render.ElementRenderer]{
		form.KindFieldset: elementCtor(engine, renderFieldset),
		form.KindField:    elementCtor(engine, renderFieldElement),
		form.KindMarkup:   elementCtor(engine, renderMarkup),
	}
	for _, kind := range []string{form.KindFieldset, form.KindField, form.KindMarkup} {
		if err := factory.RegisterElement(kind, elements[kind]); err != nil {
			return err
		}
	}

	fields := map[string]render.Constructor[render.FieldRenderer]{
		form.TypeText:     fieldCtor(engine, renderInput),
		form.TypeEmail:    fieldCtor(engine, renderInput),
		form.TypePassword: fieldCtor(engine, renderInput),
		form.TypeNumber:   fieldCtor(engine, renderInput),
		form.TypeHidden:   fieldCtor(engine, renderInput),
		form.TypeTextarea: fieldCtor(engine, renderTextarea),
		form.TypeCheckbox: fieldCtor(engine, renderCheckbox),
		form.TypeSelect:   fieldCtor(engine, renderChoices("select")),
		form.TypeRadio:    fieldCtor(engine, renderChoices("radio")),
		form.KindCaptcha:  fieldCtor(engine, renderCaptcha),
	}
	for _, kind := range FieldKinds {
		if err := factory.RegisterField(kind, fields[kind]); err != nil {
			return err
		}
	}
	return nil
}

type elementFunc func(ctx context.Context, e *Engine, w io.Writer, el form.Element, scope *render.Scope) error

type fieldFunc func(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error

func elementCtor(engine *Engine, fn elementFunc) render.Constructor[render.ElementRenderer] {
	return func() render.ElementRenderer {
		return render.ElementRendererFunc(func(ctx context.Context, w io.Writer, el form.Element, scope *render.Scope) error {
			return fn(ctx, engine, w, el, scope)
		})
	}
}

func fieldCtor(engine *Engine, fn fieldFunc) render.Constructor[render.FieldRenderer] {
	return func() render.FieldRenderer {
		return render.FieldRendererFunc(func(_ context.Context, w io.Writer, field form.Field, scope *render.Scope) error {
			return fn(engine, w, field, scope)
		})
	}
}

func renderFieldset(ctx context.Context, e *Engine, w io.Writer, el form.Element, scope *render.Scope) error {
	var children bytes.Buffer
	if err := scope.RenderChildren(ctx, &children, el); err != nil {
		return err
	}
	return e.Execute(w, "fieldset", pongo2.Context{
		"label":      el.Label(),
		"depth":      scope.Depth(),
		"conditions": conditionsJSON(el),
		"hidden":     scope.Suppressed(),
		"children":   children.String(),
	})
}

func renderFieldElement(ctx context.Context, e *Engine, w io.Writer, el form.Element, scope *render.Scope) error {
	fe, ok := el.(*form.FieldElement)
	if !ok {
		return fmt.Errorf("html: element of kind %q is not a field element", el.Kind())
	}
	field := fe.Field()

	var control bytes.Buffer
	if err := scope.RenderField(ctx, &control, field); err != nil {
		return err
	}
	if control.Len() == 0 {
		// Unsupported field skipped by policy; drop the wrapper too.
		return nil
	}
	conditions := conditionsJSON(el)
	hiddenType := field.Type() == form.TypeHidden
	if hiddenType && conditions == "" {
		_, err := control.WriteTo(w)
		return err
	}

	data := controlData(field, scope)
	data["kind"] = field.Kind()
	data["conditions"] = conditions
	data["hidden"] = scope.Suppressed()
	data["control"] = strings.TrimRight(control.String(), "\n")
	if hiddenType {
		// Wrapped only so the runtime can disable the input with its conditions.
		data["label"] = ""
		data["invalid"] = false
		return e.Execute(w, "field", data)
	}
	data["label"] = el.Label()
	data["help"] = sanitizeMarkup(form.StringOption(field, form.OptionHelp))
	data["errors"] = scope.Errors(field.Name())
	return e.Execute(w, "field", data)
}

func renderMarkup(_ context.Context, e *Engine, w io.Writer, el form.Element, scope *render.Scope) error {
	m, ok := el.(*form.Markup)
	if !ok {
		return fmt.Errorf("html: element of kind %q is not markup", el.Kind())
	}
	return e.Execute(w, "markup", pongo2.Context{
		"content":    sanitizeMarkup(m.Content()),
		"conditions": conditionsJSON(el),
		"hidden":     scope.Suppressed(),
	})
}

func renderInput(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error {
	data := controlData(field, scope)
	data["type"] = field.Type()
	return e.Execute(w, "input", data)
}

func renderTextarea(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error {
	data := controlData(field, scope)
	if rows, ok := field.Option("rows"); ok {
		data["rows"] = fmt.Sprint(rows)
	}
	return e.Execute(w, "textarea", data)
}

func renderCheckbox(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error {
	data := controlData(field, scope)
	value, _ := scope.Value(field.Name())
	data["checked"] = truthy(value)
	return e.Execute(w, "checkbox", data)
}

func renderChoices(template string) fieldFunc {
	return func(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error {
		data := controlData(field, scope)
		value, _ := scope.Value(field.Name())
		selected := make(map[string]struct{})
		for _, v := range stringsOf(value) {
			selected[v] = struct{}{}
		}
		choices := form.ChoicesOf(field)
		items := make([]map[string]any, 0, len(choices))
		for _, c := range choices {
			_, isSelected := selected[c.Value]
			items = append(items, map[string]any{
				"value":    c.Value,
				"label":    c.Label,
				"selected": isSelected,
			})
		}
		data["choices"] = items
		return e.Execute(w, template, data)
	}
}

func renderCaptcha(e *Engine, w io.Writer, field form.Field, scope *render.Scope) error {
	data := controlData(field, scope)
	data["image"] = form.StringOption(field, "image")
	alt := form.StringOption(field, "alt")
	if alt == "" {
		alt = "Verification image"
	}
	data["alt"] = alt
	return e.Execute(w, "captcha", data)
}

// controlData is the template context shared by every control.
func controlData(field form.Field, scope *render.Scope) pongo2.Context {
	id := controlID(scope.Form().Name(), field.Name())
	value, _ := scope.Value(field.Name())
	errs := scope.Errors(field.Name())

	data := pongo2.Context{
		"id":          id,
		"name":        field.Name(),
		"value":       valueString(value),
		"placeholder": form.StringOption(field, form.OptionPlaceholder),
		"invalid":     len(errs) > 0,
	}

	var describedBy []string
	if form.StringOption(field, form.OptionHelp) != "" {
		describedBy = append(describedBy, id+"-help")
	}
	for i := range errs {
		describedBy = append(describedBy, fmt.Sprintf("%s-error-%d", id, i+1))
	}
	data["describedby"] = strings.Join(describedBy, " ")

	for _, c := range field.Constraints() {
		switch v := c.(type) {
		case form.Required:
			data["required"] = true
		case form.Length:
			if v.Min > 0 {
				data["minlength"] = v.Min
			}
			if v.Max > 0 {
				data["maxlength"] = v.Max
			}
		case form.Pattern:
			if v.Expr != nil {
				data["pattern"] = v.Expr.String()
			}
		}
	}
	return data
}

func controlID(formName, fieldName string) string {
	replacer := strings.NewReplacer(" ", "-", ".", "-", "[", "-", "]", "")
	if formName == "" {
		return replacer.Replace(fieldName)
	}
	return replacer.Replace(formName + "-" + fieldName)
}

type conditionPayload struct {
	Condition string         `json:"condition"`
	Options   map[string]any `json:"options,omitempty"`
}

// conditionsJSON serialises an element's conditions for client-side
// re-evaluation. Options that cannot be encoded drop the attribute.
func conditionsJSON(el form.Element) string {
	conditions := el.Conditions()
	if len(conditions) == 0 {
		return ""
	}
	payload := make([]conditionPayload, 0, len(conditions))
	for _, c := range conditions {
		payload = append(payload, conditionPayload{Condition: c.Name(), Options: c.Options()})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}
