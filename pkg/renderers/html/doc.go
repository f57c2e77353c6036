// Package html renders forms as HTML through pongo2 templates. Register wires
// one renderer per element and field kind into a render.Factory; Renderer
// wraps the result in a <form> tag with hidden fields, form-level errors and
// optional go-theme CSS custom properties.
package html
