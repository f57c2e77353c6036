package testsupport

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/form/definition"
)

// AddressDefinition is a small form exercising nested conditions: state is
// only shown for AU, the postal fieldset for AU and NZ.
const AddressDefinition = `
name: address
action: /checkout/address
method: post
elements:
  - kind: markup
    content: "<p>Where should we <strong>deliver</strong>?</p>"
  - kind: fieldset
    label: Address
    children:
      - kind: field
        label: Country
        field:
          name: country
          type: select
          options:
            default: AU
            choices: [AU, NZ, US]
        constraints:
          - type: required
      - kind: field
        label: State
        field: {name: state, type: text}
        conditions:
          - condition: exact-match
            options: {field: country, values: [AU]}
      - kind: fieldset
        label: Postal
        conditions:
          - condition: exact-match
            options: {field: country, values: [AU, NZ]}
        children:
          - kind: field
            label: Postcode
            field: {name: postcode, type: text}
            constraints:
              - type: required
              - type: pattern
                options: {pattern: "^[0-9]{4}$"}
  - kind: field
    label: Are you human?
    field: {name: captcha, type: captcha, options: {image: /captcha.png}}
`

// AddressForm builds a fresh, finalized copy of AddressDefinition.
func AddressForm(t testing.TB) *form.Form {
	t.Helper()

	f, err := definition.Parse([]byte(AddressDefinition), definition.WithSource("address.yaml"))
	if err != nil {
		t.Fatalf("parse address form: %v", err)
	}
	return f
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogBuffer collects text-handler output for assertions. Safe for use by
// concurrent renders.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLogger returns a logger writing to the returned buffer.
func CaptureLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}
