package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Control is the kind of terminal control a Prompt is shown with.
type Control int

const (
	ControlLine Control = iota
	ControlSecret
	ControlText
	ControlConfirm
	ControlSelect
	ControlMultiSelect
)

func (c Control) String() string {
	switch c {
	case ControlLine:
		return "line"
	case ControlSecret:
		return "secret"
	case ControlText:
		return "text"
	case ControlConfirm:
		return "confirm"
	case ControlSelect:
		return "select"
	case ControlMultiSelect:
		return "multiselect"
	default:
		return "unknown"
	}
}

// Prompt is one question derived from a field, ready for a Driver.
type Prompt struct {
	Control Control
	Field   string
	Message string
	Help    string
	// Default pre-fills line and text controls.
	Default string
	// Yes is the confirm default.
	Yes bool
	// Choices and Selected (indices into Choices) drive the select controls.
	Choices  []string
	Selected []int
	// Validate rejects a typed answer; the driver asks again until it passes.
	Validate func(string) error
}

// Answer is what the user gave. Text is set for line, secret and text
// controls, Yes for confirm and Picked (indices into Choices) for selects.
type Answer struct {
	Text   string
	Yes    bool
	Picked []int
}

// Driver puts prompts to a user. Implementations return ErrAborted when the
// user interrupts input.
type Driver interface {
	Ask(ctx context.Context, p Prompt) (Answer, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns a Driver backed by survey on the process terminal.
// Info messages go to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Ask(ctx context.Context, p Prompt) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	switch p.Control {
	case ControlConfirm:
		var yes bool
		err := askOne(&survey.Confirm{Message: p.Message, Help: p.Help, Default: p.Yes}, &yes, nil)
		return Answer{Yes: yes}, err

	case ControlSelect:
		if len(p.Choices) == 0 {
			return Answer{}, fmt.Errorf("prompt: field %q has no choices", p.Field)
		}
		q := &survey.Select{Message: p.Message, Help: p.Help, Options: p.Choices}
		if picked := labelsAt(p.Choices, p.Selected); len(picked) > 0 {
			q.Default = picked[0]
		}
		var label string
		if err := askOne(q, &label, nil); err != nil {
			return Answer{}, err
		}
		return Answer{Picked: positions(p.Choices, []string{label})}, nil

	case ControlMultiSelect:
		q := &survey.MultiSelect{Message: p.Message, Help: p.Help, Options: p.Choices}
		if picked := labelsAt(p.Choices, p.Selected); len(picked) > 0 {
			q.Default = picked
		}
		var labels []string
		if err := askOne(q, &labels, nil); err != nil {
			return Answer{}, err
		}
		return Answer{Picked: positions(p.Choices, labels)}, nil
	}

	var q survey.Prompt
	switch p.Control {
	case ControlSecret:
		q = &survey.Password{Message: p.Message, Help: p.Help}
	case ControlText:
		q = &survey.Multiline{Message: p.Message, Help: p.Help, Default: p.Default}
	case ControlLine:
		q = &survey.Input{Message: p.Message, Help: p.Help, Default: p.Default}
	default:
		return Answer{}, fmt.Errorf("prompt: field %q: unknown control %s", p.Field, p.Control)
	}
	var text string
	err := askOne(q, &text, p.Validate)
	return Answer{Text: text}, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// askOne runs a survey prompt, attaching validate and mapping Ctrl+C to
// ErrAborted.
func askOne(q survey.Prompt, response any, validate func(string) error) error {
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	err := survey.AskOne(q, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func labelsAt(choices []string, indices []int) []string {
	var out []string
	for _, i := range indices {
		if i >= 0 && i < len(choices) {
			out = append(out, choices[i])
		}
	}
	return out
}

// positions maps chosen labels back to their first index in choices.
func positions(choices, labels []string) []int {
	out := make([]int, 0, len(labels))
	for _, label := range labels {
		for i, choice := range choices {
			if choice == label {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
