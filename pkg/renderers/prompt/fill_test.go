package prompt_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
	"github.com/sitegear/go-sitegear/pkg/renderers/prompt"
	"github.com/sitegear/go-sitegear/pkg/testsupport"
)

// scriptedDriver answers prompts by message. Text answers are consumed in
// order and re-asked while the validator rejects them, the way survey does.
type scriptedDriver struct {
	text     map[string][]string
	choice   map[string]int
	confirm  map[string]bool
	fail     error
	asked    []string
	infos    []string
	rejected int
}

func (d *scriptedDriver) nextText(message string, validate func(string) error) (string, error) {
	d.asked = append(d.asked, message)
	if d.fail != nil {
		return "", d.fail
	}
	for {
		queue := d.text[message]
		if len(queue) == 0 {
			return "", errors.New("no scripted answer for " + message)
		}
		answer := queue[0]
		d.text[message] = queue[1:]
		if validate != nil {
			if err := validate(answer); err != nil {
				d.rejected++
				continue
			}
		}
		return answer, nil
	}
}

func (d *scriptedDriver) Ask(_ context.Context, p prompt.Prompt) (prompt.Answer, error) {
	switch p.Control {
	case prompt.ControlConfirm:
		d.asked = append(d.asked, p.Message)
		if v, ok := d.confirm[p.Message]; ok {
			return prompt.Answer{Yes: v}, nil
		}
		return prompt.Answer{Yes: p.Yes}, nil
	case prompt.ControlSelect, prompt.ControlMultiSelect:
		d.asked = append(d.asked, p.Message)
		if idx, ok := d.choice[p.Message]; ok {
			return prompt.Answer{Picked: []int{idx}}, nil
		}
		return prompt.Answer{Picked: p.Selected}, nil
	default:
		text, err := d.nextText(p.Message, p.Validate)
		return prompt.Answer{Text: text}, err
	}
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestFill_FollowsConditions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		country   int
		text      map[string][]string
		want      map[string]any
		wantAsked []string
		wantInfos []string
	}{
		{
			name:      "australia asks state and postcode",
			country:   0,
			text:      map[string][]string{"State": {"NSW"}, "Postcode": {"2000"}},
			want:      map[string]any{"country": "AU", "state": "NSW", "postcode": "2000"},
			wantAsked: []string{"Country", "State", "Postcode"},
			wantInfos: []string{"Where should we deliver?", "== Address ==", "== Postal =="},
		},
		{
			name:      "new zealand skips state",
			country:   1,
			text:      map[string][]string{"Postcode": {"6011"}},
			want:      map[string]any{"country": "NZ", "postcode": "6011"},
			wantAsked: []string{"Country", "Postcode"},
			wantInfos: []string{"Where should we deliver?", "== Address ==", "== Postal =="},
		},
		{
			name:      "united states skips the postal group",
			country:   2,
			want:      map[string]any{"country": "US"},
			wantAsked: []string{"Country"},
			wantInfos: []string{"Where should we deliver?", "== Address =="},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			driver := &scriptedDriver{text: tc.text, choice: map[string]int{"Country": tc.country}}
			if driver.text == nil {
				driver.text = map[string][]string{}
			}
			got, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
				prompt.WithDriver(driver),
				prompt.WithLogger(testsupport.QuietLogger()),
			)
			if err != nil {
				t.Fatalf("Fill: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantAsked, driver.asked); diff != "" {
				t.Fatalf("asked mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantInfos, driver.infos); diff != "" {
				t.Fatalf("infos mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFill_ReasksUntilValid(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		text:   map[string][]string{"State": {"VIC"}, "Postcode": {"", "abc", "3000"}},
		choice: map[string]int{"Country": 0},
	}
	got, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
		prompt.WithDriver(driver),
		prompt.WithLogger(testsupport.QuietLogger()),
	)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if driver.rejected != 2 {
		t.Fatalf("rejected = %d, want 2", driver.rejected)
	}
	if got["postcode"] != "3000" {
		t.Fatalf("postcode = %v", got["postcode"])
	}
}

func TestFill_InitialValuesBecomeDefaults(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{text: map[string][]string{}}
	got, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
		prompt.WithDriver(driver),
		prompt.WithInitialValues(map[string]any{"country": "US", "postcode": "90210"}),
		prompt.WithLogger(testsupport.QuietLogger()),
	)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	// postcode is dropped: its group is inactive for US.
	if diff := cmp.Diff(map[string]any{"country": "US"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_SkipsCaptchaWithWarning(t *testing.T) {
	t.Parallel()

	logger, logs := testsupport.CaptureLogger()
	driver := &scriptedDriver{text: map[string][]string{}, choice: map[string]int{"Country": 2}}
	if _, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
		prompt.WithDriver(driver),
		prompt.WithLogger(logger),
	); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	for _, fragment := range []string{"skipping unsupported field", "kind=captcha", "field=captcha"} {
		if !strings.Contains(logs.String(), fragment) {
			t.Fatalf("log missing %q: %s", fragment, logs.String())
		}
	}
}

func TestFill_AbortOnUnsupported(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{text: map[string][]string{}, choice: map[string]int{"Country": 2}}
	_, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
		prompt.WithDriver(driver),
		prompt.WithPolicy(render.AbortOnUnsupported),
	)
	var unsupported *render.UnsupportedTypeError
	if !errors.As(err, &unsupported) || unsupported.Kind != form.KindCaptcha {
		t.Fatalf("expected unsupported captcha error, got %v", err)
	}
}

func TestFill_Errors(t *testing.T) {
	t.Parallel()

	if _, err := prompt.Fill(context.Background(), testsupport.AddressForm(t)); !errors.Is(err, prompt.ErrNoDriver) {
		t.Fatalf("expected ErrNoDriver, got %v", err)
	}

	aborting := &scriptedDriver{fail: prompt.ErrAborted, choice: map[string]int{"Country": 0}}
	if _, err := prompt.Fill(context.Background(), testsupport.AddressForm(t), prompt.WithDriver(aborting)); !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := prompt.Fill(ctx, testsupport.AddressForm(t), prompt.WithDriver(&scriptedDriver{})); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFill_CustomPrompter(t *testing.T) {
	t.Parallel()

	prompters := prompt.DefaultPrompters()
	err := prompters.Register(form.KindCaptcha, func() prompt.Prompter {
		return prompt.PrompterFunc(func(context.Context, prompt.Driver, prompt.Question) (any, error) {
			return "solved", nil
		})
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	driver := &scriptedDriver{text: map[string][]string{}, choice: map[string]int{"Country": 2}}
	got, err := prompt.Fill(context.Background(), testsupport.AddressForm(t),
		prompt.WithDriver(driver),
		prompt.WithPrompters(prompters),
	)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got["captcha"] != "solved" {
		t.Fatalf("captcha = %v", got["captcha"])
	}
}

// recordingDriver keeps every prompt and answers from a fixed table.
type recordingDriver struct {
	prompts []prompt.Prompt
	answers map[string]prompt.Answer
}

func (d *recordingDriver) Ask(_ context.Context, p prompt.Prompt) (prompt.Answer, error) {
	p.Validate = nil
	d.prompts = append(d.prompts, p)
	return d.answers[p.Field], nil
}

func (d *recordingDriver) Info(context.Context, string) error { return nil }

func TestDefaultPrompters_PromptsFollowFields(t *testing.T) {
	t.Parallel()

	f, err := form.New("survey")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	elements := []form.Element{}
	for _, entry := range []struct {
		label string
		field form.Field
	}{
		{"Age", form.MustField("age", form.TypeNumber,
			form.WithOption(form.OptionHelp, "In years"),
			form.WithOption(form.OptionDefault, 30))},
		{"PIN", form.MustField("pin", form.TypePassword, form.WithOption(form.OptionDefault, "0000"))},
		{"Subscribe", form.MustField("subscribe", form.TypeCheckbox, form.WithOption(form.OptionDefault, true))},
		{"Topics", form.MustField("topics", form.TypeSelect,
			form.WithOption("multiple", true),
			form.WithOption(form.OptionChoices, []any{
				map[string]any{"value": "go", "label": "Go"},
				map[string]any{"value": "web", "label": "Web"},
				map[string]any{"value": "ops", "label": "Ops"},
			}),
			form.WithOption(form.OptionDefault, []any{"ops"}))},
	} {
		el, err := form.NewFieldElement(entry.label, entry.field)
		if err != nil {
			t.Fatalf("element %s: %v", entry.label, err)
		}
		elements = append(elements, el)
	}
	if err := f.Add(elements...); err != nil {
		t.Fatalf("add: %v", err)
	}

	driver := &recordingDriver{answers: map[string]prompt.Answer{
		"age":       {Text: "41"},
		"pin":       {Text: "1234"},
		"subscribe": {Yes: false},
		"topics":    {Picked: []int{0, 2}},
	}}
	got, err := prompt.Fill(context.Background(), f, prompt.WithDriver(driver))
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	wantPrompts := []prompt.Prompt{
		{Control: prompt.ControlLine, Field: "age", Message: "Age", Help: "In years", Default: "30"},
		{Control: prompt.ControlSecret, Field: "pin", Message: "PIN"},
		{Control: prompt.ControlConfirm, Field: "subscribe", Message: "Subscribe", Yes: true},
		{Control: prompt.ControlMultiSelect, Field: "topics", Message: "Topics",
			Choices: []string{"Go", "Web", "Ops"}, Selected: []int{2}},
	}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{
		"age":       int64(41),
		"pin":       "1234",
		"subscribe": false,
		"topics":    []string{"go", "ops"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
