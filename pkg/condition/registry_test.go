package condition_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sitegear/go-sitegear/pkg/condition"
)

func TestRegistryBuiltins(t *testing.T) {
	t.Parallel()

	reg := condition.NewRegistry()
	want := []string{"exact-match", "not-empty", "range"}
	if diff := cmp.Diff(want, reg.List()); diff != "" {
		t.Fatalf("registered names mismatch (-want +got):\n%s", diff)
	}

	c, err := reg.Build(" Exact-Match ", condition.Options{"field": "country", "values": []any{"AU"}})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if c.Name() != condition.NameExactMatch {
		t.Fatalf("unexpected condition name %q", c.Name())
	}
	if !c.Matches(map[string]any{"country": "AU"}) {
		t.Fatalf("expected built condition to match")
	}
}

func TestRegistryBuildErrors(t *testing.T) {
	t.Parallel()

	reg := condition.NewRegistry()

	if _, err := reg.Build("nope", nil); !errors.Is(err, condition.ErrUnknownCondition) {
		t.Fatalf("expected ErrUnknownCondition, got %v", err)
	}
	if _, err := reg.Build(condition.NameExactMatch, condition.Options{"field": "country"}); !errors.Is(err, condition.ErrMissingOption) {
		t.Fatalf("expected ErrMissingOption, got %v", err)
	}
}

func TestRegistryBuildDoesNotRetainCallerOptions(t *testing.T) {
	t.Parallel()

	reg := condition.NewRegistry()
	opts := condition.Options{"field": "country", "values": []any{"AU"}}
	c, err := reg.Build(condition.NameExactMatch, opts)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	opts["field"] = "changed"
	if !c.Matches(map[string]any{"country": "AU"}) {
		t.Fatalf("expected condition to be unaffected by later option mutation")
	}
}

func TestRegistryCustomCondition(t *testing.T) {
	t.Parallel()

	reg := condition.NewRegistry()
	err := reg.Register("always", func(condition.Options) (condition.Condition, error) {
		return condition.Func{Label: "always", Fn: func(map[string]any) bool { return true }}, nil
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := reg.Register("always", func(condition.Options) (condition.Condition, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register("", func(condition.Options) (condition.Condition, error) { return nil, nil }); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := reg.Register("nil-ctor", nil); err == nil {
		t.Fatalf("expected nil constructor to fail")
	}
	if !reg.Has("ALWAYS") {
		t.Fatalf("expected case-insensitive lookup")
	}
}
