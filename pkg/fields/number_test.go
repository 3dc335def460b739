package fields_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formidable/pkg/fields"
)

func TestToFloat_LocaleTolerant(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: "1.234,56", want: 1234.56, ok: true},
		{in: "1,234.56", want: 1234.56, ok: true},
		{in: "(42.5)", want: -42.5, ok: true},
		{in: "(1.234,50)", want: -1234.5, ok: true},
		{in: "12,5", want: 12.5, ok: true},
		{in: "-3.75", want: -3.75, ok: true},
		{in: "€ 1 299,99", want: 1299.99, ok: true},
		{in: "$1,000,000.25", want: 1000000.25, ok: true},
		{in: "1 000", want: 1000, ok: true},
		{in: "1e3", want: 1000, ok: true},
		{in: 7, want: 7, ok: true},
		{in: int64(-2), want: -2, ok: true},
		{in: 2.5, want: 2.5, ok: true},
		{in: "", ok: false},
		{in: "abc", ok: false},
		{in: ",", ok: false},
		{in: nil, ok: false},
		{in: true, ok: false},
	}

	for _, tc := range cases {
		got, ok := fields.ToFloat(tc.in)
		if ok != tc.ok {
			t.Fatalf("ToFloat(%#v) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ToFloat(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func newBoundedNumber(t *testing.T) *fields.NumberField {
	t.Helper()
	f := fields.NewNumber("number")
	for _, push := range []struct {
		attr  string
		value any
	}{
		{"name", "qty"},
		{"min", "0"},
		{"max", 10},
		{"step", "2"},
	} {
		if err := f.Push(push.attr, push.value); err != nil {
			t.Fatalf("push %s: %v", push.attr, err)
		}
	}
	return f
}

func TestNumberField_MinMaxStep(t *testing.T) {
	f := newBoundedNumber(t)

	for _, value := range []string{"0", "2", "4", "6", "8", "10"} {
		f.SetValue(value, false)
		if failure := f.Check(); failure != nil {
			t.Fatalf("value %s: unexpected failure %+v", value, failure)
		}
	}

	cases := map[string]string{
		"3":  fields.KindNumberStep,
		"11": fields.KindNumberMax,
		"-1": fields.KindNumberMin,
		"x":  fields.KindNumber,
	}
	for value, kind := range cases {
		f.SetValue(value, false)
		failure := f.Check()
		if failure == nil {
			t.Fatalf("value %s: expected %s failure", value, kind)
		}
		if failure.Kind != kind {
			t.Fatalf("value %s: kind = %s, want %s", value, failure.Kind, kind)
		}
	}
}

func TestNumberField_FailureCarriesBound(t *testing.T) {
	f := newBoundedNumber(t)
	f.SetValue("11", false)

	got := f.Check()
	want := &fields.Failure{Kind: fields.KindNumberMax, Label: "qty", Args: []any{10.0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("failure mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberField_StepTolerance(t *testing.T) {
	f := fields.NewNumber("number")
	if err := f.Push("step", "0.1"); err != nil {
		t.Fatalf("push step: %v", err)
	}
	f.SetValue("0.3", false)
	if failure := f.Check(); failure != nil {
		t.Fatalf("0.3 should be a multiple of 0.1 within tolerance, got %+v", failure)
	}
	f.SetValue("-0.7", false)
	if failure := f.Check(); failure != nil {
		t.Fatalf("-0.7 should conform to step 0.1, got %+v", failure)
	}
}

func TestNumberField_AbsentValues(t *testing.T) {
	optional := newBoundedNumber(t)
	optional.SetValue("", false)
	if failure := optional.Check(); failure != nil {
		t.Fatalf("optional empty field should pass, got %+v", failure)
	}
	if optional.Value() != nil {
		t.Fatalf("expected blank input to normalise to nil, got %#v", optional.Value())
	}

	required := newBoundedNumber(t)
	if err := required.Push("required", ""); err != nil {
		t.Fatalf("push required: %v", err)
	}
	required.SetValue("   ", false)
	failure := required.Check()
	if failure == nil || failure.Kind != fields.KindRequired {
		t.Fatalf("expected %s, got %+v", fields.KindRequired, failure)
	}
}

func TestNumberField_PushMirrorsAttributes(t *testing.T) {
	f := newBoundedNumber(t)

	if got := f.Min(); got == nil || *got != 0 {
		t.Fatalf("typed min = %v, want 0", got)
	}
	for attr, want := range map[string]any{"min": 0.0, "max": 10.0, "step": 2.0} {
		got, ok := f.Attribute(attr)
		if !ok {
			t.Fatalf("attribute %s missing", attr)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("attribute %s mismatch (-want +got):\n%s", attr, diff)
		}
	}

	fresh := fields.NewNumber("number")
	if got, _ := fresh.Attribute("step"); got != "any" {
		t.Fatalf("default step attribute = %#v, want any", got)
	}
}

func TestNumberField_PushRejectsNonNumeric(t *testing.T) {
	f := fields.NewNumber("number")
	err := f.Push("min", "lots")
	if !errors.Is(err, fields.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	var mismatch *fields.TypeMismatchError
	if !errors.As(err, &mismatch) || mismatch.Attr != "min" {
		t.Fatalf("expected TypeMismatchError on min, got %#v", err)
	}
	if err := f.Push("step", 0); !errors.Is(err, fields.ErrTypeMismatch) {
		t.Fatalf("zero step should be rejected, got %v", err)
	}
}

func TestNumberField_UnknownAttributeFallsThrough(t *testing.T) {
	f := fields.NewNumber("number")
	if err := f.Push("placeholder", "Quantity"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if got, _ := f.Attribute("placeholder"); got != "Quantity" {
		t.Fatalf("placeholder = %#v", got)
	}
}
