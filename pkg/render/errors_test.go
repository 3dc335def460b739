package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formidable/pkg/render"
)

func TestMapErrors_PathsAndFallbacks(t *testing.T) {
	fields := []string{"name", "owner.email", "owner.phone", "owner", "tags"}

	payload := map[string][]string{
		"name":                       {" Name is required ", "Name is required"},
		"/body/name":                 {"Name too short"},
		"body.owner.email":           {"Email invalid"},
		"$.body.tags[0]":             {"Tags must be unique"},
		"request.payload.owner":      {"Owner missing"},
		"non_field_errors":           {"Form level error"},
		"body/owner/phone/~1number":  {"Phone malformed"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error", "  "},
		"owner.email.domain":         {},
	}

	mapped := render.MapErrors(fields, payload)

	sorted := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	wantFields := map[string][]string{
		"name":        {"Name is required", "Name too short"},
		"owner.email": {"Email invalid"},
		"tags":        {"Tags must be unique"},
		"owner":       {"Owner missing"},
		"owner.phone": {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields, sorted); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, sorted); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if mapped.Empty() {
		t.Fatalf("expected mapping to carry messages")
	}
	if diff := cmp.Diff([]string{"Email invalid"}, mapped.Messages("owner.email")); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrors_Empty(t *testing.T) {
	mapped := render.MapErrors([]string{"a"}, nil)
	if !mapped.Empty() || mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %#v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
