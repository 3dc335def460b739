package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formidable/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.Hidden(" formidable_signup ", "abc"),
		render.Hidden("version", 4),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":          "keep",
		"_csrf":             "token123",
		"formidable_signup": "abc",
		"version":           "4",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "existing", Value: "keep"},
		{Name: "formidable_signup", Value: "abc"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}

	if got := render.MergeHiddenFields(nil, render.Hidden("", "x")); got != nil {
		t.Fatalf("expected nil for empty merge, got %v", got)
	}
}

func TestHiddenHTML(t *testing.T) {
	got := render.HiddenHTML(map[string]string{
		"b":     `"quoted"`,
		"a<tag": "1",
	})
	want := `<input type="hidden" name="a&lt;tag" value="1" />` + "\n" +
		`<input type="hidden" name="b" value="&#34;quoted&#34;" />` + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden html mismatch (-want +got):\n%s", diff)
	}
}
