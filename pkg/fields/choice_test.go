package fields_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formidable/pkg/fields"
)

func TestSelectField_RejectsUnknownOption(t *testing.T) {
	f := fields.NewSelect("select")
	pushAll(t, f, "name", "color")
	if err := f.SetOptions(map[string]string{"r": "Red", "g": "Green"}); err != nil {
		t.Fatalf("set options: %v", err)
	}

	f.SetValue("g", false)
	if failure := f.Check(); failure != nil {
		t.Fatalf("known option rejected: %+v", failure)
	}
	f.SetValue("b", false)
	if failure := f.Check(); failure == nil || failure.Kind != fields.KindBadValue {
		t.Fatalf("expected %s, got %+v", fields.KindBadValue, failure)
	}

	want := `<select name="color"><option value="g">Green</option><option value="r">Red</option></select>`
	f.SetValue(nil, false)
	if diff := cmp.Diff(want, f.HTML()); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectField_OptionClass(t *testing.T) {
	f := fields.NewSelect("select")
	pushAll(t, f, "name", "plan", "source", "plans")
	f.SetOptionClass("pro", "highlight")
	if err := f.SetOptions([]string{"free", "pro"}); err != nil {
		t.Fatalf("set options: %v", err)
	}
	if source, _ := f.Attribute("source"); source != "plans" {
		t.Fatalf("source attribute = %#v", source)
	}

	want := `<select name="plan" source="plans"><option value="free">free</option><option value="pro" class="highlight">pro</option></select>`
	if diff := cmp.Diff(want, f.HTML()); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}

	clone := f.Clone().(*fields.SelectField)
	clone.SetOptionClass("pro", "")
	if f.OptionClass("pro") != "highlight" {
		t.Fatalf("clone removed the original's class")
	}

	env, err := fields.Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := fields.Decode(nil, env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, restored.HTML()); diff != "" {
		t.Fatalf("restored html mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectField_Multiple(t *testing.T) {
	f := fields.NewSelect("select")
	pushAll(t, f, "name", "tags", "multiple", true)
	if err := f.SetOptions([]string{"go", "php", "js"}); err != nil {
		t.Fatalf("set options: %v", err)
	}

	f.SetValue([]any{"go", " js ", ""}, false)
	if diff := cmp.Diff([]string{"go", "js"}, f.Value()); diff != "" {
		t.Fatalf("normalised value (-want +got):\n%s", diff)
	}
	if failure := f.Check(); failure != nil {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if err := f.SetOptions(42); err == nil {
		t.Fatalf("expected unsupported option payload to fail")
	}
}

func TestCheckboxField_States(t *testing.T) {
	f := fields.NewCheckbox("checkbox")
	pushAll(t, f, "name", "agree", "value", "yes")

	f.SetValue(true, false)
	if !f.Checked() || f.Value() != "yes" {
		t.Fatalf("bool true should tick the box, got %#v", f.Value())
	}
	if diff := cmp.Diff(`<input type="checkbox" name="agree" value="yes" checked />`, f.HTML()); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}

	f.SetValue("no", false)
	if failure := f.Check(); failure == nil || failure.Kind != fields.KindBadValue {
		t.Fatalf("expected %s, got %+v", fields.KindBadValue, failure)
	}

	f.SetValue(nil, false)
	if f.Checked() {
		t.Fatalf("nil should untick the box")
	}
	if failure := f.Check(); failure != nil {
		t.Fatalf("unticked optional box should pass, got %+v", failure)
	}
}

func TestFileField_SizeAndType(t *testing.T) {
	f := fields.NewFile("file")
	pushAll(t, f, "name", "avatar", "maxsize", "1024", "accept", "image/*, .pdf")
	if size, _ := f.Attribute("maxsize"); size != int64(1024) {
		t.Fatalf("maxsize attribute = %#v", size)
	}
	if err := f.Push("maxsize", "huge"); err == nil {
		t.Fatalf("expected a non-numeric maxsize to be rejected")
	}

	cases := []struct {
		name   string
		upload *fields.Upload
		kind   string
	}{
		{name: "png", upload: &fields.Upload{Filename: "me.png", ContentType: "image/png", Size: 512}},
		{name: "pdf by extension", upload: &fields.Upload{Filename: "cv.PDF", ContentType: "application/octet-stream", Size: 10}},
		{name: "too big", upload: &fields.Upload{Filename: "me.png", ContentType: "image/png", Size: 4096}, kind: fields.KindFileTooBig},
		{name: "wrong type", upload: &fields.Upload{Filename: "run.exe", ContentType: "application/x-msdownload", Size: 10}, kind: fields.KindFileType},
	}
	for _, tc := range cases {
		f.SetValue(tc.upload, false)
		failure := f.Check()
		switch {
		case tc.kind == "" && failure != nil:
			t.Fatalf("%s: unexpected failure %+v", tc.name, failure)
		case tc.kind != "" && (failure == nil || failure.Kind != tc.kind):
			t.Fatalf("%s: expected %s, got %+v", tc.name, tc.kind, failure)
		}
	}

	f.SetRequired(true)
	f.SetValue("C:\\fakepath\\me.png", false)
	if f.Value() != nil {
		t.Fatalf("a plain string is not an upload, got %#v", f.Value())
	}
	if failure := f.Check(); failure == nil || failure.Kind != fields.KindRequired {
		t.Fatalf("expected %s, got %+v", fields.KindRequired, failure)
	}
}

func TestRadioField_Choices(t *testing.T) {
	f := fields.NewRadio("radio")
	pushAll(t, f, "name", "size", "required", true)
	f.AddChoice("s", "size-s", false)
	if got := f.AddChoice(" m ", "", true); got != "m" {
		t.Fatalf("choice value = %q", got)
	}
	if got := f.AddChoice("", "", false); got != "on" {
		t.Fatalf("blank choice value = %q", got)
	}
	if f.Value() != "m" {
		t.Fatalf("checked choice should set the value, got %#v", f.Value())
	}

	f.SetValue([]string{"s", "m"}, false)
	if f.Value() != "s" {
		t.Fatalf("first submitted value should win, got %#v", f.Value())
	}
	if failure := f.Check(); failure != nil {
		t.Fatalf("declared choice rejected: %+v", failure)
	}
	f.SetValue("xl", false)
	if failure := f.Check(); failure == nil || failure.Kind != fields.KindBadValue {
		t.Fatalf("expected %s, got %+v", fields.KindBadValue, failure)
	}
	f.SetValue("", false)
	if failure := f.Check(); failure == nil || failure.Kind != fields.KindRequired {
		t.Fatalf("expected %s, got %+v", fields.KindRequired, failure)
	}

	f.SetValue("s", false)
	want := `<input type="radio" name="size" id="size-s" value="s" required checked />`
	if diff := cmp.Diff(want, f.ChoiceHTML("s")); diff != "" {
		t.Fatalf("choice html mismatch (-want +got):\n%s", diff)
	}
	if f.ChoiceHTML("xl") != "" {
		t.Fatalf("undeclared choice should render nothing")
	}

	clone := f.Clone().(*fields.RadioField)
	clone.AddChoice("xl", "", true)
	if len(f.Choices()) != 3 || f.Value() != "s" {
		t.Fatalf("clone leaked into original: %+v %#v", f.Choices(), f.Value())
	}

	env, err := fields.Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := fields.Decode(nil, env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(f.HTML(), restored.HTML()); diff != "" {
		t.Fatalf("restored html mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_BuiltinsAndDuplicates(t *testing.T) {
	reg := fields.DefaultRegistry()
	for _, tag := range []string{"text", "EMAIL", "number", "range", "date", "datetime-local", "select", "checkbox", "file", "textarea", "radio", "time", "week", "month"} {
		if !reg.Has(tag) {
			t.Fatalf("builtin %q missing", tag)
		}
	}

	field, err := reg.New("range")
	if err != nil {
		t.Fatalf("new range: %v", err)
	}
	if _, ok := field.(*fields.NumberField); !ok || field.Type() != "range" {
		t.Fatalf("range should build a NumberField tagged range, got %T %q", field, field.Type())
	}

	custom := fields.NewRegistry()
	ctor := func(tag string) fields.Field { return fields.NewText(tag) }
	if err := custom.Register("slug", ctor); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := custom.Register("SLUG", ctor); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := custom.New("missing"); err == nil {
		t.Fatalf("expected unknown tag to fail")
	}
	if diff := cmp.Diff([]string{"slug"}, custom.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
