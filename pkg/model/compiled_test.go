package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/model"
)

func sampleCompiled(t *testing.T) *model.Compiled {
	t.Helper()
	c := model.New()
	c.Name = "signup"
	c.AddStatic(`<form method="post">`)
	c.AddIndicator()

	email := fields.NewText("email")
	mustPush(t, email, "name", "email", "required", "", "mapping", "email")
	if err := c.AddField(email); err != nil {
		t.Fatalf("add email: %v", err)
	}
	c.AddStatic("<br/>")

	age := fields.NewNumber("number")
	mustPush(t, age, "name", "age", "min", 18, "step", 1)
	if err := c.AddField(age); err != nil {
		t.Fatalf("add age: %v", err)
	}

	country := fields.NewSelect("select")
	mustPush(t, country, "name", "country", "source", "countries", "data-visible-when", "age >= 18")
	if err := c.AddField(country); err != nil {
		t.Fatalf("add country: %v", err)
	}
	c.AddStatic("</form>")
	return c
}

func mustPush(t *testing.T, f fields.Field, attrs ...any) {
	t.Helper()
	for i := 0; i+1 < len(attrs); i += 2 {
		if err := f.Push(attrs[i].(string), attrs[i+1]); err != nil {
			t.Fatalf("push %v: %v", attrs[i], err)
		}
	}
}

func TestCompiled_IndexesFieldsAndSources(t *testing.T) {
	c := sampleCompiled(t)

	if diff := cmp.Diff([]string{"email", "age", "country"}, c.Names()); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"countries": {"country"}}, c.Sources); diff != "" {
		t.Fatalf("sources (-want +got):\n%s", diff)
	}
	if !c.NeedJS {
		t.Fatalf("a visibility rule should require the client script")
	}
	if !c.HasIndicator() {
		t.Fatalf("indicator entry missing")
	}

	kinds := make([]model.EntryKind, 0, len(c.Entries))
	for _, entry := range c.Entries {
		kinds = append(kinds, entry.Kind)
	}
	want := []model.EntryKind{
		model.EntryStatic, model.EntryIndicator, model.EntryField, model.EntryStatic,
		model.EntryField, model.EntryField, model.EntryStatic,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("entry kinds (-want +got):\n%s", diff)
	}
}

func TestCompiled_RejectsDuplicateNames(t *testing.T) {
	c := model.New()
	first := fields.NewText("text")
	mustPush(t, first, "name", "dup")
	second := fields.NewText("text")
	mustPush(t, second, "name", "dup")

	if err := c.AddField(first); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := c.AddField(second); !errors.Is(err, model.ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
	if err := c.AddField(fields.NewText("text")); err == nil {
		t.Fatalf("expected unnamed field to be rejected")
	}
}

func TestCompiled_CloneIsolation(t *testing.T) {
	master := sampleCompiled(t)
	a := master.Clone()
	b := master.Clone()

	fa, _ := a.Field("email")
	fa.SetValue("a@example.com", false)
	a.Sources["extra"] = []string{"email"}

	fb, _ := b.Field("email")
	if fb.Value() != nil {
		t.Fatalf("clone b observed clone a's value: %#v", fb.Value())
	}
	fm, _ := master.Field("email")
	if fm.Value() != nil {
		t.Fatalf("master observed clone value: %#v", fm.Value())
	}
	if _, ok := master.Sources["extra"]; ok {
		t.Fatalf("master sources mutated through clone")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := sampleCompiled(t)
	data, err := model.Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := model.Decode(data, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if diff := cmp.Diff(c.Entries, restored.Entries); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.Names(), restored.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if restored.Name != "signup" || !restored.NeedJS {
		t.Fatalf("metadata lost: name=%q needJS=%v", restored.Name, restored.NeedJS)
	}
	for _, name := range c.Names() {
		want, _ := c.Field(name)
		got, _ := restored.Field(name)
		if diff := cmp.Diff(want.HTML(), got.HTML()); diff != "" {
			t.Fatalf("field %s html (-want +got):\n%s", name, diff)
		}
	}

	age, _ := restored.Field("age")
	age.SetValue("12", false)
	if failure := age.Check(); failure == nil || failure.Kind != fields.KindNumberMin {
		t.Fatalf("restored min lost, got %+v", failure)
	}
}

func TestCodec_RejectsDanglingEntries(t *testing.T) {
	payload := []byte(`{"version":1,"entries":[{"kind":"field","name":"ghost"}],"fields":[]}`)
	if _, err := model.Decode(payload, nil); err == nil {
		t.Fatalf("expected dangling field entry to fail")
	}
	if _, err := model.Decode([]byte(`{"version":9}`), nil); err == nil {
		t.Fatalf("expected unknown version to fail")
	}
}

func TestCompiled_AddChoice(t *testing.T) {
	c := model.New()
	size := fields.NewRadio("radio")
	mustPush(t, size, "name", "size")
	for _, value := range []string{"s", "m"} {
		choice := size.AddChoice(value, "", value == "m")
		if err := c.AddChoice(size, choice); err != nil {
			t.Fatalf("add choice %s: %v", value, err)
		}
		c.AddStatic(" ")
	}

	if diff := cmp.Diff([]string{"size"}, c.Names()); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
	want := []model.Entry{
		{Kind: model.EntryField, Name: "size", Choice: "s"},
		{Kind: model.EntryStatic, Text: " "},
		{Kind: model.EntryField, Name: "size", Choice: "m"},
		{Kind: model.EntryStatic, Text: " "},
	}
	if diff := cmp.Diff(want, c.Entries); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}

	other := fields.NewRadio("radio")
	mustPush(t, other, "name", "size")
	if err := c.AddChoice(other, "l"); !errors.Is(err, model.ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField for a second group, got %v", err)
	}

	data, err := model.Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := model.Decode(data, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, restored.Entries); diff != "" {
		t.Fatalf("restored entries (-want +got):\n%s", diff)
	}
	field, _ := restored.Field("size")
	if field.Value() != "m" {
		t.Fatalf("restored value = %#v", field.Value())
	}
}
