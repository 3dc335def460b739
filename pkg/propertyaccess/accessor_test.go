package propertyaccess

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type address struct {
	City string `json:"city"`
	Zip  int
}

type user struct {
	Email    string `form:"email"`
	Age      int    `json:"age"`
	Score    float64
	Born     time.Time
	Nickname *string
	Tags     []string
	Home     *address
	Work     address
	Extra    map[string]any
	secret   string
}

func TestGetValue(t *testing.T) {
	nick := "al"
	entity := &user{
		Email:    "a@b.c",
		Age:      42,
		Nickname: &nick,
		Work:     address{City: "Lyon"},
		Extra:    map[string]any{"team": "core"},
	}
	acc := New()

	cases := map[string]any{
		"email":      "a@b.c",
		"age":        42,
		"score":      0.0,
		"Nickname":   &nick,
		"work.city":  "Lyon",
		"Work.Zip":   0,
		"extra.team": "core",
		"home.city":  nil,
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			got, err := acc.GetValue(entity, path)
			if err != nil {
				t.Fatalf("GetValue(%q) error: %v", path, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("GetValue(%q) mismatch (-want +got):\n%s", path, diff)
			}
		})
	}

	if _, err := acc.GetValue(entity, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := acc.GetValue(entity, "secret"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexported fields must stay hidden, got %v", err)
	}
	if _, err := acc.GetValue(nil, "email"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestSetValue_StructConversions(t *testing.T) {
	acc := New()
	entity := &user{}

	steps := []struct {
		path  string
		value any
	}{
		{"email", "x@y.z"},
		{"age", 31.0},
		{"score", "2.5"},
		{"born", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"nickname", "bob"},
		{"tags", []any{"a", "b"}},
		{"home.city", "Paris"},
		{"home.zip", "75001"},
		{"work.city", "Nice"},
		{"extra.level", 3},
	}
	for _, step := range steps {
		if err := acc.SetValue(entity, step.path, step.value); err != nil {
			t.Fatalf("SetValue(%q) error: %v", step.path, err)
		}
	}

	bob := "bob"
	want := &user{
		Email:    "x@y.z",
		Age:      31,
		Score:    2.5,
		Born:     time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Nickname: &bob,
		Tags:     []string{"a", "b"},
		Home:     &address{City: "Paris", Zip: 75001},
		Work:     address{City: "Nice"},
		Extra:    map[string]any{"level": 3},
	}
	if diff := cmp.Diff(want, entity, cmp.AllowUnexported(user{})); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}

	if err := acc.SetValue(entity, "nickname", nil); err != nil {
		t.Fatalf("SetValue(nil) error: %v", err)
	}
	if entity.Nickname != nil {
		t.Fatalf("nil should clear pointer fields")
	}
}

func TestSetValue_Maps(t *testing.T) {
	acc := New()
	entity := map[string]any{"name": "old"}

	if err := acc.SetValue(entity, "name", "new"); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}
	if err := acc.SetValue(entity, "address.city", "Lyon"); err != nil {
		t.Fatalf("SetValue nested error: %v", err)
	}
	want := map[string]any{
		"name":    "new",
		"address": map[string]any{"city": "Lyon"},
	}
	if diff := cmp.Diff(want, entity); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}

	got, err := acc.GetValue(entity, "address.city")
	if err != nil || got != "Lyon" {
		t.Fatalf("GetValue nested = %v, %v", got, err)
	}
}

func TestSetValue_Errors(t *testing.T) {
	acc := New()

	if err := acc.SetValue(user{}, "email", "x"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("struct values cannot be written, got %v", err)
	}
	if err := acc.SetValue(&user{}, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := acc.SetValue(&user{}, "age", "forty"); err == nil {
		t.Fatalf("expected conversion error")
	}
	if err := acc.SetValue(&user{}, "", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty path, got %v", err)
	}
}
