package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formidable/pkg/form"
)

type stubDriver struct {
	inputs     []string
	selectIdx  []int
	confirm    []bool
	textAreas  []string
	passwords  []string
	messages   []string
	rejected   []string
	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
	passPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	for s.inputPos < len(s.inputs) {
		val := s.inputs[s.inputPos]
		s.inputPos++
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.rejected = append(s.rejected, err.Error())
				continue
			}
		}
		return val, nil
	}
	return "", errors.New("no input scripted")
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	return nil, errors.New("no multiselect scripted")
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

const profile = `<form name="profile">
<input type="text" name="nick" label="Nickname" required minlength="3">
<input type="password" name="secret">
<input type="hidden" name="ref" value="x">
<input type="text" name="id" readonly value="9">
<select name="plan" required><option value="free">Free</option><option value="pro">Pro</option></select>
<input type="text" name="company" data-visible-when="plan == pro">
<textarea name="bio"></textarea>
<input type="checkbox" name="terms" required>
</form>`

func TestFiller_Fill(t *testing.T) {
	f, err := form.New(context.Background(), profile)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	driver := &stubDriver{
		inputs:    []string{"al", "alan"},
		passwords: []string{"hunter2"},
		selectIdx: []int{0},
		textAreas: []string{"hello"},
		confirm:   []bool{true},
	}

	errs, err := NewFiller(driver).Fill(context.Background(), f)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected failures: %v", errs)
	}

	want := map[string]any{
		"nick":    "alan",
		"secret":  "hunter2",
		"ref":     "x",
		"id":      "9",
		"plan":    "free",
		"company": nil,
		"bio":     "hello",
		"terms":   "1",
	}
	if diff := cmp.Diff(want, f.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Nickname must be at least 3 characters long"}, driver.rejected); diff != "" {
		t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
	}
}

func TestFiller_RadioGroup(t *testing.T) {
	f, err := form.New(context.Background(), `<form name="order">
<input type="radio" name="size" value="s" required>
<input type="radio" name="size" value="m">
</form>`)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	driver := &stubDriver{selectIdx: []int{1}}

	errs, err := NewFiller(driver).Fill(context.Background(), f)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected failures: %v", errs)
	}
	if got := f.Value("size"); got != "m" {
		t.Fatalf("size = %#v, want m", got)
	}
}

func TestFiller_AbortsOnDriverError(t *testing.T) {
	f, err := form.New(context.Background(), profile)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if _, err := NewFiller(&stubDriver{}).Fill(context.Background(), f); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestIndexHelpers(t *testing.T) {
	options := []string{"a", "b", "c"}
	if got := indexOf(options, "c"); got != 2 {
		t.Fatalf("indexOf = %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"c", "a"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, defaultsFromIndices(options, []int{1, 7})); diff != "" {
		t.Fatalf("defaultsFromIndices mismatch (-want +got):\n%s", diff)
	}
}
