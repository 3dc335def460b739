package parser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/model"
	pkgparser "github.com/goliatone/go-formidable/pkg/parser"
)

const signupMarkup = `<form name="signup" method="post">
  <label>Email <input type="email" name="email" required mapping="email"></label>
  <input type="number" name="age" min="18" max="120" step="1" value="30">
  <input type="date" name="born" min="1900-01-01">
  <textarea name="bio" maxlength="200">Hello &amp; welcome</textarea>
  <select name="country" source="countries">
    <option value="fr">France</option>
    <option value="de" selected>Germany</option>
  </select>
  <input type="checkbox" name="terms" checked value="yes">
  <input type="submit" value="Send">
</form>`

func parse(t *testing.T, markup string) *model.Compiled {
	t.Helper()
	compiled, err := New(pkgparser.NewOptions()).Parse(context.Background(), markup)
	require.NoError(t, err)
	return compiled
}

func TestParse_BuildsFieldsInOrder(t *testing.T) {
	compiled := parse(t, signupMarkup)

	require.Equal(t, "signup", compiled.Name)
	require.Equal(t, []string{"email", "age", "born", "bio", "country", "terms"}, compiled.Names())
	require.Equal(t, map[string][]string{"countries": {"country"}}, compiled.Sources)
	require.True(t, compiled.HasIndicator())
	require.False(t, compiled.NeedJS)

	require.Equal(t, model.EntryStatic, compiled.Entries[0].Kind)
	require.Equal(t, `<form name="signup" method="post">`, compiled.Entries[0].Text)
	require.Equal(t, model.EntryIndicator, compiled.Entries[1].Kind)

	var static strings.Builder
	for _, entry := range compiled.Entries {
		if entry.Kind == model.EntryStatic {
			static.WriteString(entry.Text)
		}
	}
	require.Contains(t, static.String(), `<input type="submit" value="Send">`)
	require.Contains(t, static.String(), "</form>")
}

func TestParse_TypedAttributes(t *testing.T) {
	compiled := parse(t, signupMarkup)

	email, ok := compiled.Field("email")
	require.True(t, ok)
	require.True(t, email.Common().Required())
	require.Equal(t, "email", email.Common().MappingName())

	age, _ := compiled.Field("age")
	number := age.(*fields.NumberField)
	require.Equal(t, 18.0, *number.Min())
	require.Equal(t, 120.0, *number.Max())
	require.Equal(t, 30.0, number.Value())

	born, _ := compiled.Field("born")
	date := born.(*fields.DateField)
	require.True(t, date.Min().Equal(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)))

	bio, _ := compiled.Field("bio")
	require.Equal(t, "Hello & welcome", bio.Value())

	country, _ := compiled.Field("country")
	require.Equal(t, "de", country.Value())
	require.Len(t, country.(*fields.SelectField).Options(), 2)

	terms, _ := compiled.Field("terms")
	require.Equal(t, "yes", terms.Value())
}

func TestParse_VisibilityRuleNeedsScript(t *testing.T) {
	compiled := parse(t, `<input name="company" data-visible-when="kind == 'business'">`)
	require.True(t, compiled.NeedJS)
	require.False(t, compiled.HasIndicator())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":       `<input type="warp" name="x">`,
		"bad date bound":     `<input type="date" name="d" min="yesterday-ish">`,
		"bad number bound":   `<input type="number" name="n" min="lots">`,
		"duplicate name":     `<input name="a"><input name="a">`,
		"unterminated area":  `<textarea name="t">never closed`,
		"unterminated list":  `<select name="s"><option>one</option>`,
		"invalid pattern":    `<input name="p" pattern="[">`,
		"field without name": `<input type="text">`,
	}
	p := New(pkgparser.NewOptions())
	for name, markup := range cases {
		_, err := p.Parse(context.Background(), markup)
		require.Error(t, err, name)
	}

	_, err := p.Parse(context.Background(), `<input type="number" name="n" min="lots">`)
	require.True(t, errors.Is(err, fields.ErrTypeMismatch))
}

func TestParse_RadioGroup(t *testing.T) {
	compiled := parse(t, `<form name="order">
<label><input type="radio" name="size" id="size-s" value="s" required> S</label>
<label><input type="radio" name="size" id="size-m" value="m" checked> M</label>
<input type="radio" name="gift">
</form>`)

	require.Equal(t, []string{"size", "gift"}, compiled.Names())
	field, ok := compiled.Field("size")
	require.True(t, ok)
	radio, ok := field.(*fields.RadioField)
	require.True(t, ok)
	require.Equal(t, []fields.RadioChoice{{Value: "s", ID: "size-s"}, {Value: "m", ID: "size-m"}}, radio.Choices())
	require.Equal(t, "m", radio.Value())
	require.True(t, radio.Required())

	var choices []string
	for _, entry := range compiled.Entries {
		if entry.Kind == model.EntryField && entry.Name == "size" {
			choices = append(choices, entry.Choice)
		}
	}
	require.Equal(t, []string{"s", "m"}, choices)

	gift, _ := compiled.Field("gift")
	require.Equal(t, []fields.RadioChoice{{Value: "on"}}, gift.(*fields.RadioField).Choices())

	_, err := New(pkgparser.NewOptions()).Parse(context.Background(),
		`<input type="text" name="size"><input type="radio" name="size" value="s">`)
	require.ErrorIs(t, err, model.ErrDuplicateField)
}

func TestParse_TimeLikeInputs(t *testing.T) {
	compiled := parse(t, `<input type="time" name="at" value="09:30">
<input type="week" name="wk">
<input type="month" name="mo" value=" 2024-05 ">`)

	for name, tag := range map[string]string{"at": "time", "wk": "week", "mo": "month"} {
		field, ok := compiled.Field(name)
		require.True(t, ok, name)
		require.Equal(t, tag, field.Type())
	}
	at, _ := compiled.Field("at")
	require.Equal(t, "09:30", at.Value())
	mo, _ := compiled.Field("mo")
	require.Equal(t, "2024-05", mo.Value())
}

func TestParse_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(pkgparser.NewOptions()).Parse(ctx, signupMarkup)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParse_CustomRegistry(t *testing.T) {
	reg := fields.NewRegistry()
	reg.MustRegister("slug", func(tag string) fields.Field { return fields.NewText(tag) })

	p := New(pkgparser.NewOptions(pkgparser.WithRegistry(reg)))
	compiled, err := p.Parse(context.Background(), `<input type="slug" name="handle">`)
	require.NoError(t, err)
	f, _ := compiled.Field("handle")
	require.Equal(t, "slug", f.Type())

	_, err = p.Parse(context.Background(), `<input type="text" name="plain">`)
	require.Error(t, err)
}
