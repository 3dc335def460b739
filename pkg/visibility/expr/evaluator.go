// Package expr implements the rule language of data-visible-when.
//
//	newsletter                     truthy check
//	country == "fr"                equality against a literal
//	age >= 18 && plan != "free"    ordering, && and ||
//	!(extras.admin || role == admin)
//
// Identifiers name form fields (dotted paths reach nested maps) or, with the
// "extras." prefix, values from visibility.Context.Extras. Bare words on the
// right-hand side are read as strings.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/goliatone/go-formidable/pkg/visibility"
)

// ErrSyntax wraps every parse error.
var ErrSyntax = errors.New("visibility/expr: syntax error")

// Evaluator parses rules on first use and keeps the parsed form.
type Evaluator struct {
	rules sync.Map // rule string -> node
}

var _ visibility.Evaluator = (*Evaluator)(nil)

func New() *Evaluator { return &Evaluator{} }

// Compile parses rule without evaluating it. Empty rules are valid.
func (e *Evaluator) Compile(rule string) error {
	_, err := e.compiled(rule)
	return err
}

func (e *Evaluator) Eval(field, rule string, ctx visibility.Context) (bool, error) {
	n, err := e.compiled(rule)
	if err != nil {
		return false, fmt.Errorf("%s: %w", field, err)
	}
	if n == nil {
		return true, nil
	}
	return n.eval(ctx), nil
}

func (e *Evaluator) compiled(rule string) (node, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, nil
	}
	if cached, ok := e.rules.Load(rule); ok {
		return cached.(node), nil
	}
	toks, err := scan(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.text)
	}
	e.rules.Store(rule, n)
	return n, nil
}

type kind int

const (
	kIdent kind = iota
	kString
	kNumber
	kBool
	kNull
	kOp
	kAnd
	kOr
	kNot
	kOpen
	kClose
)

type tok struct {
	kind kind
	text string
}

const delimiters = " \t\r\n()!=<>&|"

func scan(input string) ([]tok, error) {
	var out []tok
	for i := 0; i < len(input); {
		c := input[i]
		two := ""
		if i+1 < len(input) {
			two = input[i : i+2]
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			out = append(out, tok{kOpen, "("})
			i++
		case c == ')':
			out = append(out, tok{kClose, ")"})
			i++
		case two == "&&":
			out = append(out, tok{kAnd, two})
			i += 2
		case two == "||":
			out = append(out, tok{kOr, two})
			i += 2
		case two == "==" || two == "!=" || two == "<=" || two == ">=":
			out = append(out, tok{kOp, two})
			i += 2
		case c == '<' || c == '>':
			out = append(out, tok{kOp, string(c)})
			i++
		case c == '!':
			out = append(out, tok{kNot, "!"})
			i++
		case c == '"' || c == '\'':
			end := closingQuote(input, i)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string", ErrSyntax)
			}
			raw := input[i+1 : end]
			if c == '\'' {
				raw = strings.ReplaceAll(raw, `\'`, `'`)
				raw = strings.ReplaceAll(raw, `"`, `\"`)
			}
			text, err := strconv.Unquote(`"` + raw + `"`)
			if err != nil {
				return nil, fmt.Errorf("%w: bad string %s: %v", ErrSyntax, input[i:end+1], err)
			}
			out = append(out, tok{kString, text})
			i = end + 1
		case c == '=' || c == '&' || c == '|':
			return nil, fmt.Errorf("%w: stray %q at %d", ErrSyntax, c, i)
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(delimiters, rune(input[i])) {
				i++
			}
			out = append(out, word(input[start:i]))
		}
	}
	return out, nil
}

func closingQuote(input string, open int) int {
	quote := input[open]
	for i := open + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func word(text string) tok {
	switch strings.ToLower(text) {
	case "true", "false":
		return tok{kBool, strings.ToLower(text)}
	case "null", "nil":
		return tok{kNull, "null"}
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return tok{kNumber, text}
	}
	return tok{kIdent, text}
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) peek() (tok, bool) {
	if p.pos >= len(p.toks) {
		return tok{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) accept(k kind) (tok, bool) {
	t, ok := p.peek()
	if !ok || t.kind != k {
		return tok{}, false
	}
	p.pos++
	return t, true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kOr); !ok {
			return left, nil
		}
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kAnd); !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
}

func (p *parser) unary() (node, error) {
	if _, ok := p.accept(kNot); ok {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if _, ok := p.accept(kOpen); ok {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(kClose); !ok {
			return nil, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}
		return inner, nil
	}
	ident, ok := p.accept(kIdent)
	if !ok {
		if t, more := p.peek(); more {
			return nil, fmt.Errorf("%w: expected a field name, got %q", ErrSyntax, t.text)
		}
		return nil, fmt.Errorf("%w: unexpected end of rule", ErrSyntax)
	}
	op, ok := p.accept(kOp)
	if !ok {
		return truthyNode{ident.text}, nil
	}
	lit, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: %s %s needs a value", ErrSyntax, ident.text, op.text)
	}
	p.pos++
	switch lit.kind {
	case kString, kNumber, kBool, kNull, kIdent:
	default:
		return nil, fmt.Errorf("%w: expected a value, got %q", ErrSyntax, lit.text)
	}
	if lit.kind != kNumber && op.text != "==" && op.text != "!=" {
		return nil, fmt.Errorf("%w: %s only compares numbers", ErrSyntax, op.text)
	}
	return compareNode{path: ident.text, op: op.text, lit: lit}, nil
}

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ path string }

func (n truthyNode) eval(ctx visibility.Context) bool {
	value, _ := lookup(ctx, n.path)
	return truthy(value)
}

type compareNode struct {
	path string
	op   string
	lit  tok
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value, _ := lookup(ctx, n.path)

	var equal bool
	switch n.lit.kind {
	case kNull:
		equal = isNull(value)
	case kBool:
		got, _ := cast.ToBoolE(value)
		equal = got == (n.lit.text == "true")
	case kNumber:
		want, _ := strconv.ParseFloat(n.lit.text, 64)
		got, err := cast.ToFloat64E(value)
		if err != nil {
			return n.op == "!="
		}
		switch n.op {
		case "<":
			return got < want
		case "<=":
			return got <= want
		case ">":
			return got > want
		case ">=":
			return got >= want
		}
		equal = got == want
	default:
		equal = matchesString(value, n.lit.text)
	}
	if n.op == "!=" {
		return !equal
	}
	return equal
}

// matchesString compares scalars by their string form; for multi-valued fields
// (select multiple) any selected value matches.
func matchesString(value any, want string) bool {
	if values, ok := value.([]string); ok {
		for _, v := range values {
			if v == want {
				return true
			}
		}
		return false
	}
	return cast.ToString(value) == want
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case bool:
		return v
	}
	if f, err := cast.ToFloat64E(value); err == nil {
		return f != 0
	}
	return true
}

func lookup(ctx visibility.Context, path string) (any, bool) {
	if rest, ok := cutPrefixFold(path, "extras."); ok {
		return walk(ctx.Extras, rest)
	}
	return walk(ctx.Values, path)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

func walk(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, err := cast.ToStringMapE(current)
		if err != nil {
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
