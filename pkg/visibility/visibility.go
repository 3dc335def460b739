// Package visibility decides whether a conditionally displayed field is
// shown. Fields declare a rule through the data-visible-when attribute; a
// form skips the checks of fields whose rule evaluates to false and ships a
// small script that mirrors the rule in the browser.
package visibility

// Evaluator determines whether a field is visible for the current values.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context is the input of an evaluation. Values holds the current form values
// keyed by field name; Extras lets callers expose application state (roles,
// feature flags) under the "extras." prefix.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}

// Always shows every field.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) {
	return true, nil
})
