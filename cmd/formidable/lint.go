package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formidable/pkg/visibility/expr"
)

type violation struct {
	file    string
	field   string
	message string
}

var lintCmd = &cobra.Command{
	Use:   "lint <path>...",
	Short: "Report markup that does not compile",
	Long: `Lint compiles every given form without the cache and reports parse
errors and data-visible-when rules that do not parse.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	rules := expr.New()
	var violations []violation
	for _, path := range args {
		violations = append(violations, lintFile(cmd, rules, path)...)
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return violations[i].field < violations[j].field
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		if v.field == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.file, v.message)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s\n", v.file, v.field, v.message)
	}
	if len(violations) > 0 {
		return fmt.Errorf("lint: %d violation(s)", len(violations))
	}
	return nil
}

func lintFile(cmd *cobra.Command, rules *expr.Evaluator, path string) []violation {
	raw, err := os.ReadFile(path)
	if err != nil {
		return []violation{{file: path, message: err.Error()}}
	}
	compiled, err := app.factory.Parser().Parse(cmd.Context(), string(raw))
	if err != nil {
		return []violation{{file: path, message: err.Error()}}
	}

	var out []violation
	for _, field := range compiled.Fields() {
		if err := rules.Compile(field.Common().VisibleWhen()); err != nil {
			out = append(out, violation{file: path, field: field.Name(), message: err.Error()})
		}
	}
	return out
}
