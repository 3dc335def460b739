package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formidable/pkg/form"
)

// errCheckFailed makes the process exit non-zero when values fail.
var errCheckFailed = errors.New("check failed")

var (
	checkVars   string
	checkValues string
	checkSet    []string
)

var checkCmd = &cobra.Command{
	Use:   "check <source> [field...]",
	Short: "Validate values against a form",
	Long: `Check applies submitted values to the form and reports every field that
fails its constraints. Values come from a YAML/JSON file and --set pairs.

Example:
  formidable check signup.html --values posted.yaml
  formidable check signup.html --set email=ada@example.com --set age=12 email age`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkVars, "vars", "", "YAML or JSON file with template variables")
	checkCmd.Flags().StringVar(&checkValues, "values", "", "YAML or JSON file with submitted values")
	checkCmd.Flags().StringArrayVar(&checkSet, "set", nil, "submitted value as name=value (repeatable)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	f, err := openForm(cmd, args[0], checkVars)
	if err != nil {
		return err
	}

	values := map[string]any{}
	if checkValues != "" {
		if values, err = readMap(checkValues); err != nil {
			return fmt.Errorf("read values: %w", err)
		}
	}
	for _, pair := range checkSet {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q (want name=value)", pair)
		}
		values[strings.TrimSpace(name)] = value
	}
	f.SetValues(values, nil)

	errs := f.Check(args[1:]...)
	if err := printReport(cmd, f, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d field(s)", errCheckFailed, len(errs))
	}
	return nil
}

type report struct {
	Valid  bool                `json:"valid"`
	Values map[string]any      `json:"values"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func printReport(cmd *cobra.Command, f *form.Form, errs []*form.Error) error {
	out := report{Valid: len(errs) == 0, Values: f.Values()}
	if len(errs) > 0 {
		out.Errors = f.ErrorMapping(errs).Fields
	}
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return err
}
