package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formidable/pkg/form"
)

var (
	renderVars   string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render <source>",
	Short: "Render a form with its post indicator",
	Long: `Render compiles the form markup (expanding template variables for path
sources) and prints the resulting HTML.

Example:
  formidable render templates/signup.html --vars vars.yaml
  formidable render templates/signup.html --output signup.out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderVars, "vars", "", "YAML or JSON file with template variables")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := openForm(cmd, args[0], renderVars)
	if err != nil {
		return err
	}

	out := f.HTML()
	if renderOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(renderOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", renderOutput)
	return nil
}

// openForm builds the form for source, loading template variables from
// varsPath when set.
func openForm(cmd *cobra.Command, source, varsPath string) (*form.Form, error) {
	var extra []form.Option
	if varsPath != "" {
		vars, err := readMap(varsPath)
		if err != nil {
			return nil, fmt.Errorf("read variables: %w", err)
		}
		extra = append(extra, form.WithVariables(vars))
	}
	f, err := form.New(cmd.Context(), source, app.formOptions(extra...)...)
	if err != nil {
		return nil, fmt.Errorf("open form: %w", err)
	}
	return f, nil
}

// readMap decodes a YAML (or JSON) document into a map.
func readMap(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
