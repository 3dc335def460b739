package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formidable/pkg/prompt"
)

var fillVars string

var fillCmd = &cobra.Command{
	Use:   "fill <source>",
	Short: "Fill a form interactively",
	Long: `Fill prompts for every visible, writable field of the form, checking each
answer against the field before accepting it, and prints the resulting
values.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVar(&fillVars, "vars", "", "YAML or JSON file with template variables")
}

func runFill(cmd *cobra.Command, args []string) error {
	f, err := openForm(cmd, args[0], fillVars)
	if err != nil {
		return err
	}
	errs, err := prompt.NewFiller(nil).Fill(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	if err := printReport(cmd, f, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d field(s)", errCheckFailed, len(errs))
	}
	return nil
}
