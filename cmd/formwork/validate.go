package main

import (
	"fmt"
	"os"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <form-id|file>...",
	Short: "Check forms for structural problems",
	Long: `Reports duplicate ids, unknown kinds, column tags outside sections, malformed slots
and property values of the wrong type (see designer.schema_file).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		failed := 0
		for _, ref := range args {
			def, name, err := readDefinition(cmd.Context(), a, ref)
			if err != nil {
				return err
			}
			issues := designer.ValidateKinds(def, a.kinds)
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: valid ✅\n", name)
				continue
			}
			failed++
			fmt.Fprintf(out, "%s: %d issue(s)\n", name, len(issues))
			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d form(s)", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
