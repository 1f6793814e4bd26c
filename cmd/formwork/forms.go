package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Manage stored forms",
	Long:  `List, show, import and remove forms in the configured store.`,
}

var formsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing forms: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No forms found.")
			return nil
		}
		fmt.Fprintln(out, "Forms:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var formsShowCmd = &cobra.Command{
	Use:   "show <form-id>",
	Short: "Print the definition of a stored form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		def, err := a.store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading form '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var formsImportCmd = &cobra.Command{
	Use:   "import <form-id> <file>",
	Short: "Store a definition file under a form ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		def, _, err := readDefinition(cmd.Context(), a, args[1])
		if err != nil {
			return err
		}
		def = normalized(a, def)
		if err := a.store.Save(cmd.Context(), args[0], &def); err != nil {
			return fmt.Errorf("error saving form '%s': %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
		return nil
	},
}

var formsRmCmd = &cobra.Command{
	Use:   "rm <form-id>...",
	Short: "Remove one or more forms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			if err := a.store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing form '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formsCmd)
	formsCmd.AddCommand(formsLsCmd, formsShowCmd, formsImportCmd, formsRmCmd)
}
