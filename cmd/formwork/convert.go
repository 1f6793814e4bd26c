package main

import (
	"fmt"
	"os"

	"github.com/aretw0/formwork/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <form-id|file> [output]",
	Short: "Convert a form between JSON and YAML",
	Long: `Reads a stored form or a definition file (including the legacy flat parentId list)
and writes it in the nested format. The output format follows the output file
extension, or --to when writing to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		def, _, err := readDefinition(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		def = normalized(a, def)

		to, _ := cmd.Flags().GetString("to")
		format := file.Format(to)
		if len(args) == 2 && !cmd.Flags().Changed("to") {
			format = file.FormatFromPath(args[1])
		}
		if format != file.FormatJSON && format != file.FormatYAML {
			return fmt.Errorf("unknown format %q", to)
		}

		data, err := file.Encode(&def, format)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[1], err)
		}
		a.logger.Info("Form converted", "from", args[0], "to", args[1], "format", format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("to", "json", "Output format when writing to stdout: json or yaml")
}
