package main

import (
	"fmt"
	"os"

	"github.com/aretw0/formwork/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <form-id|file>",
	Short: "Export the component tree as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of a form: containers, section columns and tab, step or panel slots.`,
	Args:  cobra.ExactArgs(1),
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
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(normalized(a, def).Components, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
