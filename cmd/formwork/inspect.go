package main

import (
	"fmt"
	"os"

	"github.com/aretw0/formwork/internal/presentation/graph"
	"github.com/aretw0/formwork/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <form-id|file>",
	Short: "Print an outline of a form",
	Long:  `Prints the component tree of a stored form or a definition file as a markdown outline, styled when stdout is a terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		def, name, err := readDefinition(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		out := graph.GenerateOutline(name, normalized(a, def))

		raw, _ := cmd.Flags().GetBool("raw")
		fd := int(os.Stdout.Fd())
		if raw || !term.IsTerminal(fd) {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		width, _, err := term.GetSize(fd)
		if err != nil {
			width = 0
		}
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		styled, err := render(out)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), styled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print plain markdown even on a terminal")
}
