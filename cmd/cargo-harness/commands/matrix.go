package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cargoharness "github.com/contriboss/cargo-harness-go"
)

func newMatrixCommand() *cobra.Command {
	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the resolved test matrix and smoke coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			matrix := cargoharness.DefaultMatrix()
			smoke := cargoharness.DefaultSmokeSets()
			example := cargoharness.DefaultExample

			if matrixFile, _ := cmd.Flags().GetString("matrix-file"); matrixFile != "" {
				var err error
				matrix, smoke, example, err = cargoharness.LoadMatrixFile(matrixFile)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Test matrix (execution order):")
			for i, entry := range matrix {
				fmt.Fprintf(out, "  %d. %s\n", i+1, entry.Label())
			}

			fmt.Fprintf(out, "Smoke runs (example %q, release profile):\n", example)
			for _, features := range smoke {
				fmt.Fprintf(out, "  - %s\n", features.Name)
			}

			return nil
		},
	}

	matrixCmd.Flags().String("matrix-file", "", "YAML matrix manifest overriding the built-in matrix")

	return matrixCmd
}
