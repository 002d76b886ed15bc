package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/misty-step/cerberus/internal/matrix"
)

var (
	matrixWave      string
	matrixModelTier string
	matrixPanel     []string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Expand the reviewer roster into the ordered task list for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return matrixRun()
	},
}

func init() {
	matrixCmd.Flags().StringVar(&matrixWave, "wave", "", "Restrict to a named wave's reviewers")
	matrixCmd.Flags().StringVar(&matrixModelTier, "model-tier", "", "Annotate entries with a model tier")
	matrixCmd.Flags().StringSliceVar(&matrixPanel, "panel", nil, "Restrict to these perspectives (from cerberus route)")
	rootCmd.AddCommand(matrixCmd)
}

func matrixRun() error {
	d, err := requireRoster()
	if err != nil {
		return err
	}

	entries, err := matrix.Expand(d, matrix.Options{
		Wave:      matrixWave,
		ModelTier: matrixModelTier,
		Panel:     matrixPanel,
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal matrix: %w", err)
	}
	fmt.Fprintln(ui.Out, string(data))
	return nil
}
