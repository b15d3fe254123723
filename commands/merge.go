package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/selfplay-rl/types"
)

// MergeTables combines two saved tables key-wise and writes the
// result. Meant for use between training runs, never during one.
func MergeTables(pathA, pathB, outPath string, weight float64) error {
	if weight < 0 || weight > 1 {
		return fmt.Errorf("%w: merge weight must lie in [0,1], got %f", types.ErrMalformedConfig, weight)
	}
	tableA, err := types.LoadQTable(pathA)
	if err != nil {
		return err
	}
	tableB, err := types.LoadQTable(pathB)
	if err != nil {
		return err
	}
	merged := types.Merge(tableA, tableB, weight)
	if err := merged.Save(outPath); err != nil {
		return err
	}
	fmt.Printf("Merged %d and %d states into %d, saved to %s\n",
		tableA.States(), tableB.States(), merged.States(), outPath)
	return nil
}

func MergeCommand() *cobra.Command {
	var pathA string
	var pathB string
	var outPath string
	var weight float64

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Combine two saved Q-tables key-wise",
		RunE: func(cmd *cobra.Command, args []string) error {
			return MergeTables(pathA, pathB, outPath, weight)
		},
	}
	cmd.PersistentFlags().StringVar(&pathA, "a", "results/agent_0_final.json", "First table")
	cmd.PersistentFlags().StringVar(&pathB, "b", "results/agent_1_final.json", "Second table")
	cmd.PersistentFlags().StringVarP(&outPath, "out", "o", "results/merged.json", "Output path")
	cmd.PersistentFlags().Float64VarP(&weight, "weight", "w", 0.5, "Weight of the first table on overlapping keys")
	return cmd
}
