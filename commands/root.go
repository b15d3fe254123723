package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/selfplay-rl/types"
)

var (
	episodes   int
	alpha      float64
	gamma      float64
	epsInitial float64
	epsFinal   float64
	decayMode  string
	updateMode string
	seed       uint64
	saveDir    string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use: "selfplay-rl",
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 20000, "Number of training episodes")
	rootCommand.PersistentFlags().Float64Var(&alpha, "alpha", 0.5, "Learning rate")
	rootCommand.PersistentFlags().Float64Var(&gamma, "gamma", 0.9, "Discount factor")
	rootCommand.PersistentFlags().Float64Var(&epsInitial, "eps-initial", 0.8, "Initial exploration rate")
	rootCommand.PersistentFlags().Float64Var(&epsFinal, "eps-final", 0.1, "Final exploration rate")
	rootCommand.PersistentFlags().StringVar(&decayMode, "decay", "linear", "Exploration decay mode (linear|exponential)")
	rootCommand.PersistentFlags().StringVar(&updateMode, "update", "episodic", "Q update mode (stepwise|episodic)")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 1, "Random seed")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", "results", "Folder to store tables and records")
	// adding the subcommands here
	rootCommand.AddCommand(TicTacToeCommand())
	rootCommand.AddCommand(MazeCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(MergeCommand())
	return rootCommand
}

func parseUpdateMode(s string) (types.UpdateMode, error) {
	switch s {
	case "stepwise":
		return types.UpdateStepwise, nil
	case "episodic":
		return types.UpdateEpisodic, nil
	}
	return 0, fmt.Errorf("unknown update mode %q", s)
}

func parseDecayMode(s string) (types.DecayMode, error) {
	switch s {
	case "linear":
		return types.DecayLinear, nil
	case "exponential":
		return types.DecayExponential, nil
	}
	return 0, fmt.Errorf("unknown decay mode %q", s)
}

func schedule() (types.Schedule, error) {
	mode, err := parseDecayMode(decayMode)
	if err != nil {
		return types.Schedule{}, err
	}
	return types.Schedule{
		Initial:  epsInitial,
		Final:    epsFinal,
		Episodes: episodes,
		Mode:     mode,
	}, nil
}
