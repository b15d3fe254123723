package commands

import (
	"fmt"
	"path"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zeu5/selfplay-rl/tictactoe"
	"github.com/zeu5/selfplay-rl/types"
	"github.com/zeu5/selfplay-rl/util"
)

func TrainTicTacToe(size int, sharedTable, randomStart bool, checkpointEvery, evalGames int) error {
	environment, err := tictactoe.NewEnvironment(&tictactoe.Config{
		Size:        size,
		RandomStart: randomStart,
		Seed:        seed,
	})
	if err != nil {
		return err
	}
	sched, err := schedule()
	if err != nil {
		return err
	}
	update, err := parseUpdateMode(updateMode)
	if err != nil {
		return err
	}

	trainer, err := types.NewTrainer(environment, &types.TrainerConfig{
		Episodes:    episodes,
		Horizon:     size * size,
		Schedule:    sched,
		SelfPlay:    true,
		SharedTable: sharedTable,
		Agent: types.AgentConfig{
			Alpha:  alpha,
			Gamma:  gamma,
			Update: update,
		},
		CheckpointInterval: checkpointEvery,
		Checkpoint: func(episode int, tables []*types.QTable) error {
			for i, table := range tables {
				name := "agent_" + strconv.Itoa(i) + "_checkpoint_" + strconv.Itoa(episode) + ".json"
				if err := table.Save(path.Join(saveDir, "checkpoints", name)); err != nil {
					return err
				}
			}
			return nil
		},
		Verbose: true,
		Seed:    seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Training tic-tac-toe self-play: %d episodes, %dx%d board\n", episodes, size, size)
	records, err := trainer.Run()
	if err != nil {
		return err
	}

	for i, table := range trainer.Tables() {
		name := "agent_" + strconv.Itoa(i) + "_final.json"
		if err := table.Save(path.Join(saveDir, name)); err != nil {
			return err
		}
	}
	if err := util.SaveJSON(path.Join(saveDir, "windows.json"), types.SummarizeWindows(records, 1000)); err != nil {
		return err
	}

	result, err := trainer.Evaluate(evalGames)
	if err != nil {
		return err
	}
	fmt.Printf("Evaluation vs random baseline over %d games: %d wins, %d draws, %d losses\n",
		result.Episodes, result.Wins, result.Draws, result.Losses)
	return nil
}

func TicTacToeCommand() *cobra.Command {
	var size int
	var sharedTable bool
	var randomStart bool
	var checkpointEvery int
	var evalGames int

	cmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Train a tabular agent on tic-tac-toe via self-play",
		RunE: func(cmd *cobra.Command, args []string) error {
			return TrainTicTacToe(size, sharedTable, randomStart, checkpointEvery, evalGames)
		},
	}
	cmd.PersistentFlags().IntVar(&size, "size", 3, "Board dimension")
	cmd.PersistentFlags().BoolVar(&sharedTable, "shared-table", false, "Both self-play roles learn on one table")
	cmd.PersistentFlags().BoolVar(&randomStart, "random-start", false, "Randomize the starting player per episode")
	cmd.PersistentFlags().IntVar(&checkpointEvery, "checkpoint", 5000, "Episodes between table checkpoints, 0 to disable")
	cmd.PersistentFlags().IntVar(&evalGames, "eval-games", 100, "Evaluation games after training")
	return cmd
}
