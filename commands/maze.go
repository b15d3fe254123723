package commands

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/selfplay-rl/maze"
	"github.com/zeu5/selfplay-rl/types"
	"github.com/zeu5/selfplay-rl/util"
	"golang.org/x/exp/rand"
)

func TrainMaze(height, width, horizon, evalRuns int) error {
	environment, err := maze.NewRandomEnvironment(height, width, rand.New(rand.NewSource(seed)))
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
	if horizon == 0 {
		horizon = (2*height + 1) * (2*width + 1) * 4
	}

	trainer, err := types.NewTrainer(environment, &types.TrainerConfig{
		Episodes: episodes,
		Horizon:  horizon,
		Schedule: sched,
		Agent: types.AgentConfig{
			Alpha:  alpha,
			Gamma:  gamma,
			Update: update,
		},
		Verbose: true,
		Seed:    seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Training maze agent: %d episodes, %dx%d corridor cells\n", episodes, height, width)
	fmt.Println(environment.Render())
	records, err := trainer.Run()
	if err != nil {
		return err
	}

	if err := trainer.Tables()[0].Save(path.Join(saveDir, "maze_agent.json")); err != nil {
		return err
	}
	if err := util.SaveJSON(path.Join(saveDir, "windows.json"), types.SummarizeWindows(records, 1000)); err != nil {
		return err
	}

	result, err := trainer.Evaluate(evalRuns)
	if err != nil {
		return err
	}
	fmt.Printf("Evaluation over %d runs: goal reached every time, %.1f steps on average\n",
		result.Episodes, float64(result.Steps)/float64(result.Episodes))
	return nil
}

func MazeCommand() *cobra.Command {
	var height int
	var width int
	var horizon int
	var evalRuns int

	cmd := &cobra.Command{
		Use:   "maze",
		Short: "Train a tabular agent to solve a generated maze",
		RunE: func(cmd *cobra.Command, args []string) error {
			return TrainMaze(height, width, horizon, evalRuns)
		},
	}
	cmd.PersistentFlags().IntVar(&height, "height", 5, "Corridor cells vertically")
	cmd.PersistentFlags().IntVar(&width, "width", 5, "Corridor cells horizontally")
	cmd.PersistentFlags().IntVar(&horizon, "horizon", 0, "Step budget per episode, 0 derives one from the maze size")
	cmd.PersistentFlags().IntVar(&evalRuns, "eval-runs", 10, "Evaluation runs after training")
	return cmd
}
