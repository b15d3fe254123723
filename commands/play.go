package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/selfplay-rl/tictactoe"
	"github.com/zeu5/selfplay-rl/types"
)

// PlayTicTacToe runs a terminal game of human vs a trained agent. The
// agent exploits its table with exploration forced off.
func PlayTicTacToe(modelPath string, size int, humanFirst bool) error {
	table, err := types.LoadQTable(modelPath)
	if err != nil {
		return err
	}
	agent, err := types.NewAgent(&types.AgentConfig{
		Alpha: alpha,
		Gamma: gamma,
		Seed:  seed,
		Table: table,
	})
	if err != nil {
		return err
	}
	environment, err := tictactoe.NewEnvironment(&tictactoe.Config{Size: size})
	if err != nil {
		return err
	}

	state, err := environment.Reset()
	if err != nil {
		return err
	}
	board := state.(*tictactoe.BoardState)
	humanTurn := humanFirst
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("You are", markFor(humanFirst), "- enter a cell index to move")
	for !environment.Done() {
		fmt.Println(board.Render(true))
		var action types.Action
		if humanTurn {
			action, err = readHumanMove(reader, board)
			if err != nil {
				return err
			}
		} else {
			action, err = agent.SelectAction(board, board.Actions(), 0)
			if err != nil {
				return err
			}
			fmt.Printf("Agent plays cell %s\n", action.Hash())
		}
		transition, err := environment.Step(action)
		if err != nil {
			fmt.Println(err)
			continue
		}
		board = transition.State.(*tictactoe.BoardState)
		humanTurn = !humanTurn
	}

	fmt.Println(board.Render(false))
	switch environment.Winner() {
	case tictactoe.MarkEmpty:
		fmt.Println("Draw")
	default:
		fmt.Printf("%s wins\n", environment.Winner())
	}
	return nil
}

func markFor(first bool) tictactoe.Mark {
	if first {
		return tictactoe.MarkX
	}
	return tictactoe.MarkO
}

func readHumanMove(reader *bufio.Reader, board *tictactoe.BoardState) (types.Action, error) {
	for {
		fmt.Print("Your move: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		cell, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Println("enter the index of an open cell")
			continue
		}
		action := &tictactoe.CellAction{Cell: cell}
		if !types.ContainsAction(board.Actions(), action) {
			fmt.Println("that cell is not open")
			continue
		}
		return action, nil
	}
}

func PlayCommand() *cobra.Command {
	var modelPath string
	var size int
	var agentFirst bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play tic-tac-toe against a trained agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return PlayTicTacToe(modelPath, size, !agentFirst)
		},
	}
	cmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "results/agent_0_final.json", "Path to a saved table")
	cmd.PersistentFlags().IntVar(&size, "size", 3, "Board dimension")
	cmd.PersistentFlags().BoolVar(&agentFirst, "agent-first", false, "Let the agent open the game")
	return cmd
}
