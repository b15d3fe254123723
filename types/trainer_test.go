package types

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

// chainEnv is a corridor of cells 0..goal. "advance" moves one cell
// toward the goal, "stay" does nothing. Reaching the goal pays 1 and
// ends the episode.
type chainEnv struct {
	goal int
	pos  int
}

type chainState struct {
	env *chainEnv
	pos int
}

func (s *chainState) Hash() string {
	return "cell-" + strconv.Itoa(s.pos)
}

func (s *chainState) Actions() []Action {
	if s.pos >= s.env.goal {
		return nil
	}
	return []Action{stubAction("advance"), stubAction("stay")}
}

func (e *chainEnv) Reset() (State, error) {
	e.pos = 0
	return &chainState{env: e, pos: 0}, nil
}

func (e *chainEnv) Step(action Action) (*Transition, error) {
	if e.pos >= e.goal {
		return nil, fmt.Errorf("%w: episode is over", ErrInvalidAction)
	}
	if action.Hash() == "advance" {
		e.pos++
	}
	next := &chainState{env: e, pos: e.pos}
	if e.pos == e.goal {
		return &Transition{State: next, Reward: 1, Done: true}, nil
	}
	return &Transition{State: next, Reward: 0, Done: false}, nil
}

func chainTrainer(t *testing.T, env *chainEnv, config *TrainerConfig) *Trainer {
	t.Helper()
	trainer, err := NewTrainer(env, config)
	if err != nil {
		t.Fatal(err)
	}
	return trainer
}

func TestTrainerRejectsBadConfig(t *testing.T) {
	env := &chainEnv{goal: 3}
	cases := []TrainerConfig{
		{Episodes: 0, Horizon: 10, Agent: AgentConfig{Alpha: 0.5, Gamma: 0.9}},
		{Episodes: 10, Horizon: 0, Agent: AgentConfig{Alpha: 0.5, Gamma: 0.9}},
		{Episodes: 10, Horizon: 10, Agent: AgentConfig{Alpha: 0, Gamma: 0.9}},
		{Episodes: 10, Horizon: 10, Schedule: Schedule{Initial: 0.1, Final: 0.8}, Agent: AgentConfig{Alpha: 0.5, Gamma: 0.9}},
	}
	for i, c := range cases {
		if _, err := NewTrainer(env, &c); !errors.Is(err, ErrMalformedConfig) {
			t.Errorf("case %d: expected malformed config, got %v", i, err)
		}
	}
}

func TestTrainerReachesGoal(t *testing.T) {
	env := &chainEnv{goal: 3}
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes: 5,
		Horizon:  20,
		Agent:    AgentConfig{Alpha: 0.5, Gamma: 0.9, Update: UpdateEpisodic},
		Seed:     1,
	})
	records, err := trainer.Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	for i, record := range records {
		if record.Episode != i {
			t.Errorf("record %d carries episode %d", i, record.Episode)
		}
		if record.Outcome != OutcomeGoal {
			t.Errorf("episode %d: outcome %q, want %q", i, record.Outcome, OutcomeGoal)
		}
		// greedy ties break to "advance", the shortest path
		if record.Steps != 3 {
			t.Errorf("episode %d: took %d steps, want 3", i, record.Steps)
		}
		if record.Reward != 1 {
			t.Errorf("episode %d: reward %f, want 1", i, record.Reward)
		}
	}
	table := trainer.Tables()[0]
	if v := table.Get("cell-2", "advance", 0); v <= 0 {
		t.Errorf("winning move must gain value, got %f", v)
	}
}

func TestTrainerEnforcesEpisodeBudget(t *testing.T) {
	env := &chainEnv{goal: 100}
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes: 1,
		Horizon:  5,
		Agent:    AgentConfig{Alpha: 0.5, Gamma: 0.9},
	})
	if _, err := trainer.Run(); !errors.Is(err, ErrEpisodeBudget) {
		t.Errorf("expected episode budget error, got %v", err)
	}
}

func TestTrainerCheckpoints(t *testing.T) {
	env := &chainEnv{goal: 2}
	var calls []int
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes:           10,
		Horizon:            20,
		Agent:              AgentConfig{Alpha: 0.5, Gamma: 0.9},
		CheckpointInterval: 4,
		Checkpoint: func(episode int, tables []*QTable) error {
			calls = append(calls, episode)
			if len(tables) != 1 {
				t.Errorf("expected one table snapshot, got %d", len(tables))
			}
			return nil
		},
	})
	if _, err := trainer.Run(); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != 4 || calls[1] != 8 {
		t.Errorf("expected checkpoints at 4 and 8, got %v", calls)
	}
}

func TestCheckpointSnapshotsAreDetached(t *testing.T) {
	env := &chainEnv{goal: 2}
	var snapshot *QTable
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes:           2,
		Horizon:            20,
		Agent:              AgentConfig{Alpha: 0.5, Gamma: 0.9},
		CheckpointInterval: 1,
		Checkpoint: func(episode int, tables []*QTable) error {
			if snapshot == nil {
				snapshot = tables[0]
			}
			return nil
		},
	})
	if _, err := trainer.Run(); err != nil {
		t.Fatal(err)
	}
	if snapshot == trainer.Tables()[0] {
		t.Error("checkpoint must receive a snapshot, not the live table")
	}
}

func TestSharedTableSelfPlay(t *testing.T) {
	env := &chainEnv{goal: 4}
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes:    1,
		Horizon:     20,
		SelfPlay:    true,
		SharedTable: true,
		Agent:       AgentConfig{Alpha: 0.5, Gamma: 0.9, Update: UpdateEpisodic},
	})
	if n := len(trainer.Tables()); n != 1 {
		t.Fatalf("shared mode must expose one table, got %d", n)
	}
	agents := trainer.Agents()
	if agents[0].Table() != agents[1].Table() {
		t.Error("both roles must learn on the same table")
	}
	if _, err := trainer.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestSelfPlaySeparateTables(t *testing.T) {
	env := &chainEnv{goal: 4}
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes: 1,
		Horizon:  20,
		SelfPlay: true,
		Agent:    AgentConfig{Alpha: 0.5, Gamma: 0.9},
	})
	tables := trainer.Tables()
	if len(tables) != 2 {
		t.Fatalf("expected two tables, got %d", len(tables))
	}
	if tables[0] == tables[1] {
		t.Error("roles must own distinct tables without SharedTable")
	}
}

func TestEvaluateSingleAgent(t *testing.T) {
	env := &chainEnv{goal: 3}
	trainer := chainTrainer(t, env, &TrainerConfig{
		Episodes: 10,
		Horizon:  20,
		Agent:    AgentConfig{Alpha: 0.5, Gamma: 0.9},
	})
	if _, err := trainer.Run(); err != nil {
		t.Fatal(err)
	}
	result, err := trainer.Evaluate(4)
	if err != nil {
		t.Fatal(err)
	}
	if result.Wins != 4 {
		t.Errorf("every greedy run reaches the goal, got %d wins", result.Wins)
	}
	if result.Steps != 12 {
		t.Errorf("expected 4 episodes of 3 steps, got %d total", result.Steps)
	}

	if _, err := trainer.Evaluate(0); !errors.Is(err, ErrMalformedConfig) {
		t.Errorf("expected malformed config for 0 episodes, got %v", err)
	}
}
