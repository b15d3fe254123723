package types

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Outcome of a finished episode.
const (
	OutcomePlayerA = "player_a"
	OutcomePlayerB = "player_b"
	OutcomeDraw    = "draw"
	OutcomeGoal    = "goal"
)

// EpisodeRecord is the per-episode structured record the trainer
// emits. Consumers (stats dumps, visualization) read these, the
// trainer itself knows nothing about their formats.
type EpisodeRecord struct {
	Episode int     `json:"episode"`
	Outcome string  `json:"outcome"`
	Steps   int     `json:"steps"`
	Epsilon float64 `json:"epsilon"`
	// Reward accumulated by the first agent over the episode
	Reward float64 `json:"reward"`
}

// CheckpointFunc receives table snapshots at configured intervals.
// Persistence formats live entirely on the caller's side.
type CheckpointFunc func(episode int, tables []*QTable) error

type TrainerConfig struct {
	Episodes int
	// Horizon is the step budget for one episode. Exceeding it fails
	// the run with ErrEpisodeBudget.
	Horizon  int
	Schedule Schedule
	// SelfPlay alternates control between two agents. Off, a single
	// agent drives every step.
	SelfPlay bool
	// SharedTable makes both self-play roles learn on one table.
	// Changes learning dynamics materially, hence explicit.
	SharedTable bool
	Agent       AgentConfig

	CheckpointInterval int
	Checkpoint         CheckpointFunc

	// Verbose prints an in-place progress line
	Verbose bool
	Seed    uint64
}

// Trainer runs repeated episodes between an environment and one or
// two agents, decaying the exploration rate over the run.
type Trainer struct {
	config      *TrainerConfig
	environment Environment
	agents      []*Agent
}

func NewTrainer(environment Environment, config *TrainerConfig) (*Trainer, error) {
	if config.Episodes <= 0 {
		return nil, fmt.Errorf("%w: trainer needs a positive episode count", ErrMalformedConfig)
	}
	if config.Horizon <= 0 {
		return nil, fmt.Errorf("%w: trainer needs a positive step budget", ErrMalformedConfig)
	}
	if config.Schedule.Episodes == 0 {
		config.Schedule.Episodes = config.Episodes
	}
	if err := config.Schedule.Validate(); err != nil {
		return nil, err
	}

	numAgents := 1
	if config.SelfPlay {
		numAgents = 2
	}
	agents := make([]*Agent, numAgents)
	for i := range agents {
		agentConfig := config.Agent
		agentConfig.Seed = config.Seed + uint64(i)
		if config.SelfPlay && config.SharedTable && i > 0 {
			agentConfig.Table = agents[0].Table()
		}
		agent, err := NewAgent(&agentConfig)
		if err != nil {
			return nil, err
		}
		agents[i] = agent
	}
	return &Trainer{
		config:      config,
		environment: environment,
		agents:      agents,
	}, nil
}

func (t *Trainer) Agents() []*Agent {
	return t.agents
}

// Tables returns the distinct tables owned by the trainer's agents.
func (t *Trainer) Tables() []*QTable {
	if t.config.SelfPlay && !t.config.SharedTable {
		return []*QTable{t.agents[0].Table(), t.agents[1].Table()}
	}
	return []*QTable{t.agents[0].Table()}
}

// Run executes the configured number of episodes and returns one
// record per episode. Episode failures abort the run, they indicate
// misconfiguration or a core-logic defect rather than a normal
// outcome.
func (t *Trainer) Run() ([]EpisodeRecord, error) {
	records := make([]EpisodeRecord, 0, t.config.Episodes)
	for episode := 0; episode < t.config.Episodes; episode++ {
		epsilon := t.config.Schedule.At(episode)
		record, err := t.runEpisode(epsilon, true)
		if err != nil {
			return records, fmt.Errorf("episode %d: %w", episode, err)
		}
		record.Episode = episode
		record.Epsilon = epsilon
		records = append(records, record)

		if t.config.CheckpointInterval > 0 && t.config.Checkpoint != nil &&
			(episode+1)%t.config.CheckpointInterval == 0 {
			tables := t.Tables()
			snapshots := make([]*QTable, len(tables))
			for i, table := range tables {
				snapshots[i] = table.Snapshot()
			}
			if err := t.config.Checkpoint(episode+1, snapshots); err != nil {
				return records, fmt.Errorf("checkpoint at episode %d: %w", episode+1, err)
			}
		}

		if t.config.Verbose && ((episode+1)%1000 == 0 || episode+1 == t.config.Episodes) {
			fmt.Printf("\rEp:%7d/%d, Eps:%.4f, States:%7d, Steps:%3d, Outcome:%-8s",
				episode+1, t.config.Episodes, epsilon, t.agents[0].Table().States(), record.Steps, record.Outcome)
		}
	}
	if t.config.Verbose {
		fmt.Println()
	}
	return records, nil
}

type pendingStep struct {
	state  State
	action Action
	reward float64
}

func (t *Trainer) runEpisode(epsilon float64, learn bool) (EpisodeRecord, error) {
	record := EpisodeRecord{}
	state, err := t.environment.Reset()
	if err != nil {
		return record, err
	}
	for _, agent := range t.agents {
		agent.ResetEpisode()
	}

	episodic := t.config.Agent.Update == UpdateEpisodic
	pending := make([]*pendingStep, len(t.agents))
	turn := 0

	for step := 0; ; step++ {
		if step >= t.config.Horizon {
			return record, fmt.Errorf("%w: no terminal state within %d steps", ErrEpisodeBudget, t.config.Horizon)
		}
		agent := t.agents[turn]
		actions := state.Actions()
		if len(actions) == 0 {
			// environments report Done on the closing transition, a
			// terminal state here means Reset produced one
			return record, fmt.Errorf("%w: reset produced a terminal state", ErrMalformedConfig)
		}

		if learn && !episodic && pending[turn] != nil {
			// complete the agent's previous transition now that its
			// next decision point is known
			if err := agent.UpdateStep(pending[turn].state, pending[turn].action, pending[turn].reward, state, false); err != nil {
				return record, err
			}
			pending[turn] = nil
		}

		action, err := agent.SelectAction(state, actions, epsilon)
		if err != nil {
			return record, err
		}
		transition, err := t.environment.Step(action)
		if err != nil {
			return record, err
		}
		record.Steps++
		if turn == 0 {
			record.Reward += transition.Reward
		}

		if learn {
			if episodic {
				if err := agent.RecordStep(state, action, transition.Reward); err != nil {
					return record, err
				}
			} else {
				pending[turn] = &pendingStep{state: state, action: action, reward: transition.Reward}
			}
		}

		if transition.Done {
			record.Outcome = t.closeEpisode(turn, transition.Reward, state, action, pending, learn, episodic)
			return record, nil
		}

		state = transition.State
		if t.config.SelfPlay {
			turn = 1 - turn
		}
	}
}

// closeEpisode settles learning at the terminal transition. The final
// reward is from the last mover's perspective, the other self-play
// role receives its negation.
func (t *Trainer) closeEpisode(mover int, reward float64, state State, action Action, pending []*pendingStep, learn, episodic bool) string {
	if learn {
		if episodic {
			if t.config.SelfPlay {
				t.agents[1-mover].CreditOutcome(-reward)
			}
			for _, agent := range t.agents {
				agent.FinishEpisode()
			}
		} else {
			t.agents[mover].UpdateStep(state, action, reward, nil, true)
			if t.config.SelfPlay && pending[1-mover] != nil {
				other := pending[1-mover]
				t.agents[1-mover].UpdateStep(other.state, other.action, -reward, nil, true)
			}
		}
	}

	if !t.config.SelfPlay {
		return OutcomeGoal
	}
	if reward == 0 {
		return OutcomeDraw
	}
	if mover == 0 {
		return OutcomePlayerA
	}
	return OutcomePlayerB
}

// EvalResult summarizes evaluation episodes from the trained agent's
// perspective.
type EvalResult struct {
	Episodes int `json:"episodes"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Draws    int `json:"draws"`
	// Steps accumulated over all episodes, meaningful for
	// single-agent environments
	Steps int `json:"steps"`
}

// Evaluate runs episodes with epsilon forced to 0 and learning
// disabled. In self-play mode the trained agent faces a uniformly
// random opponent, alternating sides every episode. The tables are
// never perturbed.
func (t *Trainer) Evaluate(episodes int) (*EvalResult, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("%w: evaluation needs a positive episode count", ErrMalformedConfig)
	}
	result := &EvalResult{Episodes: episodes}
	baseline := rand.New(rand.NewSource(t.config.Seed + 97))

	for episode := 0; episode < episodes; episode++ {
		if !t.config.SelfPlay {
			record, err := t.runEpisode(0, false)
			if err != nil {
				return nil, err
			}
			result.Wins++
			result.Steps += record.Steps
			continue
		}
		agentRole := episode % 2
		outcome, steps, err := t.evalGame(agentRole, baseline)
		if err != nil {
			return nil, err
		}
		result.Steps += steps
		switch outcome {
		case agentRole:
			result.Wins++
		case 1 - agentRole:
			result.Losses++
		default:
			result.Draws++
		}
	}
	return result, nil
}

// evalGame plays one game of trained agent vs random baseline.
// Returns the winning role, -1 for a draw.
func (t *Trainer) evalGame(agentRole int, baseline *rand.Rand) (int, int, error) {
	state, err := t.environment.Reset()
	if err != nil {
		return 0, 0, err
	}
	agent := t.agents[0]
	if !t.config.SharedTable && agentRole < len(t.agents) {
		agent = t.agents[agentRole]
	}
	turn := 0
	steps := 0
	for {
		if steps >= t.config.Horizon {
			return 0, steps, fmt.Errorf("%w: no terminal state within %d steps", ErrEpisodeBudget, t.config.Horizon)
		}
		actions := state.Actions()
		var action Action
		if turn == agentRole {
			action, err = agent.SelectAction(state, actions, 0)
			if err != nil {
				return 0, steps, err
			}
		} else {
			if len(actions) == 0 {
				return 0, steps, fmt.Errorf("%w: no legal actions in state %s", ErrInvalidAction, state.Hash())
			}
			action = actions[baseline.Intn(len(actions))]
		}
		transition, err := t.environment.Step(action)
		if err != nil {
			return 0, steps, err
		}
		steps++
		if transition.Done {
			if transition.Reward == 0 {
				return -1, steps, nil
			}
			return turn, steps, nil
		}
		state = transition.State
		turn = 1 - turn
	}
}
