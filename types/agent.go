package types

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type UpdateMode int

const (
	// UpdateStepwise applies the Bellman rule on every transition.
	UpdateStepwise UpdateMode = iota
	// UpdateEpisodic defers learning to the end of the episode and
	// propagates the return backward through the recorded history.
	UpdateEpisodic
)

type SelectionMode int

const (
	SelectEpsilonGreedy SelectionMode = iota
	SelectSoftmax
)

type AgentConfig struct {
	Alpha       float64
	Gamma       float64
	Update      UpdateMode
	Selection   SelectionMode
	Temperature float64
	Seed        uint64
	// Table lets two self-play roles share one table. Left nil, the
	// agent owns a fresh table.
	Table *QTable
}

type historyStep struct {
	state  State
	action Action
	reward float64
}

// Agent is a tabular Q-learning agent. It exclusively owns (or
// explicitly shares) its Q-table and a seeded random source.
type Agent struct {
	alpha       float64
	gamma       float64
	update      UpdateMode
	selection   SelectionMode
	temperature float64
	table       *QTable
	rand        *rand.Rand
	history     []historyStep
}

func NewAgent(config *AgentConfig) (*Agent, error) {
	if config.Alpha <= 0 || config.Alpha > 1 {
		return nil, fmt.Errorf("%w: alpha must lie in (0,1], got %f", ErrMalformedConfig, config.Alpha)
	}
	if config.Gamma < 0 || config.Gamma > 1 {
		return nil, fmt.Errorf("%w: gamma must lie in [0,1], got %f", ErrMalformedConfig, config.Gamma)
	}
	if config.Selection == SelectSoftmax && config.Temperature <= 0 {
		return nil, fmt.Errorf("%w: softmax selection needs a positive temperature", ErrMalformedConfig)
	}
	table := config.Table
	if table == nil {
		table = NewQTable()
	}
	return &Agent{
		alpha:       config.Alpha,
		gamma:       config.Gamma,
		update:      config.Update,
		selection:   config.Selection,
		temperature: config.Temperature,
		table:       table,
		rand:        rand.New(rand.NewSource(config.Seed)),
		history:     make([]historyStep, 0),
	}, nil
}

func (a *Agent) Table() *QTable {
	return a.table
}

func (a *Agent) UpdateMode() UpdateMode {
	return a.update
}

// SelectAction picks an action for the state. With probability epsilon
// a uniform random legal action, otherwise the exploiting choice of
// the configured selection mode. Epsilon 0 is pure exploitation.
func (a *Agent) SelectAction(state State, actions []Action, epsilon float64) (Action, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: no legal actions in state %s", ErrInvalidAction, state.Hash())
	}
	if epsilon > 0 && a.rand.Float64() < epsilon {
		return actions[a.rand.Intn(len(actions))], nil
	}
	if a.selection == SelectSoftmax {
		return a.sampleSoftmax(state, actions)
	}
	return a.bestAction(state, actions), nil
}

// bestAction is greedy over the stored values. QTable.MaxAmong breaks
// ties to the smallest action hash, keeping runs reproducible.
func (a *Agent) bestAction(state State, actions []Action) Action {
	actionsByHash := make(map[string]Action, len(actions))
	hashes := make([]string, len(actions))
	for i, action := range actions {
		h := action.Hash()
		actionsByHash[h] = action
		hashes[i] = h
	}
	best, _ := a.table.MaxAmong(state.Hash(), hashes, 0)
	return actionsByHash[best]
}

func (a *Agent) sampleSoftmax(state State, actions []Action) (Action, error) {
	stateHash := state.Hash()
	weights := make([]float64, len(actions))
	sum := 0.0
	for i, action := range actions {
		val := a.table.Get(stateHash, action.Hash(), 0)
		weights[i] = math.Exp(val / a.temperature)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	i, ok := sampleuv.NewWeighted(weights, a.rand).Take()
	if !ok {
		return nil, fmt.Errorf("softmax sampling failed in state %s", stateHash)
	}
	return actions[i], nil
}

// RecordStep appends to the episode history without touching the
// table. The action must have been offered by the state.
func (a *Agent) RecordStep(state State, action Action, reward float64) error {
	if !ContainsAction(state.Actions(), action) {
		return fmt.Errorf("%w: cannot record %s in state %s", ErrInvalidAction, action.Hash(), state.Hash())
	}
	a.history = append(a.history, historyStep{state: state, action: action, reward: reward})
	return nil
}

// CreditOutcome replaces the reward of the last recorded step. Used in
// self-play where the losing side learns its outcome only from the
// opponent's final move.
func (a *Agent) CreditOutcome(reward float64) {
	if len(a.history) == 0 {
		return
	}
	a.history[len(a.history)-1].reward = reward
}

// UpdateStep applies the Bellman rule for one observed transition:
//
//	Q(s,a) <- Q(s,a) + alpha * (r + gamma*max_a' Q(s',a') - Q(s,a))
//
// The future term is 0 for a terminal next state regardless of table
// contents, and 0 for unvisited pairs.
func (a *Agent) UpdateStep(state State, action Action, reward float64, next State, done bool) error {
	if !ContainsAction(state.Actions(), action) {
		return fmt.Errorf("%w: cannot update %s in state %s", ErrInvalidAction, action.Hash(), state.Hash())
	}
	a.applyTarget(state, action, reward, next, done)
	return nil
}

func (a *Agent) applyTarget(state State, action Action, reward float64, next State, done bool) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	future := 0.0
	if !done && next != nil {
		future = a.table.Max(next.Hash(), 0)
	}
	cur := a.table.Get(stateHash, actionHash, 0)
	target := reward + a.gamma*future
	a.table.Set(stateHash, actionHash, cur+a.alpha*(target-cur))
}

// FinishEpisode walks the recorded history backward, maintaining the
// return G = r + gamma*G, and applies the table update once per step.
// Credit flows from the terminal outcome through the whole episode in
// a single pass.
func (a *Agent) FinishEpisode() {
	g := 0.0
	for i := len(a.history) - 1; i >= 0; i-- {
		step := a.history[i]
		g = step.reward + a.gamma*g
		a.applyTarget(step.state, step.action, g, nil, true)
	}
}

// ResetEpisode clears the history. Called by the trainer before the
// first RecordStep of every episode.
func (a *Agent) ResetEpisode() {
	a.history = a.history[:0]
}

// HistoryLen is the number of steps recorded in the current episode.
func (a *Agent) HistoryLen() int {
	return len(a.history)
}
