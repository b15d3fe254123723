package types

// Environment is the world an agent interacts with. Implementations own
// their current state between Reset and the terminal Step.
type Environment interface {
	// Reset starts a new episode and returns the initial state
	Reset() (State, error)
	// Step applies an action to the current state
	// Fails with ErrInvalidAction if the action is not legal in it
	Step(Action) (*Transition, error)
}

// State of the environment that the agent observes
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions legal from this state, empty iff the state is terminal
	Actions() []Action
}

// An Action the agent can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// Transition is the outcome of one environment step.
// Reward is from the perspective of the actor that took the step.
type Transition struct {
	State  State
	Reward float64
	Done   bool
}

// IsTerminal reports whether no legal actions remain in the state.
func IsTerminal(s State) bool {
	return len(s.Actions()) == 0
}

// ContainsAction reports whether the action is among the legal ones,
// comparing by hash since actions are recreated per step.
func ContainsAction(actions []Action, a Action) bool {
	aHash := a.Hash()
	for _, other := range actions {
		if other.Hash() == aHash {
			return true
		}
	}
	return false
}
