package types

import "errors"

var (
	// ErrInvalidAction indicates an action outside the legal set of the
	// state it was applied to. Raised by Environment.Step and by the
	// agent record/update paths, never silently clamped.
	ErrInvalidAction = errors.New("action not legal in state")
	// ErrMalformedConfig indicates an environment or trainer
	// configuration that fails validation at construction.
	ErrMalformedConfig = errors.New("malformed configuration")
	// ErrEpisodeBudget indicates an episode exceeded its step ceiling
	// without reaching a terminal state. Signals broken terminal
	// detection rather than a normal outcome.
	ErrEpisodeBudget = errors.New("episode step budget exceeded")
)
