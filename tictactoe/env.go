package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeu5/selfplay-rl/types"
	"golang.org/x/exp/rand"
)

type Mark int

const (
	MarkEmpty Mark = iota
	MarkX
	MarkO
)

func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	}
	return " "
}

func otherMark(m Mark) Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

type Config struct {
	// Size is the board dimension N, minimum 3
	Size int
	// RandomStart picks the starting player per episode from the
	// seeded source. Off, X always starts.
	RandomStart bool
	Seed        uint64
}

// Environment is an NxN Tic-Tac-Toe board with two strictly
// alternating players. Rewards are from the perspective of the player
// that just moved: +1 on a winning move, 0 otherwise.
type Environment struct {
	size    int
	cells   []Mark
	current Mark
	winner  Mark
	done    bool

	randomStart bool
	rand        *rand.Rand
}

var _ types.Environment = &Environment{}

func NewEnvironment(config *Config) (*Environment, error) {
	size := config.Size
	if size == 0 {
		size = 3
	}
	if size < 3 {
		return nil, fmt.Errorf("%w: board size %d below minimum playable 3", types.ErrMalformedConfig, size)
	}
	e := &Environment{
		size:        size,
		randomStart: config.RandomStart,
		rand:        rand.New(rand.NewSource(config.Seed)),
	}
	e.Reset()
	return e, nil
}

func (e *Environment) Size() int {
	return e.size
}

// Winner returns the winning mark, MarkEmpty for a draw or a game
// still in progress.
func (e *Environment) Winner() Mark {
	return e.winner
}

func (e *Environment) Done() bool {
	return e.done
}

func (e *Environment) Current() Mark {
	return e.current
}

func (e *Environment) Reset() (types.State, error) {
	e.cells = make([]Mark, e.size*e.size)
	e.current = MarkX
	if e.randomStart && e.rand.Intn(2) == 1 {
		e.current = MarkO
	}
	e.winner = MarkEmpty
	e.done = false
	return e.state(), nil
}

func (e *Environment) Step(a types.Action) (*types.Transition, error) {
	move, ok := a.(*CellAction)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a board cell", types.ErrInvalidAction, a.Hash())
	}
	if e.done {
		return nil, fmt.Errorf("%w: game already finished", types.ErrInvalidAction)
	}
	if move.Cell < 0 || move.Cell >= len(e.cells) || e.cells[move.Cell] != MarkEmpty {
		return nil, fmt.Errorf("%w: cell %d not open", types.ErrInvalidAction, move.Cell)
	}

	mover := e.current
	e.cells[move.Cell] = mover

	reward := 0.0
	if e.wins(mover) {
		e.done = true
		e.winner = mover
		reward = 1.0
	} else if e.full() {
		e.done = true
	}
	e.current = otherMark(mover)

	return &types.Transition{State: e.state(), Reward: reward, Done: e.done}, nil
}

// wins scans every row, column and both diagonals for size identical
// marks of the player.
func (e *Environment) wins(player Mark) bool {
	n := e.size
	for i := 0; i < n; i++ {
		row, col := true, true
		for j := 0; j < n; j++ {
			row = row && e.cells[i*n+j] == player
			col = col && e.cells[j*n+i] == player
		}
		if row || col {
			return true
		}
	}
	diag, anti := true, true
	for i := 0; i < n; i++ {
		diag = diag && e.cells[i*n+i] == player
		anti = anti && e.cells[i*n+(n-1-i)] == player
	}
	return diag || anti
}

func (e *Environment) full() bool {
	for _, c := range e.cells {
		if c == MarkEmpty {
			return false
		}
	}
	return true
}

func (e *Environment) state() *BoardState {
	cells := make([]Mark, len(e.cells))
	copy(cells, e.cells)
	return &BoardState{size: e.size, cells: cells, mover: e.current, done: e.done}
}

// BoardState is an immutable snapshot of the board plus the player to
// move. Including the mover keeps hashes unique under random starts.
type BoardState struct {
	size  int
	cells []Mark
	mover Mark
	done  bool
}

var _ types.State = &BoardState{}

func (b *BoardState) Hash() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range b.cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(c)))
	}
	sb.WriteByte(')')
	sb.WriteString(b.mover.String())
	return sb.String()
}

// Actions returns one action per open cell, none once the game is
// decided.
func (b *BoardState) Actions() []types.Action {
	if b.done {
		return nil
	}
	actions := make([]types.Action, 0, len(b.cells))
	for i, c := range b.cells {
		if c == MarkEmpty {
			actions = append(actions, &CellAction{Cell: i})
		}
	}
	return actions
}

func (b *BoardState) Cell(i int) Mark {
	return b.cells[i]
}

func (b *BoardState) Mover() Mark {
	return b.mover
}

// Render formats the board for terminal play, open cells showing
// their index.
func (b *BoardState) Render(withIndices bool) string {
	n := b.size
	var sb strings.Builder
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cell := b.cells[i*n+j]
			label := cell.String()
			if cell == MarkEmpty && withIndices {
				label = strconv.Itoa(i*n + j)
			}
			fmt.Fprintf(&sb, " %2s ", label)
			if j < n-1 {
				sb.WriteByte('|')
			}
		}
		sb.WriteByte('\n')
		if i < n-1 {
			sb.WriteString(strings.Repeat("-", n*5-1))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// CellAction marks one open cell, indexed row-major.
type CellAction struct {
	Cell int
}

var _ types.Action = &CellAction{}

func (c *CellAction) Hash() string {
	return strconv.Itoa(c.Cell)
}
