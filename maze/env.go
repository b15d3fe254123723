package maze

import (
	"fmt"
	"strings"

	"github.com/zeu5/selfplay-rl/types"
)

const (
	WallCell = '#'
	OpenCell = ' '
)

type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var AllDirections = []Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "unknown"
}

func (d Direction) delta() (int, int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	}
	return 0, 1
}

// ParseDirection normalizes a raw input token to a canonical
// direction. Accepts arrow-key names and WASD letters in any case, so
// input handling stays decoupled from movement legality.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "up", "w":
		return DirUp, nil
	case "down", "s":
		return DirDown, nil
	case "left", "a":
		return DirLeft, nil
	case "right", "d":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: unknown direction token %q", types.ErrInvalidAction, token)
}

// Move is the action of stepping one cell in a direction.
type Move struct {
	Direction Direction
}

var _ types.Action = &Move{}

func (m *Move) Hash() string {
	return m.Direction.String()
}

type Position struct {
	Row int
	Col int
}

type Config struct {
	// Layout rows, WallCell for walls and OpenCell for corridors. All
	// rows must have equal length.
	Layout []string
	Start  Position
	Goal   Position
	// StepCost defaults to -0.1, GoalReward to a bonus scaled with
	// the maze size.
	StepCost   float64
	GoalReward float64
}

// Environment is a single-agent grid maze. Movement into walls or out
// of bounds is an invalid action, not a silent no-op. Reaching the
// goal ends the episode with the goal bonus on top of the final step
// cost.
type Environment struct {
	rows, cols int
	walls      [][]bool
	start      Position
	goal       Position
	pos        Position
	stepCost   float64
	goalReward float64
}

var _ types.Environment = &Environment{}

func NewEnvironment(config *Config) (*Environment, error) {
	rows := len(config.Layout)
	if rows == 0 {
		return nil, fmt.Errorf("%w: empty maze layout", types.ErrMalformedConfig)
	}
	cols := len(config.Layout[0])
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("%w: maze %dx%d below minimum playable 3x3", types.ErrMalformedConfig, rows, cols)
	}
	walls := make([][]bool, rows)
	for i, row := range config.Layout {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", types.ErrMalformedConfig, i, len(row), cols)
		}
		walls[i] = make([]bool, cols)
		for j, c := range row {
			walls[i][j] = c == WallCell
		}
	}

	e := &Environment{
		rows:       rows,
		cols:       cols,
		walls:      walls,
		start:      config.Start,
		goal:       config.Goal,
		stepCost:   config.StepCost,
		goalReward: config.GoalReward,
	}
	if e.stepCost == 0 {
		e.stepCost = -0.1
	}
	if e.goalReward == 0 {
		e.goalReward = ScaledGoalReward(rows, cols, 10)
	}
	for _, p := range []Position{e.start, e.goal} {
		if !e.open(p) {
			return nil, fmt.Errorf("%w: position (%d, %d) is not an open cell", types.ErrMalformedConfig, p.Row, p.Col)
		}
	}
	e.pos = e.start
	return e, nil
}

// ScaledGoalReward grows the base bonus with the Manhattan span of
// the grid, clamped so the terminal reward keeps dominating the
// accumulated step costs without exploding on oversized mazes.
func ScaledGoalReward(rows, cols int, base float64) float64 {
	span := float64(rows + cols - 2)
	reference := 8.0 // span of the 5x5 default
	scale := span / reference
	if scale < 1 {
		scale = 1
	}
	if scale > 5 {
		scale = 5
	}
	return base * scale
}

func (e *Environment) open(p Position) bool {
	if p.Row < 0 || p.Row >= e.rows || p.Col < 0 || p.Col >= e.cols {
		return false
	}
	return !e.walls[p.Row][p.Col]
}

func (e *Environment) Start() Position {
	return e.start
}

func (e *Environment) Goal() Position {
	return e.goal
}

func (e *Environment) StepCost() float64 {
	return e.stepCost
}

func (e *Environment) GoalReward() float64 {
	return e.goalReward
}

func (e *Environment) Reset() (types.State, error) {
	e.pos = e.start
	return &PositionState{pos: e.pos, env: e}, nil
}

func (e *Environment) Step(a types.Action) (*types.Transition, error) {
	move, ok := a.(*Move)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a maze move", types.ErrInvalidAction, a.Hash())
	}
	if e.pos == e.goal {
		return nil, fmt.Errorf("%w: goal already reached", types.ErrInvalidAction)
	}
	dr, dc := move.Direction.delta()
	next := Position{Row: e.pos.Row + dr, Col: e.pos.Col + dc}
	if !e.open(next) {
		return nil, fmt.Errorf("%w: cannot move %s from (%d, %d)", types.ErrInvalidAction, move.Direction, e.pos.Row, e.pos.Col)
	}
	e.pos = next

	reward := e.stepCost
	done := next == e.goal
	if done {
		reward += e.goalReward
	}
	return &types.Transition{State: &PositionState{pos: next, env: e}, Reward: reward, Done: done}, nil
}

// Render draws the maze with the agent at A and the goal at G.
func (e *Environment) Render() string {
	var sb strings.Builder
	for i := 0; i < e.rows; i++ {
		for j := 0; j < e.cols; j++ {
			p := Position{Row: i, Col: j}
			switch {
			case p == e.pos:
				sb.WriteByte('A')
			case p == e.goal:
				sb.WriteByte('G')
			case e.walls[i][j]:
				sb.WriteByte(WallCell)
			default:
				sb.WriteByte(OpenCell)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PositionState is the agent position within a fixed layout. The
// layout is part of the environment, not the hash.
type PositionState struct {
	pos Position
	env *Environment
}

var _ types.State = &PositionState{}

func (p *PositionState) Hash() string {
	return fmt.Sprintf("(%d, %d)", p.pos.Row, p.pos.Col)
}

// Actions lists the moves into open cells, none once the goal is
// reached.
func (p *PositionState) Actions() []types.Action {
	if p.pos == p.env.goal {
		return nil
	}
	actions := make([]types.Action, 0, len(AllDirections))
	for _, d := range AllDirections {
		dr, dc := d.delta()
		if p.env.open(Position{Row: p.pos.Row + dr, Col: p.pos.Col + dc}) {
			actions = append(actions, &Move{Direction: d})
		}
	}
	return actions
}

func (p *PositionState) Position() Position {
	return p.pos
}
