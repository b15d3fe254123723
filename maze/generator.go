package maze

import (
	"fmt"

	"github.com/zeu5/selfplay-rl/types"
	"golang.org/x/exp/rand"
)

// Generate carves a random maze of height x width corridor cells with
// randomized depth-first backtracking. The resulting grid is
// (2*height+1) x (2*width+1): corridor cells sit on odd coordinates,
// the border is entirely walls and every open cell is reachable from
// every other. The source must be seeded by the caller, generation is
// deterministic given it.
func Generate(height, width int, src *rand.Rand) ([]string, error) {
	if height < 2 || width < 2 {
		return nil, fmt.Errorf("%w: maze needs at least 2x2 corridor cells, got %dx%d", types.ErrMalformedConfig, height, width)
	}
	rows := height*2 + 1
	cols := width*2 + 1

	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = make([]byte, cols)
		for j := range grid[i] {
			grid[i][j] = WallCell
		}
	}

	// start carving from a random corridor cell, odd coordinates are
	// parity-consistent with the wall grid
	startRow := 1 + 2*src.Intn(height)
	startCol := 1 + 2*src.Intn(width)
	grid[startRow][startCol] = OpenCell

	type cell struct{ row, col int }
	stack := []cell{{startRow, startCol}}
	deltas := [][2]int{{-2, 0}, {2, 0}, {0, -2}, {0, 2}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		src.Shuffle(len(deltas), func(i, j int) {
			deltas[i], deltas[j] = deltas[j], deltas[i]
		})
		carved := false
		for _, d := range deltas {
			nr, nc := cur.row+d[0], cur.col+d[1]
			if nr <= 0 || nr >= rows-1 || nc <= 0 || nc >= cols-1 {
				continue
			}
			if grid[nr][nc] != WallCell {
				continue
			}
			grid[cur.row+d[0]/2][cur.col+d[1]/2] = OpenCell
			grid[nr][nc] = OpenCell
			stack = append(stack, cell{nr, nc})
			carved = true
			break
		}
		if !carved {
			stack = stack[:len(stack)-1]
		}
	}

	layout := make([]string, rows)
	for i, row := range grid {
		layout[i] = string(row)
	}
	return layout, nil
}

// NewRandomEnvironment generates a maze and wraps it in an
// environment running from the top-left corridor cell to the
// bottom-right one.
func NewRandomEnvironment(height, width int, src *rand.Rand) (*Environment, error) {
	layout, err := Generate(height, width, src)
	if err != nil {
		return nil, err
	}
	return NewEnvironment(&Config{
		Layout: layout,
		Start:  Position{Row: 1, Col: 1},
		Goal:   Position{Row: height*2 - 1, Col: width*2 - 1},
	})
}
