package types

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/zeu5/selfplay-rl/util"
)

// QTable maps state hashes to action hashes to estimated discounted
// returns. Unvisited pairs default to 0 and are materialized lazily.
// A table is owned by exactly one agent during training.
type QTable struct {
	table map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

func (q *QTable) HasState(state string) bool {
	_, ok := q.table[state]
	return ok
}

// States returns the number of materialized states.
func (q *QTable) States() int {
	return len(q.table)
}

// Max returns the highest value stored for the state, def if none.
func (q *QTable) Max(state string, def float64) float64 {
	vals, ok := q.table[state]
	if !ok || len(vals) == 0 {
		return def
	}
	maxVal := math.Inf(-1)
	for _, val := range vals {
		if val > maxVal {
			maxVal = val
		}
	}
	return maxVal
}

// MaxAmong returns the best action among the given ones and its value.
// Ties break to the smallest action hash so selection is reproducible
// regardless of map iteration order.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	sorted := make([]string, len(actions))
	copy(sorted, actions)
	slices.Sort(sorted)

	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range sorted {
		val := q.Get(state, a, def)
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}
	return maxAction, maxVal
}

// Snapshot returns a deep copy, used by checkpoint hooks so savers
// never observe a table mid-update.
func (q *QTable) Snapshot() *QTable {
	snap := NewQTable()
	for state, actions := range q.table {
		snap.table[state] = make(map[string]float64, len(actions))
		for action, val := range actions {
			snap.table[state][action] = val
		}
	}
	return snap
}

// Merge combines two tables into a new one. Keys present in only one
// table keep their value, overlapping keys combine as
// weight*a + (1-weight)*b. Meant for offline use between training runs.
func Merge(a, b *QTable, weight float64) *QTable {
	merged := a.Snapshot()
	for state, actions := range b.table {
		for action, bVal := range actions {
			aActions, ok := merged.table[state]
			if !ok {
				merged.Set(state, action, bVal)
				continue
			}
			aVal, ok := aActions[action]
			if !ok {
				merged.Set(state, action, bVal)
				continue
			}
			merged.Set(state, action, weight*aVal+(1-weight)*bVal)
		}
	}
	return merged
}

// Save writes the table as JSON. The format is opaque to the core,
// Load is its only reader.
func (q *QTable) Save(savePath string) error {
	return util.SaveJSON(savePath, q.table)
}

func LoadQTable(loadPath string) (*QTable, error) {
	table := make(map[string]map[string]float64)
	if err := util.LoadJSON(loadPath, &table); err != nil {
		return nil, err
	}
	return &QTable{table: table}, nil
}
