package solver

import (
	"fmt"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

// slotState is one slot's variable group: its cells and the words its
// table constraint allows.
type slotState struct {
	slot     grid.Slot
	cells    []grid.Coord
	pool     []string
	fallback bool
}

// model is the immutable part of the constraint model, shared read-only
// by all portfolio workers.
type model struct {
	rows, cols int
	slots      []slotState
	base       []byte // letters fixed before solving (theme words), 0 = free
	coverage   map[int][]int
	used       map[string]bool
}

func (m *model) cellIndex(c grid.Coord) int { return c.Row*m.cols + c.Col }

// buildModel assembles candidate pools for every slot. Slots of length
// >= 3 draw from the dictionary, honoring the difficulty bound and the
// fallback budget; two-letter slots accept any letter pair consistent
// with their fixed cells.
func buildModel(g *grid.Grid, slots []grid.Slot, d *dict.Dictionary, used map[string]bool, opts Options) (*model, error) {
	m := &model{
		rows:     g.Rows,
		cols:     g.Cols,
		base:     make([]byte, g.Rows*g.Cols),
		coverage: make(map[int][]int),
		used:     used,
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			m.base[row*g.Cols+col] = g.At(row, col).Letter
		}
	}

	starved := 0
	for i, slot := range slots {
		cells := slot.Cells()
		pattern := g.Pattern(cells)
		state := slotState{slot: slot, cells: cells}

		if slot.Length >= 3 {
			full := d.Candidates(slot.Length, dict.Pattern(pattern), used)
			pool := full
			if opts.MaxDifficulty > 0 {
				filtered := make([]*dict.Entry, 0, len(full))
				for _, e := range full {
					if e.DifficultyScore < opts.MaxDifficulty {
						filtered = append(filtered, e)
					}
				}
				if len(filtered) > 0 {
					pool = filtered
				} else {
					starved++
					if starved > opts.MediumSlotLimit {
						return nil, fmt.Errorf("%w: %d slots exceed the difficulty bound (budget %d)",
							ErrUnsat, starved, opts.MediumSlotLimit)
					}
					state.fallback = true
				}
			}
			state.pool = make([]string, len(pool))
			for j, e := range pool {
				state.pool[j] = e.Surface
			}
		} else {
			state.pool = letterPairs(pattern)
		}

		if len(state.pool) == 0 {
			return nil, fmt.Errorf("%w: no candidates for slot %s at %s",
				ErrUnsat, slot.ID, slot.Start)
		}
		m.slots = append(m.slots, state)
		for _, c := range cells {
			idx := m.cellIndex(c)
			m.coverage[idx] = append(m.coverage[idx], i)
		}
	}
	return m, nil
}

// letterPairs expands a two-cell pattern into every consistent pair.
// Uniqueness pruning happens during search, exactly as for real words.
func letterPairs(pattern []byte) []string {
	first := []byte{pattern[0]}
	if pattern[0] == 0 {
		first = alphabet()
	}
	second := []byte{pattern[1]}
	if pattern[1] == 0 {
		second = alphabet()
	}
	pairs := make([]string, 0, len(first)*len(second))
	for _, a := range first {
		for _, b := range second {
			pairs = append(pairs, string([]byte{a, b}))
		}
	}
	return pairs
}

func alphabet() []byte {
	letters := make([]byte, 26)
	for i := range letters {
		letters[i] = 'A' + byte(i)
	}
	return letters
}
