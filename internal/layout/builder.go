package layout

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

// Partition passes: coarse first, then fine. Runs between 4 and 8 cells
// give the dictionary the deepest candidate pools.
var partitionPasses = [2]int{10, 8}

const partitionRounds = 30

// Build freezes the cell-type assignment: heals single-cell orphans,
// partitions over-long runs, licenses every run start and verifies that
// every slot of length >= 3 still has dictionary candidates. The grid is
// mutated in place; on error the caller discards the whole attempt.
func Build(g *grid.Grid, d *dict.Dictionary, used map[string]bool) error {
	if err := healOrphans(g); err != nil {
		return err
	}
	for _, maxLen := range partitionPasses {
		for round := 0; round < partitionRounds; round++ {
			if !partitionRuns(g, maxLen) {
				break
			}
			if err := healOrphans(g); err != nil {
				return err
			}
		}
	}
	if err := ensureLicensing(g); err != nil {
		return err
	}
	// A clue box licensing nothing (typically a healed pocket cell) is a
	// dead layout, not a bug: reject it here so the seal-time invariant
	// check stays meaningful.
	if orphans := g.OrphanClues(); len(orphans) > 0 {
		return fmt.Errorf("%w: clue box at %s licenses no run",
			ErrInfeasible, orphans[0])
	}
	return verifyFeasibility(g, d, used)
}

// healOrphans converts cells whose across and down runs are both single
// cells into clue boxes. Healing can create new orphans, so it loops to a
// fixed point.
func healOrphans(g *grid.Grid) error {
	for changed := true; changed; {
		changed = false
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				if g.At(row, col).Type != grid.EmptyPlayable {
					continue
				}
				if len(g.MaximalRun(row, col, grid.Across)) > 1 ||
					len(g.MaximalRun(row, col, grid.Down)) > 1 {
					continue
				}
				if err := g.PlaceClueBox(row, col); err != nil {
					return fmt.Errorf("%w: orphan cell %s cannot become a clue box: %v",
						ErrInfeasible, grid.Coord{Row: row, Col: col}, err)
				}
				changed = true
			}
		}
	}
	return nil
}

// partitionRuns splits every run longer than maxLen by planting a clue
// box at the cut cell. Cuts prefer the middle of the run and avoid
// leaving a 3-cell remainder on either side. Reports whether anything
// changed.
func partitionRuns(g *grid.Grid, maxLen int) bool {
	changed := false
	for _, dir := range []grid.Direction{grid.Across, grid.Down} {
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				if !g.IsRunStart(row, col, dir) {
					continue
				}
				run := g.MaximalRun(row, col, dir)
				if len(run) <= maxLen {
					continue
				}
				if complete(g.Pattern(run)) {
					continue // fully lettered span, nothing to cut
				}
				if cutRun(g, run) {
					changed = true
				}
			}
		}
	}
	return changed
}

func cutRun(g *grid.Grid, run []grid.Coord) bool {
	length := len(run)
	offsets := make([]int, 0, length)
	for i := 2; i <= length-2; i++ {
		offsets = append(offsets, i)
	}
	sort.SliceStable(offsets, func(a, b int) bool {
		return cutPenalty(offsets[a], length) < cutPenalty(offsets[b], length)
	})
	for _, i := range offsets {
		cell := run[i]
		if g.At(cell.Row, cell.Col).Type != grid.EmptyPlayable {
			continue
		}
		if err := g.PlaceClueBox(cell.Row, cell.Col); err != nil {
			continue
		}
		Log.WithFields(logrus.Fields{
			"start": run[0], "length": length, "cut": cell,
		}).Debug("partitioned long run")
		return true
	}
	return false
}

// cutPenalty prefers central cuts and penalizes cuts leaving a 3-cell
// fragment, which tends to starve the candidate pool.
func cutPenalty(i, length int) int {
	left, right := i, length-i-1
	penalty := abs(2*i - length) // 2*|i - length/2| without the division
	if left == 3 {
		penalty += 20
	}
	if right == 3 {
		penalty += 20
	}
	return penalty
}

// ensureLicensing walks every run of length >= 2 and plants a licensing
// clue box next to each unlicensed start. A start that cannot be licensed
// rejects the layout.
func ensureLicensing(g *grid.Grid) error {
	for changed := true; changed; {
		changed = false
		for _, dir := range []grid.Direction{grid.Across, grid.Down} {
			for row := 0; row < g.Rows; row++ {
				for col := 0; col < g.Cols; col++ {
					if !g.IsRunStart(row, col, dir) {
						continue
					}
					run := g.MaximalRun(row, col, dir)
					if len(run) < 2 {
						continue
					}
					if g.Licensed(run[0], dir) {
						continue
					}
					if _, err := g.EnsureLicense(run[0], dir); err == nil {
						changed = true
						continue
					}
					// No neighbor can host the license. An empty start cell
					// becomes a clue box itself, eliminating the run; a
					// lettered start means crossing words pin every
					// neighbor, and the layout is lost.
					start := run[0]
					if g.At(start.Row, start.Col).Type != grid.EmptyPlayable ||
						g.PlaceClueBox(start.Row, start.Col) != nil {
						return fmt.Errorf("%w: %s run at %s cannot be licensed",
							ErrInfeasible, dir, start)
					}
					changed = true
				}
			}
		}
		if changed {
			if err := healOrphans(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyFeasibility registers the final slots and rejects the layout if
// any slot of length >= 3 has an empty candidate pool under the current
// theme letters. Two-letter slots stay free variables.
func verifyFeasibility(g *grid.Grid, d *dict.Dictionary, used map[string]bool) error {
	seen := make(map[string]grid.Coord)
	for _, slot := range g.RegisterSlots() {
		pattern := g.Pattern(slot.Cells())
		if complete(pattern) {
			surface := string(pattern)
			if prev, dup := seen[surface]; dup {
				return fmt.Errorf("%w: pre-filled run %q appears at both %s and %s",
					ErrInfeasible, surface, prev, slot.Start)
			}
			seen[surface] = slot.Start
		}
		if slot.Length < 3 {
			continue
		}
		if complete(pattern) {
			surface := string(pattern)
			if used[surface] || d.Contains(surface) {
				continue
			}
			return fmt.Errorf("%w: pre-filled run %q at %s is not a dictionary word",
				ErrInfeasible, surface, slot.Start)
		}
		if !d.HasCandidates(slot.Length, dict.Pattern(pattern), used) {
			return fmt.Errorf("%w: no candidates for %s slot at %s (length %d)",
				ErrInfeasible, slot.Dir, slot.Start, slot.Length)
		}
	}
	return nil
}
