package grid

import "fmt"

// InvariantError reports a structural rule broken in an observable state.
// These indicate bugs in the placer or builder, never user input, so
// callers treat them as fatal.
type InvariantError struct {
	Rule   string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant broken (%s): %s", e.Rule, e.Detail)
}

func invariant(rule, format string, args ...any) *InvariantError {
	return &InvariantError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// ValidateStructure checks every structural rule the layout must satisfy:
// clue-box adjacency, the top-left and bottom-right corner rules,
// licensing of every run, and that no clue box sits orphaned. Dictionary
// validity is the sealer's job, not this one's.
func (g *Grid) ValidateStructure() error {
	if err := g.checkClueAdjacency(); err != nil {
		return err
	}
	if err := g.checkTopLeft(); err != nil {
		return err
	}
	if err := g.checkBottomRight(); err != nil {
		return err
	}
	if err := g.checkLicensing(); err != nil {
		return err
	}
	if err := g.checkOrphanClues(); err != nil {
		return err
	}
	return g.checkSlotGeometry()
}

func (g *Grid) checkClueAdjacency() error {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if g.At(row, col).Type != ClueBox {
				continue
			}
			for _, step := range orthogonalSteps {
				nr, nc := row+step.Row, col+step.Col
				if g.InBounds(nr, nc) && g.At(nr, nc).Type == ClueBox {
					return invariant("clue-adjacency",
						"clue boxes touch at %s and %s", Coord{row, col}, Coord{nr, nc})
				}
			}
		}
	}
	return nil
}

func (g *Grid) checkTopLeft() error {
	if g.blocker == nil || !g.blocker.contains(Coord{0, 0}) {
		if g.At(0, 0).Type != ClueBox {
			return invariant("top-left-clue", "top-left cell is %s", g.At(0, 0).Type)
		}
		return nil
	}
	right := Coord{0, g.blocker.Col + g.blocker.Width}
	below := Coord{g.blocker.Row + g.blocker.Height, 0}
	for _, pos := range []Coord{right, below} {
		if g.InBounds(pos.Row, pos.Col) && g.At(pos.Row, pos.Col).Type == ClueBox {
			return nil
		}
	}
	return invariant("top-left-clue",
		"blocker corner fallbacks %s and %s host no clue box", right, below)
}

func (g *Grid) checkBottomRight() error {
	for row := g.Rows - 2; row < g.Rows; row++ {
		for col := g.Cols - 2; col < g.Cols; col++ {
			if g.At(row, col).Type == ClueBox {
				return invariant("bottom-right-corner",
					"clue box at %s inside the 2x2 corner region", Coord{row, col})
			}
		}
	}
	return nil
}

func (g *Grid) checkLicensing() error {
	for _, slot := range g.RegisterSlots() {
		if !g.Licensed(slot.Start, slot.Dir) {
			return invariant("licensing",
				"%s run starting at %s has no licensing clue box", slot.Dir, slot.Start)
		}
	}
	return nil
}

func (g *Grid) checkOrphanClues() error {
	if orphans := g.OrphanClues(); len(orphans) > 0 {
		return invariant("orphan-clue",
			"clue box at %s licenses no run", orphans[0])
	}
	return nil
}

// OrphanClues lists clue boxes that license no run of length >= 2. The
// layout builder rejects layouts carrying any; a sealed grid must have
// none.
func (g *Grid) OrphanClues() []Coord {
	licensed := make(map[Coord]bool)
	for _, slot := range g.RegisterSlots() {
		for _, off := range slot.Dir.LicenseOffsets() {
			pos := Coord{slot.Start.Row + off.Row, slot.Start.Col + off.Col}
			if g.At(pos.Row, pos.Col).Type == ClueBox {
				licensed[pos] = true
			}
		}
	}
	var orphans []Coord
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			pos := Coord{row, col}
			if g.At(row, col).Type == ClueBox && !licensed[pos] {
				orphans = append(orphans, pos)
			}
		}
	}
	return orphans
}

func (g *Grid) checkSlotGeometry() error {
	for _, slot := range g.RegisterSlots() {
		for _, c := range slot.Cells() {
			if !g.InBounds(c.Row, c.Col) {
				return invariant("slot-geometry",
					"slot %s reaches outside the grid at %s", slot.ID, c)
			}
			if g.At(c.Row, c.Col).blocked() {
				return invariant("slot-geometry",
					"slot %s crosses a blocked cell at %s", slot.ID, c)
			}
		}
	}
	return nil
}
