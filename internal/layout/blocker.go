// Package layout turns a blank grid into a frozen, dictionary-feasible
// cell-type assignment: blocker placement, theme word seeding, orphan
// healing, run partitioning and clue licensing.
package layout

import (
	"errors"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/grid"
)

var Log = logrus.New()

var (
	// ErrThemePlacement means the placer could not seat enough theme words.
	ErrThemePlacement = errors.New("theme placement failed")
	// ErrInfeasible means the layout cannot be completed or has a slot with
	// no dictionary candidates.
	ErrInfeasible = errors.New("layout infeasible")
)

// BlockerSpec describes the requested blocker rectangle. Zero Height and
// Width ask for random dimensions; nil Row/Col ask for a random anchor.
type BlockerSpec struct {
	Height int  `json:"height"`
	Width  int  `json:"width"`
	Row    *int `json:"row,omitempty"`
	Col    *int `json:"col,omitempty"`
}

// ApplyBlocker places the blocker described by spec, drawing unspecified
// dimensions from [3, min(dim/2, 6)] and the anchor uniformly from the
// four corners plus center. A nil spec leaves the grid blocker-free.
func ApplyBlocker(g *grid.Grid, spec *BlockerSpec, rng *rand.Rand) error {
	if spec == nil {
		return nil
	}
	height, width := spec.Height, spec.Width
	if height == 0 {
		height = randDim(rng, g.Rows)
	}
	if width == 0 {
		width = randDim(rng, g.Cols)
	}

	var row, col int
	switch {
	case spec.Row != nil && spec.Col != nil:
		row, col = *spec.Row, *spec.Col
	default:
		anchors := [5]grid.Coord{
			{Row: 0, Col: 0},
			{Row: 0, Col: g.Cols - width},
			{Row: g.Rows - height, Col: 0},
			{Row: g.Rows - height, Col: g.Cols - width},
			{Row: (g.Rows - height) / 2, Col: (g.Cols - width) / 2},
		}
		anchor := anchors[rng.IntN(len(anchors))]
		row, col = anchor.Row, anchor.Col
	}

	Log.WithFields(logrus.Fields{
		"row": row, "col": col, "height": height, "width": width,
	}).Debug("placing blocker zone")
	return g.SetBlocker(grid.Rect{Row: row, Col: col, Height: height, Width: width})
}

func randDim(rng *rand.Rand, dim int) int {
	upper := min(6, max(3, dim/2))
	return 3 + rng.IntN(upper-3+1)
}
