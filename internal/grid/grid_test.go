package grid

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Log.SetLevel(logrus.WarnLevel)
	m.Run()
}

func TestNewGridPlantsTopLeftClue(t *testing.T) {
	g, err := New(6, 8)
	require.NoError(t, err)
	assert.Equal(t, ClueBox, g.At(0, 0).Type)
	assert.Equal(t, EmptyPlayable, g.At(3, 3).Type)

	_, err = New(3, 8)
	assert.Error(t, err, "grids below 4x4 are rejected")
}

func TestPlaceClueBoxAdjacency(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	assert.ErrorIs(t, g.PlaceClueBox(0, 1), ErrClueAdjacency)
	assert.ErrorIs(t, g.PlaceClueBox(1, 0), ErrClueAdjacency)
	assert.NoError(t, g.PlaceClueBox(1, 1), "diagonal contact is allowed")
}

func TestPlaceClueBoxCornerRegion(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)
	for _, pos := range [][2]int{{4, 4}, {4, 5}, {5, 4}, {5, 5}} {
		assert.ErrorIs(t, g.PlaceClueBox(pos[0], pos[1]), ErrClueCorner, "at %v", pos)
	}
	assert.NoError(t, g.PlaceClueBox(3, 5))
}

func TestPlaceLetter(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	require.NoError(t, g.PlaceLetter(2, 2, 'A'))
	assert.NoError(t, g.PlaceLetter(2, 2, 'A'), "same letter is idempotent")
	assert.ErrorIs(t, g.PlaceLetter(2, 2, 'B'), ErrCellOccupied)
	assert.Error(t, g.PlaceLetter(0, 0, 'A'), "clue box refuses letters")
	assert.Error(t, g.PlaceLetter(2, 3, '1'))
}

func TestSnapshotRollback(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	token := g.Snapshot()
	require.NoError(t, g.PlaceLetter(2, 2, 'A'))
	require.NoError(t, g.PlaceClueBox(4, 0))
	assert.Equal(t, Letter, g.At(2, 2).Type)

	g.Rollback(token)
	assert.Equal(t, EmptyPlayable, g.At(2, 2).Type)
	assert.Equal(t, EmptyPlayable, g.At(4, 0).Type)
	assert.Equal(t, ClueBox, g.At(0, 0).Type, "earlier state untouched")

	// Nested tokens unwind in order.
	t1 := g.Snapshot()
	require.NoError(t, g.PlaceLetter(1, 1, 'X'))
	t2 := g.Snapshot()
	require.NoError(t, g.PlaceLetter(1, 2, 'Y'))
	g.Rollback(t2)
	assert.Equal(t, byte('X'), g.At(1, 1).Letter)
	assert.Equal(t, byte(0), g.At(1, 2).Letter)
	g.Rollback(t1)
	assert.Equal(t, byte(0), g.At(1, 1).Letter)
}

func TestMaximalRun(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)
	require.NoError(t, g.PlaceClueBox(0, 3))

	run := g.MaximalRun(0, 1, Across)
	assert.Equal(t, []Coord{{0, 1}, {0, 2}}, run)

	run = g.MaximalRun(0, 4, Across)
	assert.Equal(t, []Coord{{0, 4}, {0, 5}}, run)

	run = g.MaximalRun(3, 3, Down)
	assert.Len(t, run, 5, "clue box at (0,3) bounds the column run")
	assert.Equal(t, Coord{1, 3}, run[0])

	assert.Nil(t, g.MaximalRun(0, 0, Across), "blocked cells have no run")
}

func TestSetBlockerBounds(t *testing.T) {
	g, err := New(8, 8)
	require.NoError(t, err)
	assert.ErrorIs(t, g.SetBlocker(Rect{Row: 6, Col: 6, Height: 3, Width: 3}), ErrBlockerBounds)
	assert.ErrorIs(t, g.SetBlocker(Rect{Row: 0, Col: 0, Height: 0, Width: 3}), ErrBlockerBounds)
}

func TestSetBlockerCornerFallback(t *testing.T) {
	// Top-left blocker swallows (0,0); the clue moves right of and below it.
	g, err := New(8, 8)
	require.NoError(t, err)
	require.NoError(t, g.SetBlocker(Rect{Row: 0, Col: 0, Height: 3, Width: 3}))
	assert.Equal(t, BlockerZone, g.At(0, 0).Type)
	assert.Equal(t, ClueBox, g.At(0, 3).Type)
	assert.Equal(t, ClueBox, g.At(3, 0).Type)
}

func TestSetBlockerFullWidthFallsToBelow(t *testing.T) {
	// A full-width top blocker leaves no cell to its right; the clue box
	// falls to the first row below it.
	g, err := New(20, 10)
	require.NoError(t, err)
	require.NoError(t, g.SetBlocker(Rect{Row: 0, Col: 0, Height: 5, Width: 10}))
	for col := 0; col < 10; col++ {
		assert.Equal(t, BlockerZone, g.At(2, col).Type)
	}
	assert.Equal(t, ClueBox, g.At(5, 0).Type)
}

func TestSetBlockerCoveringEverythingIsRejected(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)
	assert.ErrorIs(t, g.SetBlocker(Rect{Row: 0, Col: 0, Height: 6, Width: 6}), ErrBlockerCorner)
}

func TestRegisterSlotsDeterministic(t *testing.T) {
	build := func() *Grid {
		g, err := New(6, 6)
		require.NoError(t, err)
		require.NoError(t, g.PlaceClueBox(0, 3))
		require.NoError(t, g.PlaceClueBox(3, 0))
		return g
	}
	a := build().RegisterSlots()
	b := build().RegisterSlots()
	require.Equal(t, a, b, "equal layouts yield equal slot tables")

	for _, s := range a {
		assert.GreaterOrEqual(t, s.Length, 2)
	}
	// Across slots come first, ordered row-major.
	require.NotEmpty(t, a)
	assert.Equal(t, Across, a[0].Dir)
	assert.Equal(t, "A001", a[0].ID)
}

func TestLicensedOffsets(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	// (0,0) clue licenses the across run starting at (0,1) via "left" and
	// the down run starting at (1,0) via "above".
	assert.True(t, g.Licensed(Coord{0, 1}, Across))
	assert.True(t, g.Licensed(Coord{1, 0}, Down))
	assert.False(t, g.Licensed(Coord{2, 2}, Across))
}

func TestEnsureLicenseCreatesBox(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)

	pos, err := g.EnsureLicense(Coord{2, 2}, Across)
	require.NoError(t, err)
	assert.Equal(t, ClueBox, g.At(pos.Row, pos.Col).Type)
	assert.True(t, g.Licensed(Coord{2, 2}, Across))
}

func TestValidateStructure(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)
	// A hand-built legal 6x6 layout: every run of length >= 2 is licensed
	// and no clue box is orphaned or misplaced.
	for _, pos := range []Coord{{0, 3}, {0, 5}, {3, 0}, {5, 0}} {
		require.NoError(t, g.PlaceClueBox(pos.Row, pos.Col))
	}
	require.NoError(t, g.ValidateStructure())

	var inv *InvariantError
	// Force adjacent clue boxes behind the rule's back.
	g.set(2, 2, Cell{Type: ClueBox})
	g.set(2, 3, Cell{Type: ClueBox})
	err = g.ValidateStructure()
	require.Error(t, err)
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "clue-adjacency", inv.Rule)
}

func TestJSONRoundTrip(t *testing.T) {
	g, err := New(6, 6)
	require.NoError(t, err)
	require.NoError(t, g.SetBlocker(Rect{Row: 3, Col: 3, Height: 3, Width: 3}))
	require.NoError(t, g.PlaceLetter(1, 1, 'Q'))

	payload, err := json.Marshal(g)
	require.NoError(t, err)

	var back Grid
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.Equal(t, g.Rows, back.Rows)
	assert.Equal(t, g.Cols, back.Cols)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			assert.Equal(t, g.At(row, col), back.At(row, col), "cell (%d,%d)", row, col)
		}
	}
	assert.Equal(t, g.RegisterSlots(), back.RegisterSlots())
}
