package solver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

func TestMain(m *testing.M) {
	Log.SetLevel(logrus.WarnLevel)
	grid.Log.SetLevel(logrus.WarnLevel)
	dict.Log.SetLevel(logrus.WarnLevel)
	m.Run()
}

func loadDict(t *testing.T, rows ...string) *dict.Dictionary {
	t.Helper()
	tsv := "surface\tfrequency\tdifficulty_score\n" + strings.Join(rows, "\n") + "\n"
	d, err := dict.Read(strings.NewReader(tsv), dict.Config{Path: "test"})
	require.NoError(t, err)
	return d
}

// crossLayout builds a 4x4 grid with one across slot along the top row
// and one down slot along the left column. The slots share no cell, so
// they exercise candidate pools and uniqueness without crossings.
func crossLayout(t *testing.T) (*grid.Grid, []grid.Slot) {
	t.Helper()
	g, err := grid.New(4, 4)
	require.NoError(t, err)
	slots := []grid.Slot{
		{ID: "A001", Start: grid.Coord{Row: 0, Col: 1}, Dir: grid.Across, Length: 3},
		{ID: "D001", Start: grid.Coord{Row: 1, Col: 0}, Dir: grid.Down, Length: 3},
	}
	return g, slots
}

func TestSolveSimpleCross(t *testing.T) {
	g, slots := crossLayout(t)
	d := loadDict(t,
		"CAR\t0.9\t0.1",
		"COT\t0.8\t0.1",
		"TOC\t0.7\t0.1",
		"RAC\t0.6\t0.1",
	)

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 5 * time.Second,
		Workers: 2,
		Seed:    1,
	})
	require.NoError(t, err)
	require.Len(t, words, 2)

	assigned := map[string]string{}
	for _, sw := range words {
		assigned[sw.Slot.ID] = sw.Word
		assert.True(t, d.Contains(sw.Word))
	}
	assert.NotEqual(t, assigned["A001"], assigned["D001"], "uniqueness binds")
}

func TestSolveHonorsCrossingLetters(t *testing.T) {
	// The across and down slots share cell (1,1): across (1,0)-(1,2),
	// down (0,1)-(2,1). Only CAR/TAC agree there ('A' at across[1], down[1]).
	g, err := grid.New(4, 4)
	require.NoError(t, err)
	slots := []grid.Slot{
		{ID: "A001", Start: grid.Coord{Row: 1, Col: 0}, Dir: grid.Across, Length: 3},
		{ID: "D001", Start: grid.Coord{Row: 0, Col: 1}, Dir: grid.Down, Length: 3},
	}
	d := loadDict(t,
		"CAR\t0.9\t0.1", // A at index 1
		"TAC\t0.8\t0.1", // A at index 1
	)

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 5 * time.Second,
		Workers: 1,
		Seed:    1,
	})
	require.NoError(t, err)
	byID := map[string]string{}
	for _, sw := range words {
		byID[sw.Slot.ID] = sw.Word
	}
	across, down := byID["A001"], byID["D001"]
	assert.Equal(t, across[1], down[1], "shared cell letters agree")
	assert.NotEqual(t, across, down)
}

func TestSolveRespectsFixedThemeLetters(t *testing.T) {
	g, slots := crossLayout(t)
	// Pin the across slot's first letter to T; only TOC fits.
	require.NoError(t, g.PlaceLetter(0, 1, 'T'))
	d := loadDict(t,
		"CAR\t0.9\t0.1",
		"TOC\t0.8\t0.1",
		"RAC\t0.7\t0.1",
	)

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 5 * time.Second,
		Workers: 1,
		Seed:    1,
	})
	require.NoError(t, err)
	byID := map[string]string{}
	for _, sw := range words {
		byID[sw.Slot.ID] = sw.Word
	}
	assert.Equal(t, "TOC", byID["A001"])
}

func TestSolveBannedWordsExcluded(t *testing.T) {
	g, slots := crossLayout(t)
	d := loadDict(t,
		"CAR\t0.9\t0.1",
		"TOC\t0.8\t0.1",
		"RAC\t0.7\t0.1",
	)

	used := map[string]bool{"CAR": true}
	words, err := Solve(context.Background(), g, slots, d, used, Options{
		Timeout: 5 * time.Second,
		Workers: 1,
		Seed:    1,
	})
	require.NoError(t, err)
	for _, sw := range words {
		assert.NotEqual(t, "CAR", sw.Word)
	}
}

func TestSolveUnsatWhenNoCandidates(t *testing.T) {
	g, slots := crossLayout(t)
	d := loadDict(t, "CARA\t0.9\t0.1") // wrong length for every slot

	_, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 2 * time.Second,
		Workers: 1,
		Seed:    1,
	})
	assert.ErrorIs(t, err, ErrUnsat)
}

func TestSolveUnsatWhenUniquenessImpossible(t *testing.T) {
	// Two same-length slots, a single candidate word: uniqueness makes
	// the model unsatisfiable.
	g, slots := crossLayout(t)
	d := loadDict(t, "CAR\t0.9\t0.1")

	_, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 2 * time.Second,
		Workers: 2,
		Seed:    1,
	})
	assert.ErrorIs(t, err, ErrUnsat)
}

func TestSolveDifficultyBoundStrict(t *testing.T) {
	g, slots := crossLayout(t)
	d := loadDict(t,
		"CAR\t0.9\t0.10",
		"TOC\t0.8\t0.95", // above the ceiling
		"RAC\t0.7\t0.10",
	)

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout:         5 * time.Second,
		Workers:         1,
		MaxDifficulty:   0.30,
		MediumSlotLimit: 0,
		Seed:            1,
	})
	require.NoError(t, err)
	for _, sw := range words {
		entry, ok := d.Lookup(sw.Word)
		require.True(t, ok)
		assert.Less(t, entry.DifficultyScore, 0.30)
	}
}

func TestSolveMediumSlotBudget(t *testing.T) {
	g, slots := crossLayout(t)
	// Every candidate is hard: phase-1 (budget 0) must reject, a budget
	// covering both slots must solve with fallback-flagged slots.
	d := loadDict(t,
		"CAR\t0.9\t0.90",
		"TOC\t0.8\t0.95",
	)

	_, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout:         2 * time.Second,
		Workers:         1,
		MaxDifficulty:   0.30,
		MediumSlotLimit: 0,
		Seed:            1,
	})
	assert.ErrorIs(t, err, ErrUnsat)

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout:         5 * time.Second,
		Workers:         1,
		MaxDifficulty:   0.30,
		MediumSlotLimit: 2,
		Seed:            1,
	})
	require.NoError(t, err)
	for _, sw := range words {
		assert.True(t, sw.Fallback, "starved slots carry the fallback mark")
	}
}

func TestSolveTwoLetterSlotsFreeButDistinct(t *testing.T) {
	g, err := grid.New(4, 4)
	require.NoError(t, err)
	slots := []grid.Slot{
		{ID: "A001", Start: grid.Coord{Row: 1, Col: 0}, Dir: grid.Across, Length: 2},
		{ID: "A002", Start: grid.Coord{Row: 2, Col: 0}, Dir: grid.Across, Length: 2},
	}
	d := loadDict(t, "CAR\t0.9\t0.1") // no 2-letter entries needed

	words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
		Timeout: 5 * time.Second,
		Workers: 1,
		Seed:    1,
	})
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.NotEqual(t, words[0].Word, words[1].Word, "two-letter slots stay pairwise distinct")
}

func TestSolveDeterministic(t *testing.T) {
	d := loadDict(t,
		"CAR\t0.9\t0.1",
		"COT\t0.8\t0.1",
		"TOC\t0.7\t0.1",
		"RAC\t0.6\t0.1",
		"ROT\t0.5\t0.1",
	)
	run := func() []SlotWord {
		g, slots := crossLayout(t)
		words, err := Solve(context.Background(), g, slots, d, map[string]bool{}, Options{
			Timeout: 5 * time.Second,
			Workers: 4,
			Seed:    99,
		})
		require.NoError(t, err)
		return words
	}
	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run(), "equal seeds give identical fills")
	}
}

func TestSolveTimeout(t *testing.T) {
	// A cancelled context surfaces as a timeout, not unsat.
	g, slots := crossLayout(t)
	d := loadDict(t,
		"CAR\t0.9\t0.1",
		"TOC\t0.8\t0.1",
		"RAC\t0.7\t0.1",
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, g, slots, d, map[string]bool{}, Options{
		Timeout: time.Second,
		Workers: 1,
		Seed:    1,
	})
	assert.ErrorIs(t, err, ErrTimeout)
}
