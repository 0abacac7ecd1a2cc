package layout

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

func TestMain(m *testing.M) {
	Log.SetLevel(logrus.WarnLevel)
	grid.Log.SetLevel(logrus.WarnLevel)
	dict.Log.SetLevel(logrus.WarnLevel)
	m.Run()
}

// denseDictionary holds every 2..maxLen-letter combination over a small
// alphabet except single-letter repetitions, so any crossing pattern has
// candidates and feasibility never fails for structural reasons.
func denseDictionary(t *testing.T, letters string, maxLen int) *dict.Dictionary {
	t.Helper()
	var b strings.Builder
	b.WriteString("surface\tfrequency\tdifficulty_score\n")
	var emit func(prefix string)
	emit = func(prefix string) {
		if len(prefix) >= 2 && len(prefix) <= maxLen && !uniform(prefix) {
			b.WriteString(prefix + "\t0.50\t0.20\n")
		}
		if len(prefix) == maxLen {
			return
		}
		for _, c := range letters {
			emit(prefix + string(c))
		}
	}
	emit("")
	d, err := dict.Read(strings.NewReader(b.String()), dict.Config{Path: "dense"})
	require.NoError(t, err)
	return d
}

func uniform(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

func TestApplyBlockerPinned(t *testing.T) {
	g, err := grid.New(10, 12)
	require.NoError(t, err)
	r, c := 3, 4
	spec := &BlockerSpec{Height: 3, Width: 4, Row: &r, Col: &c}
	require.NoError(t, ApplyBlocker(g, spec, newRNG(1)))

	for row := 3; row < 6; row++ {
		for col := 4; col < 8; col++ {
			assert.Equal(t, grid.BlockerZone, g.At(row, col).Type)
		}
	}
	assert.Equal(t, grid.ClueBox, g.At(0, 0).Type)
}

func TestApplyBlockerOutOfBounds(t *testing.T) {
	g, err := grid.New(10, 12)
	require.NoError(t, err)
	r, c := 9, 9
	spec := &BlockerSpec{Height: 4, Width: 4, Row: &r, Col: &c}
	assert.ErrorIs(t, ApplyBlocker(g, spec, newRNG(1)), grid.ErrBlockerBounds)
}

func TestApplyBlockerRandomInRange(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		g, err := grid.New(10, 12)
		require.NoError(t, err)
		require.NoError(t, ApplyBlocker(g, &BlockerSpec{}, newRNG(seed)))
		b := g.Blocker()
		require.NotNil(t, b)
		assert.GreaterOrEqual(t, b.Height, 3)
		assert.LessOrEqual(t, b.Height, 5) // min(10/2, 6)
		assert.GreaterOrEqual(t, b.Width, 3)
		assert.LessOrEqual(t, b.Width, 6)
	}
}

func TestApplyBlockerNilSpec(t *testing.T) {
	g, err := grid.New(10, 12)
	require.NoError(t, err)
	require.NoError(t, ApplyBlocker(g, nil, newRNG(1)))
	assert.Nil(t, g.Blocker())
}

func TestPlaceThemeEmptyList(t *testing.T) {
	g, err := grid.New(8, 8)
	require.NoError(t, err)
	d := denseDictionary(t, "AEST", 6)

	placements, used, err := PlaceTheme(g, d, nil, newRNG(1), false)
	require.NoError(t, err)
	assert.Empty(t, placements)
	assert.Empty(t, used)
}

func TestPlaceThemeUserWords(t *testing.T) {
	g, err := grid.New(8, 8)
	require.NoError(t, err)
	d := denseDictionary(t, "AEST", 6)

	entries := []theme.Entry{
		{Word: "TESTA", Source: "user"},
		{Word: "ASSET", Source: "user"},
	}
	placements, used, err := PlaceTheme(g, d, entries, newRNG(7), true)
	require.NoError(t, err)
	require.NotEmpty(t, placements)

	for _, p := range placements {
		word := p.Entry.Word
		assert.True(t, used[word])
		step := p.Dir.Step()
		for i := 0; i < p.Length; i++ {
			r, c := p.Start.Row+i*step.Row, p.Start.Col+i*step.Col
			assert.Equal(t, word[i], g.At(r, c).Letter,
				"letter %d of %s at (%d,%d)", i, word, r, c)
		}
		assert.Equal(t, grid.ClueBox, g.At(p.ClueBox.Row, p.ClueBox.Col).Type)
	}
}

func TestPlaceThemeNonDictionaryUserWordSucceeds(t *testing.T) {
	// AAAAA is excluded from the dense dictionary; a user entry places
	// anyway because user words skip crossing feasibility checks.
	g, err := grid.New(8, 8)
	require.NoError(t, err)
	d := denseDictionary(t, "AEST", 6)

	entries := []theme.Entry{{Word: "AAAAA", Source: "user"}}
	placements, used, err := PlaceTheme(g, d, entries, newRNG(3), true)
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.True(t, used["AAAAA"])
}

func TestPlaceThemeDeterministic(t *testing.T) {
	d := denseDictionary(t, "AEST", 6)
	entries := []theme.Entry{
		{Word: "TESTA", Source: "user"},
		{Word: "ASSET", Source: "user"},
		{Word: "STATE", Source: "user"},
	}
	run := func() []Placement {
		g, err := grid.New(10, 10)
		require.NoError(t, err)
		placements, _, err := PlaceTheme(g, d, entries, newRNG(42), true)
		require.NoError(t, err)
		return placements
	}
	assert.Equal(t, run(), run())
}

func TestCutPenaltyPrefersCentralCuts(t *testing.T) {
	// For a 12-cell run the central cut (6) beats an off-center one, and
	// both beat a cut leaving a 3-cell fragment.
	assert.Less(t, cutPenalty(6, 12), cutPenalty(4, 12))
	assert.Less(t, cutPenalty(4, 12), cutPenalty(3, 12))
	assert.Less(t, cutPenalty(6, 12), cutPenalty(8, 12)) // right side would be 3
}

func TestBuildOnBlankGrid(t *testing.T) {
	g, err := grid.New(8, 8)
	require.NoError(t, err)
	d := denseDictionary(t, "AES", 8)

	require.NoError(t, Build(g, d, map[string]bool{}))
	require.NoError(t, g.ValidateStructure())

	slots := g.RegisterSlots()
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.True(t, g.Licensed(s.Start, s.Dir), "slot %s at %s", s.ID, s.Start)
	}
}

func TestBuildPartitionsLongRuns(t *testing.T) {
	g, err := grid.New(14, 14)
	require.NoError(t, err)
	d := denseDictionary(t, "AES", 8)

	require.NoError(t, Build(g, d, map[string]bool{}))
	for _, s := range g.RegisterSlots() {
		assert.LessOrEqual(t, s.Length, 10, "no run survives past the coarse pass")
	}
}

func TestBuildRejectsInfeasiblePattern(t *testing.T) {
	// A theme word with letters outside the dictionary alphabet starves
	// its crossing slots; feasibility must reject the layout.
	g, err := grid.New(8, 8)
	require.NoError(t, err)
	d := denseDictionary(t, "AES", 8)

	entries := []theme.Entry{{Word: "ZZZZZ", Source: "user"}}
	_, used, err := PlaceTheme(g, d, entries, newRNG(5), true)
	require.NoError(t, err)

	err = Build(g, d, used)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInfeasible)
}
