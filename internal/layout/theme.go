package layout

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

// placementAttempts bounds how many ranked positions are tried per word.
const placementAttempts = 30

// Placement records where a theme entry landed.
type Placement struct {
	Entry   theme.Entry
	Start   grid.Coord
	Dir     grid.Direction
	Length  int
	ClueBox grid.Coord
}

// PlaceTheme seats theme entries in list order. The target count is
// min(len(entries), 40% of the expected slot count); unless wordsOnly is
// set, finishing below two placed words (when two were available) fails
// the attempt. Returned alongside the placements is the set of placed
// surfaces, which downstream stages treat as used words.
//
// Candidate positions are ranked by crossing score (descending; cells
// already holding the matching letter count double, potential crossings
// with still pending theme words once), then by distance to already placed
// letters (ascending), with the seeded RNG's shuffle as the final
// tie-break.
func PlaceTheme(g *grid.Grid, d *dict.Dictionary, entries []theme.Entry, rng *rand.Rand, wordsOnly bool) ([]Placement, map[string]bool, error) {
	used := make(map[string]bool)
	if len(entries) == 0 {
		return nil, used, nil
	}

	expectedSlots := expectedSlotCount(g)
	target := min(len(entries), (expectedSlots*4)/10)
	minRequired := min(2, len(entries))
	if wordsOnly {
		target = len(entries)
		minRequired = 0
	}

	var placements []Placement
	pending := make([]string, 0, len(entries))
	for _, e := range entries {
		pending = append(pending, dict.Normalize(e.Word))
	}

	for i, entry := range entries {
		if len(placements) >= target && !wordsOnly {
			break
		}
		word := dict.Normalize(entry.Word)
		if len(word) < 2 || used[word] {
			continue
		}
		pending[i] = ""
		placement, ok := placeWord(g, d, word, entry, pending, used, rng)
		if !ok {
			pending[i] = word
			continue
		}
		placements = append(placements, placement)
		used[word] = true
	}

	if len(placements) < minRequired {
		return nil, nil, fmt.Errorf("%w: placed %d of %d words (minimum %d)",
			ErrThemePlacement, len(placements), len(entries), minRequired)
	}
	Log.WithFields(logrus.Fields{
		"placed": len(placements), "target": target,
	}).Debug("theme words placed")
	return placements, used, nil
}

type position struct {
	start     grid.Coord
	dir       grid.Direction
	crossings int
	distance  int
}

func placeWord(g *grid.Grid, d *dict.Dictionary, word string, entry theme.Entry, pending []string, used map[string]bool, rng *rand.Rand) (Placement, bool) {
	candidates := enumeratePositions(g, word, pending)
	if len(candidates) == 0 {
		return Placement{}, false
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].crossings != candidates[j].crossings {
			return candidates[i].crossings > candidates[j].crossings
		}
		return candidates[i].distance < candidates[j].distance
	})

	attempts := min(placementAttempts, len(candidates))
	for _, pos := range candidates[:attempts] {
		if placement, ok := tryPlace(g, d, word, entry, pos, used); ok {
			return placement, true
		}
	}
	return Placement{}, false
}

// enumeratePositions lists every (start, dir) where word geometrically
// fits, scored for ranking.
func enumeratePositions(g *grid.Grid, word string, pending []string) []position {
	var out []position
	for _, dir := range []grid.Direction{grid.Across, grid.Down} {
		step := dir.Step()
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				if !fits(g, word, row, col, dir) {
					continue
				}
				pos := position{start: grid.Coord{Row: row, Col: col}, dir: dir}
				pos.crossings = crossingPotential(g, word, row, col, dir, pending)
				pos.distance = letterDistance(g, word, row, col, step)
				out = append(out, pos)
			}
		}
	}
	return out
}

func fits(g *grid.Grid, word string, row, col int, dir grid.Direction) bool {
	step := dir.Step()
	// The cell before the start may not already carry a letter: the word
	// must begin its own run.
	pr, pc := row-step.Row, col-step.Col
	if g.InBounds(pr, pc) && g.At(pr, pc).Type == grid.Letter {
		return false
	}
	for i := 0; i < len(word); i++ {
		r, c := row+i*step.Row, col+i*step.Col
		if !g.InBounds(r, c) {
			return false
		}
		cell := g.At(r, c)
		if cell.Type == grid.ClueBox || cell.Type == grid.BlockerZone {
			return false
		}
		if cell.Letter != 0 && cell.Letter != word[i] {
			return false
		}
	}
	// The cell after the end may not carry a letter either.
	nr, nc := row+len(word)*step.Row, col+len(word)*step.Col
	if g.InBounds(nr, nc) && g.At(nr, nc).Type == grid.Letter {
		return false
	}
	return true
}

// crossingPotential scores a position by interlock: cells that already
// hold the matching letter count double, cells where the perpendicular
// run has room and some pending theme word shares the letter count once.
func crossingPotential(g *grid.Grid, word string, row, col int, dir grid.Direction, pending []string) int {
	cross := grid.Down
	if dir == grid.Down {
		cross = grid.Across
	}
	step := dir.Step()
	var pendingLetters [26]bool
	for _, other := range pending {
		for i := 0; i < len(other); i++ {
			pendingLetters[other[i]-'A'] = true
		}
	}

	score := 0
	for i := 0; i < len(word); i++ {
		r, c := row+i*step.Row, col+i*step.Col
		if g.At(r, c).Letter == word[i] {
			score += 2
			continue
		}
		if pendingLetters[word[i]-'A'] && len(g.MaximalRun(r, c, cross)) >= 2 {
			score++
		}
	}
	return score
}

// letterDistance is the smallest manhattan distance between the word's
// cells and any placed letter; zero means the word interlocks directly.
func letterDistance(g *grid.Grid, word string, row, col int, step grid.Coord) int {
	best := g.Rows + g.Cols
	for i := 0; i < len(word); i++ {
		r, c := row+i*step.Row, col+i*step.Col
		if g.At(r, c).Type == grid.Letter {
			return 0
		}
		for lr := 0; lr < g.Rows; lr++ {
			for lc := 0; lc < g.Cols; lc++ {
				if g.At(lr, lc).Type != grid.Letter {
					continue
				}
				dist := abs(lr-r) + abs(lc-c)
				if dist < best {
					best = dist
				}
			}
		}
	}
	return best
}

func tryPlace(g *grid.Grid, d *dict.Dictionary, word string, entry theme.Entry, pos position, used map[string]bool) (Placement, bool) {
	token := g.Snapshot()
	reject := func() (Placement, bool) {
		g.Rollback(token)
		return Placement{}, false
	}

	step := pos.dir.Step()
	// Seal the leading boundary: an empty cell before the start becomes a
	// clue box, which doubles as the license for the primary offsets.
	pr, pc := pos.start.Row-step.Row, pos.start.Col-step.Col
	if g.InBounds(pr, pc) && g.At(pr, pc).Type == grid.EmptyPlayable {
		if err := g.PlaceClueBox(pr, pc); err != nil {
			return reject()
		}
	}
	clueBox, err := g.EnsureLicense(pos.start, pos.dir)
	if err != nil {
		return reject()
	}
	for i := 0; i < len(word); i++ {
		r, c := pos.start.Row+i*step.Row, pos.start.Col+i*step.Col
		if err := g.PlaceLetter(r, c, word[i]); err != nil {
			return reject()
		}
	}
	// Seal the trailing boundary.
	nr, nc := pos.start.Row+len(word)*step.Row, pos.start.Col+len(word)*step.Col
	if g.InBounds(nr, nc) && g.At(nr, nc).Type == grid.EmptyPlayable {
		if err := g.PlaceClueBox(nr, nc); err != nil {
			return reject()
		}
	}

	// User-sourced words are trusted; everything else must keep every
	// crossing run viable.
	if entry.Source != "user" {
		if !crossingsViable(g, d, pos, len(word), used) {
			return reject()
		}
	}

	return Placement{
		Entry:   entry,
		Start:   pos.start,
		Dir:     pos.dir,
		Length:  len(word),
		ClueBox: clueBox,
	}, true
}

// crossingsViable checks every run crossing the new word: the run start
// must be licensable, complete runs must be dictionary words, and
// incomplete runs of length >= 3 must keep candidates (three of them for
// the tight 3-letter case).
func crossingsViable(g *grid.Grid, d *dict.Dictionary, pos position, length int, used map[string]bool) bool {
	cross := grid.Down
	if pos.dir == grid.Down {
		cross = grid.Across
	}
	step := pos.dir.Step()
	for i := 0; i < length; i++ {
		r, c := pos.start.Row+i*step.Row, pos.start.Col+i*step.Col
		run := g.MaximalRun(r, c, cross)
		if len(run) < 2 {
			continue
		}
		if !licensable(g, run[0], cross) {
			return false
		}
		if len(run) < 3 {
			continue
		}
		pattern := g.Pattern(run)
		if complete(pattern) {
			surface := string(pattern)
			if !used[surface] && !d.Contains(surface) {
				return false
			}
			continue
		}
		count := d.CountCandidates(len(run), dict.Pattern(pattern), used)
		if len(run) == 3 {
			if count < 3 {
				return false
			}
		} else if count == 0 {
			return false
		}
	}
	return true
}

func licensable(g *grid.Grid, start grid.Coord, dir grid.Direction) bool {
	if g.Licensed(start, dir) {
		return true
	}
	for _, off := range dir.LicenseOffsets() {
		r, c := start.Row+off.Row, start.Col+off.Col
		if g.InBounds(r, c) && g.At(r, c).Type == grid.EmptyPlayable && g.CanPlaceClueBox(r, c) {
			return true
		}
	}
	return false
}

func complete(pattern []byte) bool {
	for _, c := range pattern {
		if c == 0 {
			return false
		}
	}
	return true
}

// expectedSlotCount estimates how many slots the finished layout will
// carry, assuming the partitioner's preferred run lengths.
func expectedSlotCount(g *grid.Grid) int {
	playable := 0
	counts := g.CountCells()
	playable = counts[grid.EmptyPlayable] + counts[grid.Letter]
	return playable / 3
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
