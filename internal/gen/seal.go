package gen

import (
	"context"
	"fmt"

	"github.com/PaulSz7/crossword-generator/internal/clue"
	"github.com/PaulSz7/crossword-generator/internal/grid"
	"github.com/PaulSz7/crossword-generator/internal/layout"
)

// seal runs the final structural validation, sweeps every slot for
// dictionary membership and uniqueness, attaches clues and assembles the
// result record.
func (gn *Generator) seal(ctx context.Context, g *grid.Grid, placements []layout.Placement, requested, attempt, phase int) (*Result, error) {
	if err := g.ValidateStructure(); err != nil {
		return nil, err
	}

	themeByKey := make(map[string]layout.Placement, len(placements))
	themeSurfaces := make(map[string]bool, len(placements))
	for _, p := range placements {
		key := fmt.Sprintf("%d:%d:%s", p.Start.Row, p.Start.Col, p.Dir)
		themeByKey[key] = p
		themeSurfaces[p.Entry.Word] = true
	}

	slots := g.RegisterSlots()
	records := make([]SlotRecord, 0, len(slots))
	seen := make(map[string]string, len(slots))
	for _, s := range slots {
		word := g.Word(s)
		if len(word) != s.Length {
			return nil, &grid.InvariantError{
				Rule:   "fill-completion",
				Detail: fmt.Sprintf("slot %s at %s is not fully filled", s.ID, s.Start),
			}
		}
		if other, dup := seen[word]; dup {
			return nil, &grid.InvariantError{
				Rule:   "word-uniqueness",
				Detail: fmt.Sprintf("word %q appears in slots %s and %s", word, other, s.ID),
			}
		}
		seen[word] = s.ID

		source := "fill"
		var entryClue string
		key := fmt.Sprintf("%d:%d:%s", s.Start.Row, s.Start.Col, s.Dir)
		if p, ok := themeByKey[key]; ok && p.Length == s.Length {
			source = p.Entry.Source
			entryClue = p.Entry.Clue
		}

		if s.Length >= 3 && source != "user" && !themeSurfaces[word] && !gn.dict.Contains(word) {
			return nil, &grid.InvariantError{
				Rule:   "dictionary-membership",
				Detail: fmt.Sprintf("word %q in slot %s is not a dictionary word", word, s.ID),
			}
		}

		clueBox, ok := g.LicenseBox(s.Start, s.Dir)
		if !ok {
			return nil, &grid.InvariantError{
				Rule:   "licensing",
				Detail: fmt.Sprintf("sealed slot %s has no licensing clue box", s.ID),
			}
		}
		records = append(records, SlotRecord{
			ID:        s.ID,
			Start:     s.Start,
			Direction: s.Dir,
			Length:    s.Length,
			Word:      word,
			Source:    source,
			Clue:      entryClue,
			ClueBox:   clueBox,
		})
	}

	ratio := g.FilledRatio()
	if ratio < gn.cfg.CompletionTarget {
		return nil, &grid.InvariantError{
			Rule:   "fill-completion",
			Detail: fmt.Sprintf("filled ratio %.2f below target %.2f", ratio, gn.cfg.CompletionTarget),
		}
	}

	gn.attachClues(ctx, records)

	result := &Result{
		Grid:        g,
		Slots:       records,
		Theme:       gn.themeCoverage(placements, requested),
		Histogram:   gn.histogram(records),
		Cells:       cellStats(g),
		Validation:  sealedChecks,
		Seed:        gn.cfg.Seed,
		Attempt:     attempt,
		Phase:       phase,
		Language:    gn.cfg.Language,
		FilledRatio: ratio,
	}
	return result, nil
}

// attachClues asks the emitter for clue texts and attaches them blindly;
// pre-assigned theme clues win over emitted ones.
func (gn *Generator) attachClues(ctx context.Context, records []SlotRecord) {
	if gn.clues == nil {
		return
	}
	requests := make([]clue.Request, 0, len(records))
	for _, r := range records {
		if r.Clue != "" {
			continue
		}
		requests = append(requests, clue.Request{
			SlotID:    r.ID,
			Word:      r.Word,
			Direction: r.Direction.String(),
		})
	}
	if len(requests) == 0 {
		return
	}
	texts, err := gn.clues.Clues(ctx, requests)
	if err != nil {
		Log.WithError(err).Warn("clue emitter failed, slots keep empty clues")
		return
	}
	for i := range records {
		if records[i].Clue == "" {
			records[i].Clue = texts[records[i].ID]
		}
	}
}

func (gn *Generator) themeCoverage(placements []layout.Placement, requested int) ThemeCoverage {
	cov := ThemeCoverage{Requested: requested, Placed: len(placements)}
	letters := 0
	for _, p := range placements {
		letters += p.Length
	}
	cov.Letters = letters
	playable := float64(gn.cfg.Height * gn.cfg.Width)
	if playable > 0 {
		cov.LetterRatio = float64(letters) / playable
	}
	return cov
}

// histogram buckets fill words (length >= 3) by difficulty score using
// the 0.3 / 0.6 tier boundaries; theme words report separately.
func (gn *Generator) histogram(records []SlotRecord) Histogram {
	var h Histogram
	var fillSum, themeSum float64
	for _, r := range records {
		if r.Length < 3 {
			continue
		}
		entry, ok := gn.dict.Lookup(r.Word)
		if !ok {
			continue
		}
		if r.Source != "fill" {
			h.ThemeScored++
			themeSum += entry.DifficultyScore
			continue
		}
		h.FillScored++
		fillSum += entry.DifficultyScore
		switch {
		case entry.DifficultyScore < 0.3:
			h.FillEasy++
		case entry.DifficultyScore < 0.6:
			h.FillMedium++
		default:
			h.FillHard++
		}
	}
	if h.FillScored > 0 {
		h.FillAvgScore = fillSum / float64(h.FillScored)
	}
	if h.ThemeScored > 0 {
		h.ThemeAvgScore = themeSum / float64(h.ThemeScored)
	}
	return h
}

func cellStats(g *grid.Grid) CellStats {
	counts := g.CountCells()
	return CellStats{
		Total:    g.Rows * g.Cols,
		Letters:  counts[grid.Letter],
		ClueBox:  counts[grid.ClueBox],
		Blocker:  counts[grid.BlockerZone],
		Unfilled: counts[grid.EmptyPlayable],
	}
}
