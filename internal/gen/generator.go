// Package gen orchestrates the generation pipeline: blocker, theme
// seeding, layout freeze, constraint fill, sealing. Each attempt owns a
// fresh grid and a PCG stream derived from (seed, attempt), so equal
// configurations reproduce bit-identical results.
package gen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/clue"
	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
	"github.com/PaulSz7/crossword-generator/internal/layout"
	"github.com/PaulSz7/crossword-generator/internal/solver"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

var Log = logrus.New()

// themeRequestSize is how many entries a theme source is asked for; the
// placer trims to its own target.
const themeRequestSize = 80

// Event reports attempt progress to an observer (the server streams
// these over a websocket).
type Event struct {
	Attempt int    `json:"attempt"`
	Stage   string `json:"stage"`
	Kind    Kind   `json:"kind,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Generator runs the retry loop. The dictionary is shared read-only;
// theme source and clue emitter are optional collaborators.
type Generator struct {
	cfg      Config
	dict     *dict.Dictionary
	themes   theme.Source
	clues    clue.Emitter
	progress func(Event)
}

// Option customizes a Generator.
type Option func(*Generator)

func WithThemeSource(src theme.Source) Option {
	return func(g *Generator) { g.themes = src }
}

func WithClueEmitter(e clue.Emitter) Option {
	return func(g *Generator) { g.clues = e }
}

func WithProgress(fn func(Event)) Option {
	return func(g *Generator) { g.progress = fn }
}

// New validates the configuration and builds a generator.
func New(cfg Config, d *dict.Dictionary, opts ...Option) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fatal(KindInvalidConfig, err.Error(), nil)
	}
	g := &Generator{cfg: cfg, dict: d.WithDifficulty(cfg.Difficulty), clues: clue.Template{}}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (gn *Generator) emit(ev Event) {
	if gn.progress != nil {
		gn.progress(ev)
	}
}

// Generate runs attempts until one seals or the budget is exhausted.
func (gn *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := gn.cfg
	var trace []AttemptFailure

	record := func(attempt int, kind Kind, err error) {
		trace = append(trace, AttemptFailure{Attempt: attempt, Kind: kind, Detail: err.Error()})
		Log.WithFields(logrus.Fields{
			"attempt": attempt, "kind": kind,
		}).Info("attempt failed: ", err)
		gn.emit(Event{Attempt: attempt, Stage: "failed", Kind: kind, Detail: err.Error()})
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fatal(KindGenerationFailed, "cancelled: "+err.Error(), trace)
		}
		gn.emit(Event{Attempt: attempt, Stage: "start"})
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(attempt)))

		g, err := grid.New(cfg.Height, cfg.Width)
		if err != nil {
			return nil, fatal(KindInvalidConfig, err.Error(), trace)
		}
		if err := layout.ApplyBlocker(g, cfg.Blocker, rng); err != nil {
			switch {
			case errors.Is(err, grid.ErrBlockerBounds):
				return nil, fatal(KindBlockerOutOfBounds, err.Error(), trace)
			case errors.Is(err, grid.ErrBlockerCorner):
				return nil, fatal(KindInvalidConfig, err.Error(), trace)
			}
			return nil, fatal(KindInvalidConfig, err.Error(), trace)
		}

		entries := gn.resolveTheme(ctx)
		placements, used, err := layout.PlaceTheme(g, gn.dict, entries, rng, cfg.WordsOnly)
		if err != nil {
			record(attempt, KindThemePlacement, err)
			continue
		}
		if err := layout.Build(g, gn.dict, used); err != nil {
			record(attempt, KindLayoutInfeasible, err)
			continue
		}

		slots := g.RegisterSlots()
		unfilled := make([]grid.Slot, 0, len(slots))
		for _, s := range slots {
			if filled(g, s) {
				// Runs completed by crossing theme letters count as used
				// words so the fill cannot duplicate them.
				used[g.Word(s)] = true
				continue
			}
			unfilled = append(unfilled, s)
		}

		phase := gn.phase(attempt)
		words, err := solver.Solve(ctx, g, unfilled, gn.dict, used, gn.solverOptions(attempt, phase, len(unfilled)))
		switch {
		case errors.Is(err, solver.ErrUnsat):
			record(attempt, KindFillUnsat, err)
			continue
		case errors.Is(err, solver.ErrTimeout):
			record(attempt, KindFillTimeout, err)
			continue
		case err != nil:
			record(attempt, KindFillUnsat, err)
			continue
		}

		for _, sw := range words {
			for i, c := range sw.Slot.Cells() {
				if err := g.PlaceLetter(c.Row, c.Col, sw.Word[i]); err != nil {
					return nil, fatal(KindInvariant,
						fmt.Sprintf("solver word %q does not fit at %s: %v", sw.Word, c, err), trace)
				}
			}
		}

		result, err := gn.seal(ctx, g, placements, len(entries), attempt, phase)
		if err != nil {
			var inv *grid.InvariantError
			if errors.As(err, &inv) {
				return nil, fatal(KindInvariant, inv.Error(), trace)
			}
			return nil, fatal(KindInvariant, err.Error(), trace)
		}
		gn.emit(Event{Attempt: attempt, Stage: "sealed"})
		return result, nil
	}

	last := KindGenerationFailed
	detail := "attempt budget exhausted"
	if len(trace) > 0 {
		detail = fmt.Sprintf("attempt budget exhausted, last failure %s", trace[len(trace)-1].Kind)
	}
	return nil, fatal(last, detail, trace)
}

// phase selects the EASY solver regime: strict filtering for the first
// retries, then the relaxed budget (unless phase 2 is disabled).
func (gn *Generator) phase(attempt int) int {
	if gn.cfg.Difficulty != dict.Easy {
		return 2
	}
	if attempt <= easyPhase1Retries || !gn.cfg.AllowPhase2 {
		return 1
	}
	return 2
}

func (gn *Generator) solverOptions(attempt, phase, slotCount int) solver.Options {
	opts := solver.Options{
		Timeout: gn.cfg.SolverTimeout,
		Workers: gn.cfg.SolverWorkers,
		Seed:    gn.cfg.Seed<<8 + uint64(attempt),
	}
	if gn.cfg.Difficulty == dict.Easy {
		opts.MaxDifficulty = easyMaxScore
		if phase == 1 {
			opts.MediumSlotLimit = 0
		} else {
			opts.MediumSlotLimit = max(2, slotCount/10)
		}
	}
	return opts
}

func (gn *Generator) resolveTheme(ctx context.Context) []theme.Entry {
	if gn.themes == nil {
		return nil
	}
	entries, err := gn.themes.Words(ctx, gn.cfg.Topic, themeRequestSize, gn.cfg.Difficulty, gn.cfg.Language)
	if err != nil {
		Log.WithError(err).Warn("theme source failed, generating without theme")
		return nil
	}
	return entries
}

func filled(g *grid.Grid, s grid.Slot) bool {
	for _, c := range s.Cells() {
		if g.At(c.Row, c.Col).Letter == 0 {
			return false
		}
	}
	return true
}
