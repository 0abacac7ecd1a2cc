// Package solver fills the frozen layout. The model has one variable per
// letter cell (theme letters are constants) and a table constraint per
// slot drawn from the dictionary's candidate pool; word uniqueness is
// enforced globally, two-letter slots included. Search is forward
// checking over slots in minimum-remaining-candidates order, run as a
// deterministic parallel portfolio under one deadline.
package solver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

var Log = logrus.New()

var (
	// ErrUnsat means the search space was exhausted without a solution.
	ErrUnsat = errors.New("fill unsatisfiable")
	// ErrTimeout means the deadline expired before the search finished.
	ErrTimeout = errors.New("fill timed out")
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultWorkers = 4
)

// Options tune one solver call.
type Options struct {
	Timeout time.Duration
	Workers int
	// MaxDifficulty, when positive, is a strict upper bound on candidate
	// difficulty scores.
	MaxDifficulty float64
	// MediumSlotLimit caps how many slots may fall back to the unfiltered
	// pool when the difficulty bound empties their candidate list. Zero
	// rejects immediately on the first starved slot.
	MediumSlotLimit int
	// Seed derives the per-worker value orders; equal seeds reproduce the
	// exact same fill.
	Seed uint64
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// SlotWord is one solved assignment.
type SlotWord struct {
	Slot grid.Slot
	Word string
	// Fallback marks a slot that used the unfiltered pool in a
	// difficulty-bounded phase.
	Fallback bool
}

// Solve assigns a word to every slot, honoring crossings, uniqueness and
// the difficulty bound. It returns ErrUnsat when any worker proves the
// model unsatisfiable and ErrTimeout when the deadline expires first.
func Solve(ctx context.Context, g *grid.Grid, slots []grid.Slot, d *dict.Dictionary, used map[string]bool, opts Options) ([]SlotWord, error) {
	opts = opts.withDefaults()
	if len(slots) == 0 {
		return nil, nil
	}

	model, err := buildModel(g, slots, d, used, opts)
	if err != nil {
		return nil, err
	}

	Log.WithFields(logrus.Fields{
		"slots":   len(slots),
		"workers": opts.Workers,
		"timeout": opts.Timeout,
	}).Debug("fill solver starting")

	deadline, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		words []SlotWord
		err   error
	}

	var (
		mu      sync.Mutex
		results = make([]*outcome, opts.Workers)
		cancels = make([]context.CancelFunc, opts.Workers)
		ctxs    = make([]context.Context, opts.Workers)
	)
	for w := 0; w < opts.Workers; w++ {
		ctxs[w], cancels[w] = context.WithCancel(deadline)
	}
	defer func() {
		for _, c := range cancels {
			c()
		}
	}()

	eg := new(errgroup.Group)
	start := time.Now()
	for w := 0; w < opts.Workers; w++ {
		eg.Go(func() error {
			words, err := model.search(ctxs[w], w, opts.Seed)
			mu.Lock()
			results[w] = &outcome{words, err}
			mu.Unlock()
			if err == nil {
				// A solution at index w makes every higher-indexed worker
				// irrelevant; lower indices keep running so the selected
				// result stays deterministic.
				for j := w + 1; j < opts.Workers; j++ {
					cancels[j]()
				}
			}
			return nil
		})
	}
	eg.Wait()

	sawUnsat := false
	for w := 0; w < opts.Workers; w++ {
		res := results[w]
		if res == nil {
			continue
		}
		if res.err == nil {
			Log.WithFields(logrus.Fields{
				"worker":  w,
				"elapsed": time.Since(start).Round(time.Millisecond),
			}).Debug("fill solver found a solution")
			return res.words, nil
		}
		if errors.Is(res.err, ErrUnsat) {
			sawUnsat = true
		}
	}
	if sawUnsat {
		return nil, ErrUnsat
	}
	return nil, ErrTimeout
}
