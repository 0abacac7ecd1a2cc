package solver

import (
	"context"
	"math/rand/v2"

	"github.com/gammazero/deque"
)

const ctxCheckInterval = 256

// searchState is one worker's mutable view of the model.
type searchState struct {
	ctx      context.Context
	m        *model
	letters  []byte
	pools    [][]string
	assigned []string
	used     map[string]bool
	open     int
	nodes    uint64
	// recheck queues slots whose candidate pools may have emptied after
	// an assignment touched one of their cells.
	recheck deque.Deque[int]
}

// search runs one deterministic worker. Worker zero keeps the pools in
// score order; higher workers shuffle each pool with an order derived
// from (seed, worker), diversifying the portfolio without giving up
// reproducibility.
func (m *model) search(ctx context.Context, worker int, seed uint64) ([]SlotWord, error) {
	if ctx.Err() != nil {
		return nil, ErrTimeout
	}
	s := &searchState{
		ctx:      ctx,
		m:        m,
		letters:  append([]byte(nil), m.base...),
		pools:    make([][]string, len(m.slots)),
		assigned: make([]string, len(m.slots)),
		used:     make(map[string]bool, len(m.used)+len(m.slots)),
		open:     len(m.slots),
	}
	for word := range m.used {
		s.used[word] = true
	}
	for i, slot := range m.slots {
		pool := append([]string(nil), slot.pool...)
		if worker > 0 {
			rng := rand.New(rand.NewPCG(seed, uint64(worker)<<16|uint64(i)))
			rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
		}
		s.pools[i] = pool
	}

	switch s.solve() {
	case solved:
		out := make([]SlotWord, len(m.slots))
		for i, slot := range m.slots {
			out[i] = SlotWord{Slot: slot.slot, Word: s.assigned[i], Fallback: slot.fallback}
		}
		return out, nil
	case exhausted:
		return nil, ErrUnsat
	default:
		return nil, ErrTimeout
	}
}

type status uint8

const (
	solved status = iota
	exhausted
	cancelled
)

func (s *searchState) solve() status {
	s.nodes++
	if s.nodes%ctxCheckInterval == 0 {
		select {
		case <-s.ctx.Done():
			return cancelled
		default:
		}
	}
	if s.open == 0 {
		return solved
	}

	idx, live := s.pickSlot()
	if len(live) == 0 {
		return exhausted
	}

	for _, word := range live {
		undo := s.place(idx, word)
		if s.consistent(idx) {
			switch s.solve() {
			case solved:
				return solved
			case cancelled:
				undo()
				return cancelled
			}
		}
		undo()
	}
	return exhausted
}

// pickSlot returns the unassigned slot with the fewest live candidates
// and its live list (minimum remaining values).
func (s *searchState) pickSlot() (int, []string) {
	best := -1
	var bestLive []string
	for i := range s.m.slots {
		if s.assigned[i] != "" {
			continue
		}
		live := s.liveWords(i)
		if best == -1 || len(live) < len(bestLive) {
			best, bestLive = i, live
			if len(bestLive) == 0 {
				break
			}
		}
	}
	return best, bestLive
}

// liveWords collects candidates of slot i compatible with the current
// letters and uniqueness, preserving pool order.
func (s *searchState) liveWords(i int) []string {
	var live []string
	for _, word := range s.pools[i] {
		if s.used[word] {
			continue
		}
		if s.matches(i, word) {
			live = append(live, word)
		}
	}
	return live
}

func (s *searchState) matches(i int, word string) bool {
	cells := s.m.slots[i].cells
	for j, c := range cells {
		if have := s.letters[s.m.cellIndex(c)]; have != 0 && have != word[j] {
			return false
		}
	}
	return true
}

// place writes word into slot i and returns the undo closure.
func (s *searchState) place(i int, word string) func() {
	var written []int
	cells := s.m.slots[i].cells
	for j, c := range cells {
		idx := s.m.cellIndex(c)
		if s.letters[idx] == 0 {
			s.letters[idx] = word[j]
			written = append(written, idx)
		}
	}
	s.assigned[i] = word
	s.used[word] = true
	s.open--
	return func() {
		for _, idx := range written {
			s.letters[idx] = 0
		}
		s.assigned[i] = ""
		delete(s.used, word)
		s.open++
	}
}

// consistent forward-checks every unassigned slot crossing the freshly
// assigned one: an emptied pool anywhere prunes this branch immediately.
func (s *searchState) consistent(placed int) bool {
	s.recheck.Clear()
	queued := make(map[int]bool)
	for _, c := range s.m.slots[placed].cells {
		for _, j := range s.m.coverage[s.m.cellIndex(c)] {
			if j == placed || s.assigned[j] != "" || queued[j] {
				continue
			}
			queued[j] = true
			s.recheck.PushBack(j)
		}
	}
	for s.recheck.Len() > 0 {
		j := s.recheck.PopFront()
		if !s.hasLive(j) {
			return false
		}
	}
	return true
}

func (s *searchState) hasLive(i int) bool {
	for _, word := range s.pools[i] {
		if !s.used[word] && s.matches(i, word) {
			return true
		}
	}
	return false
}
