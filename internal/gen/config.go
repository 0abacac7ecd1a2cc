package gen

import (
	"fmt"
	"time"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/layout"
	"github.com/PaulSz7/crossword-generator/internal/solver"
)

// easyPhase1Retries is how many attempts run under strict difficulty
// filtering before EASY generation relaxes to phase 2.
const easyPhase1Retries = 3

// easyMaxScore is the strict difficulty ceiling of EASY phase 1.
const easyMaxScore = 0.30

// Config is the full generation request.
type Config struct {
	Height     int             `json:"height"`
	Width      int             `json:"width"`
	Difficulty dict.Difficulty `json:"difficulty"`
	Language   string          `json:"language"`
	Seed       uint64          `json:"seed"`

	// Topic feeds the theme source; WordsOnly trusts the theme list as-is
	// and disables the coverage minimum.
	Topic     string `json:"topic,omitempty"`
	WordsOnly bool   `json:"words_only,omitempty"`

	// CompletionTarget below 1 relaxes the sealed-fill check, for
	// debugging partial layouts.
	CompletionTarget float64 `json:"completion_target"`

	Blocker *layout.BlockerSpec `json:"blocker,omitempty"`

	MaxAttempts   int           `json:"max_attempts"`
	SolverTimeout time.Duration `json:"solver_timeout"`
	SolverWorkers int           `json:"solver_workers"`
	AllowPhase2   bool          `json:"allow_phase2"`
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "Romanian"
	}
	if c.CompletionTarget == 0 {
		c.CompletionTarget = 1
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 20
	}
	if c.SolverTimeout == 0 {
		c.SolverTimeout = solver.DefaultTimeout
	}
	if c.SolverWorkers == 0 {
		c.SolverWorkers = solver.DefaultWorkers
	}
	return c
}

func (c Config) validate() error {
	if c.Height < 4 || c.Width < 4 {
		return fmt.Errorf("grid %dx%d below the 4x4 minimum", c.Height, c.Width)
	}
	if c.Height > 50 || c.Width > 50 {
		return fmt.Errorf("grid %dx%d above the 50x50 maximum", c.Height, c.Width)
	}
	if c.CompletionTarget <= 0 || c.CompletionTarget > 1 {
		return fmt.Errorf("completion target %v outside (0, 1]", c.CompletionTarget)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts %d below 1", c.MaxAttempts)
	}
	if c.SolverWorkers < 1 {
		return fmt.Errorf("solver workers %d below 1", c.SolverWorkers)
	}
	if b := c.Blocker; b != nil {
		if (b.Row == nil) != (b.Col == nil) {
			return fmt.Errorf("blocker anchor needs both row and col (or neither)")
		}
		if b.Height != 0 && (b.Height < 3 || b.Height > max(3, min(c.Height/2, 6))) &&
			!pinned(b) {
			return fmt.Errorf("blocker height %d outside [3, %d]", b.Height, min(c.Height/2, 6))
		}
		if b.Width != 0 && (b.Width < 3 || b.Width > max(3, min(c.Width/2, 6))) &&
			!pinned(b) {
			return fmt.Errorf("blocker width %d outside [3, %d]", b.Width, min(c.Width/2, 6))
		}
	}
	return nil
}

func pinned(b *layout.BlockerSpec) bool {
	return b.Row != nil && b.Col != nil
}
