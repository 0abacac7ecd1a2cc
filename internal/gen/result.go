package gen

import (
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

// SlotRecord is one sealed slot: geometry, the placed word, where the
// word came from and the clue text attached to it.
type SlotRecord struct {
	ID        string         `json:"id"`
	Start     grid.Coord     `json:"start"`
	Direction grid.Direction `json:"direction"`
	Length    int            `json:"length"`
	Word      string         `json:"word"`
	Source    string         `json:"source"`
	Clue      string         `json:"clue,omitempty"`
	ClueBox   grid.Coord     `json:"clue_box"`
}

// ThemeCoverage summarizes how much of the theme list landed.
type ThemeCoverage struct {
	Requested   int     `json:"requested"`
	Placed      int     `json:"placed"`
	Letters     int     `json:"letters"`
	LetterRatio float64 `json:"letter_ratio"`
}

// Histogram buckets fill words of length >= 3 by difficulty score; theme
// slots are excluded from the tier counters and reported separately.
type Histogram struct {
	FillEasy      int     `json:"fill_easy"`
	FillMedium    int     `json:"fill_medium"`
	FillHard      int     `json:"fill_hard"`
	FillScored    int     `json:"fill_scored"`
	FillAvgScore  float64 `json:"fill_avg_score"`
	ThemeScored   int     `json:"theme_scored"`
	ThemeAvgScore float64 `json:"theme_avg_score"`
}

// CellStats tallies the sealed grid's cell types.
type CellStats struct {
	Total    int `json:"total"`
	Letters  int `json:"letters"`
	ClueBox  int `json:"clue_boxes"`
	Blocker  int `json:"blocker"`
	Unfilled int `json:"unfilled"`
}

// Result is the sealed generation outcome.
type Result struct {
	Grid        *grid.Grid    `json:"grid"`
	Slots       []SlotRecord  `json:"slots"`
	Theme       ThemeCoverage `json:"theme"`
	Histogram   Histogram     `json:"histogram"`
	Cells       CellStats     `json:"cells"`
	Validation  []string      `json:"validation"`
	Seed        uint64        `json:"seed"`
	Attempt     int           `json:"attempt"`
	Phase       int           `json:"phase"`
	Language    string        `json:"language"`
	FilledRatio float64       `json:"filled_ratio"`
}

// sealedChecks names every rule the sealer verified, in order.
var sealedChecks = []string{
	"clue-adjacency",
	"top-left-clue",
	"bottom-right-corner",
	"licensing",
	"orphan-clue",
	"slot-geometry",
	"dictionary-membership",
	"word-uniqueness",
	"fill-completion",
}
