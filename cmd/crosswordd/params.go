package main

import (
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/gen"
	"github.com/PaulSz7/crossword-generator/internal/layout"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// GenerateParams is the query-string form of a generation request.
type GenerateParams struct {
	Height     int    `schema:"height,required"`
	Width      int    `schema:"width,required"`
	Difficulty string `schema:"difficulty"`
	Language   string `schema:"language"`
	Seed       uint64 `schema:"seed"`
	Theme      string `schema:"theme"`
	Words      string `schema:"words"`
	WordsOnly  bool   `schema:"words_only"`
	NoBlocker  bool   `schema:"no_blocker"`
	BlockerH   int    `schema:"blocker_height"`
	BlockerW   int    `schema:"blocker_width"`
	BlockerRow int    `schema:"blocker_row"`
	BlockerCol int    `schema:"blocker_col"`
	Attempts   int    `schema:"attempts"`
	TimeoutMs  int    `schema:"solver_timeout_ms"`
	Workers    int    `schema:"solver_workers"`
	Phase2     *bool  `schema:"allow_phase2"`
	Save       bool   `schema:"save"`
}

func decodeGenerateParams(src map[string][]string) (GenerateParams, error) {
	var dto GenerateParams
	dto.BlockerRow, dto.BlockerCol = -1, -1
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (p GenerateParams) toConfig() (gen.Config, error) {
	tier, err := dict.ParseDifficulty(p.Difficulty)
	if err != nil {
		return gen.Config{}, err
	}
	cfg := gen.Config{
		Height:        p.Height,
		Width:         p.Width,
		Difficulty:    tier,
		Language:      p.Language,
		Seed:          p.Seed,
		Topic:         p.Theme,
		WordsOnly:     p.WordsOnly,
		MaxAttempts:   p.Attempts,
		SolverTimeout: time.Duration(p.TimeoutMs) * time.Millisecond,
		SolverWorkers: p.Workers,
		AllowPhase2:   true,
	}
	if p.Phase2 != nil {
		cfg.AllowPhase2 = *p.Phase2
	}
	if !p.NoBlocker {
		spec := &layout.BlockerSpec{Height: p.BlockerH, Width: p.BlockerW}
		if p.BlockerRow >= 0 && p.BlockerCol >= 0 {
			r, c := p.BlockerRow, p.BlockerCol
			spec.Row, spec.Col = &r, &c
		}
		cfg.Blocker = spec
	}
	return cfg, nil
}

func (p GenerateParams) userWords() []string {
	if strings.TrimSpace(p.Words) == "" {
		return nil
	}
	var list []string
	for _, w := range strings.Split(p.Words, ",") {
		if w = strings.TrimSpace(w); w != "" {
			list = append(list, w)
		}
	}
	return list
}
