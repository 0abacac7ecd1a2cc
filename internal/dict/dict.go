// Package dict holds the normalized word store backing layout feasibility
// checks and the fill solver's candidate pools. Lookups are pattern
// queries: fixed (position, letter) pairs intersected over a positional
// index, ranked by tier-aware score.
package dict

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Pattern constrains a candidate query: one byte per cell, 'A'..'Z' for a
// fixed letter, 0 for a free cell. A nil pattern matches everything.
type Pattern []byte

// Config drives dictionary loading and filtering.
type Config struct {
	Path             string
	MinLength        int
	MaxLength        int
	MinFrequency     float64
	AllowCompounds   bool
	ExcludeStopwords bool
	Difficulty       Difficulty
}

func (c Config) withDefaults() Config {
	if c.MinLength == 0 {
		c.MinLength = 2
	}
	if c.MaxLength == 0 {
		c.MaxLength = 24
	}
	return c
}

type posKey struct {
	length int
	pos    int
	letter byte
}

// Dictionary is immutable after Load and may be shared across attempts
// and solver workers without locking.
type Dictionary struct {
	cfg        Config
	bySurface  map[string]*Entry
	byLength   map[int][]*Entry
	posIndex   map[posKey]map[string]struct{}
	surfaces   map[int]map[string]struct{}
	letterFreq [26]float64
}

// Load reads a tab-separated dictionary with a header row. Both the raw
// export (entry_word / lexeme_frequency columns) and the processed cache
// (surface / frequency columns) are accepted; see Preprocess. When the
// difficulty_score column is absent it is synthesized as 1 - frequency.
// Rows flagged is_adult are skipped.
func Load(cfg Config) (*Dictionary, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return Read(f, cfg)
}

// Read is Load over an arbitrary reader, mostly for tests.
func Read(r io.Reader, cfg Config) (*Dictionary, error) {
	cfg = cfg.withDefaults()
	d := &Dictionary{
		cfg:       cfg,
		bySurface: make(map[string]*Entry),
		byLength:  make(map[int][]*Entry),
		posIndex:  make(map[posKey]map[string]struct{}),
		surfaces:  make(map[int]map[string]struct{}),
	}

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dictionary header: %w", err)
	}
	cols := columnMap(header)
	surfaceCol, ok := cols.first("surface", "entry_word")
	if !ok {
		return nil, fmt.Errorf("dictionary header missing surface column (have %v)", header)
	}
	freqCol, _ := cols.first("frequency", "lexeme_frequency")
	scoreCol, hasScore := cols.first("difficulty_score")
	adultCol, hasAdult := cols.first("is_adult")
	lemmaCol, _ := cols.first("lemma")
	defCol, _ := cols.first("definition")
	compoundCol, _ := cols.first("is_compound")
	stopCol, _ := cols.first("is_stopword")

	var total, kept int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary row: %w", err)
		}
		total++
		if hasAdult && parseBool(field(row, adultCol)) {
			continue
		}
		surface := Normalize(field(row, surfaceCol))
		if !isSurface(surface) {
			continue
		}
		entry := &Entry{
			Surface:    surface,
			Length:     len(surface),
			Lemma:      field(row, lemmaCol),
			Definition: field(row, defCol),
			Frequency:  parseFloat(field(row, freqCol)),
			IsCompound: parseBool(field(row, compoundCol)),
			IsStopword: parseBool(field(row, stopCol)),
		}
		if hasScore {
			entry.DifficultyScore = parseFloat(field(row, scoreCol))
		} else {
			entry.DifficultyScore = 1 - entry.Frequency
		}
		if !d.admit(entry) {
			continue
		}
		d.insert(entry)
		kept++
	}

	d.finalizeLetterStats()
	Log.WithFields(logrus.Fields{
		"rows": total, "entries": kept,
	}).Debug("dictionary loaded")
	if kept == 0 {
		return nil, fmt.Errorf("dictionary %s produced no entries", cfg.Path)
	}
	return d, nil
}

func (d *Dictionary) admit(e *Entry) bool {
	if e.Length < d.cfg.MinLength || e.Length > d.cfg.MaxLength {
		return false
	}
	if e.Frequency < d.cfg.MinFrequency {
		return false
	}
	if e.IsStopword && d.cfg.ExcludeStopwords {
		return false
	}
	if e.IsCompound && !d.cfg.AllowCompounds {
		return false
	}
	if _, dup := d.bySurface[e.Surface]; dup {
		return false
	}
	return true
}

func (d *Dictionary) insert(e *Entry) {
	d.bySurface[e.Surface] = e
	d.byLength[e.Length] = append(d.byLength[e.Length], e)
	set, ok := d.surfaces[e.Length]
	if !ok {
		set = make(map[string]struct{})
		d.surfaces[e.Length] = set
	}
	set[e.Surface] = struct{}{}
	for i := 0; i < len(e.Surface); i++ {
		key := posKey{e.Length, i, e.Surface[i]}
		bucket, ok := d.posIndex[key]
		if !ok {
			bucket = make(map[string]struct{})
			d.posIndex[key] = bucket
		}
		bucket[e.Surface] = struct{}{}
	}
}

func (d *Dictionary) finalizeLetterStats() {
	var counts [26]int
	var totalLetters int
	for surface := range d.bySurface {
		for i := 0; i < len(surface); i++ {
			counts[surface[i]-'A']++
			totalLetters++
		}
	}
	if totalLetters == 0 {
		return
	}
	for i := range counts {
		d.letterFreq[i] = float64(counts[i]) / float64(totalLetters)
	}
}

// Contains reports whether word (after normalization) is a known surface.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.bySurface[Normalize(word)]
	return ok
}

// Lookup returns the entry for word, normalizing first.
func (d *Dictionary) Lookup(word string) (*Entry, bool) {
	e, ok := d.bySurface[Normalize(word)]
	return e, ok
}

// Size returns the number of distinct surfaces.
func (d *Dictionary) Size() int { return len(d.bySurface) }

// Difficulty returns the tier the dictionary ranks candidates for.
func (d *Dictionary) Difficulty() Difficulty { return d.cfg.Difficulty }

// WithDifficulty returns a view of the dictionary ranking candidates for
// tier. The indices are shared, so the view costs nothing.
func (d *Dictionary) WithDifficulty(tier Difficulty) *Dictionary {
	if d.cfg.Difficulty == tier {
		return d
	}
	view := *d
	view.cfg.Difficulty = tier
	return &view
}

// LetterScore sums per-letter corpus frequencies over word. Non A-Z
// bytes contribute nothing.
func (d *Dictionary) LetterScore(word string) float64 {
	var score float64
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= 'A' && c <= 'Z' {
			score += d.letterFreq[c-'A']
		}
	}
	return score
}

// match intersects the positional index sets for every fixed letter of
// pattern. With no fixed letter the length bucket itself is returned
// (nil when no entry has that length); callers only read it.
func (d *Dictionary) match(length int, pattern Pattern) map[string]struct{} {
	var fixed []map[string]struct{}
	for i, c := range pattern {
		if c == 0 {
			continue
		}
		bucket, ok := d.posIndex[posKey{length, i, c}]
		if !ok {
			return map[string]struct{}{}
		}
		fixed = append(fixed, bucket)
	}
	if len(fixed) == 0 {
		return d.surfaces[length]
	}
	// Intersect smallest-first.
	sort.Slice(fixed, func(i, j int) bool { return len(fixed[i]) < len(fixed[j]) })
	out := make(map[string]struct{}, len(fixed[0]))
	for s := range fixed[0] {
		out[s] = struct{}{}
	}
	for _, bucket := range fixed[1:] {
		for s := range out {
			if _, ok := bucket[s]; !ok {
				delete(out, s)
			}
		}
		if len(out) == 0 {
			break
		}
	}
	return out
}

// Candidates returns every entry of the given length matching pattern and
// not present in banned, ordered by descending tier score (surface order
// breaks ties so equal seeds rank identically).
func (d *Dictionary) Candidates(length int, pattern Pattern, banned map[string]bool) []*Entry {
	matching := d.match(length, pattern)
	entries := make([]*Entry, 0, len(matching))
	for surface := range matching {
		if banned[surface] {
			continue
		}
		entries = append(entries, d.bySurface[surface])
	}
	tier := d.cfg.Difficulty
	sort.Slice(entries, func(i, j int) bool {
		si, sj := entries[i].Score(tier), entries[j].Score(tier)
		if si != sj {
			return si > sj
		}
		return entries[i].Surface < entries[j].Surface
	})
	return entries
}

// CandidatesFiltered is Candidates with a strict upper bound on the
// precomputed difficulty score.
func (d *Dictionary) CandidatesFiltered(length int, pattern Pattern, banned map[string]bool, maxDifficulty float64) []*Entry {
	all := d.Candidates(length, pattern, banned)
	out := all[:0:0]
	for _, e := range all {
		if e.DifficultyScore < maxDifficulty {
			out = append(out, e)
		}
	}
	return out
}

// HasCandidates is Candidates without materializing the ranked slice.
func (d *Dictionary) HasCandidates(length int, pattern Pattern, banned map[string]bool) bool {
	return d.CountCandidates(length, pattern, banned) > 0
}

// CountCandidates returns the number of matching, non-banned surfaces.
func (d *Dictionary) CountCandidates(length int, pattern Pattern, banned map[string]bool) int {
	n := 0
	for surface := range d.match(length, pattern) {
		if !banned[surface] {
			n++
		}
	}
	return n
}

type columns map[string]int

func columnMap(header []string) columns {
	m := make(columns, len(header))
	for i, name := range header {
		m[name] = i
	}
	return m
}

func (c columns) first(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	switch s {
	case "1", "true", "yes", "TRUE", "True":
		return true
	}
	return false
}
