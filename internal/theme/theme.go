// Package theme supplies seed words for the placer. A Source is one
// provider (static buckets, user list, LLM); Merge cascades providers and
// deduplicates their output.
package theme

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/dict"
)

var Log = logrus.New()

// Entry is one theme word with an optional pre-assigned clue. Words are
// normalized before placement; Source tags where the entry came from
// ("user" entries skip crossing feasibility checks downstream).
type Entry struct {
	Word   string `json:"word"`
	Clue   string `json:"clue,omitempty"`
	Source string `json:"source"`
}

// Source yields an ordered list of theme entries for a topic. The list
// may be empty; errors fall through to the next source in a cascade.
type Source interface {
	Words(ctx context.Context, topic string, limit int, tier dict.Difficulty, language string) ([]Entry, error)
}

// UserSource wraps an explicit word list supplied by the caller. Clues
// stay empty; the words are trusted as-is.
type UserSource []string

func (s UserSource) Words(_ context.Context, _ string, limit int, _ dict.Difficulty, _ string) ([]Entry, error) {
	entries := make([]Entry, 0, len(s))
	for _, w := range s {
		word := dict.Normalize(w)
		if word == "" {
			continue
		}
		entries = append(entries, Entry{Word: word, Source: "user"})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// Merge queries primary first, then each fallback until target entries
// are collected, dropping duplicate words along the way.
func Merge(ctx context.Context, primary Source, fallbacks []Source, topic string, target int, tier dict.Difficulty, language string) []Entry {
	var collected []Entry
	seen := make(map[string]bool)

	extend := func(entries []Entry) {
		for _, e := range entries {
			word := dict.Normalize(e.Word)
			if word == "" || seen[word] {
				continue
			}
			e.Word = word
			collected = append(collected, e)
			seen[word] = true
			if len(collected) >= target {
				return
			}
		}
	}

	sources := fallbacks
	if primary != nil {
		sources = append([]Source{primary}, fallbacks...)
	}
	for _, src := range sources {
		if len(collected) >= target {
			break
		}
		entries, err := src.Words(ctx, topic, target, tier, language)
		if err != nil {
			Log.WithError(err).Warn("theme source failed, cascading")
			continue
		}
		extend(entries)
	}
	if len(collected) > target {
		collected = collected[:target]
	}
	return collected
}
