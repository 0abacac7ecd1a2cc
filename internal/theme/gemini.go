package theme

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/PaulSz7/crossword-generator/internal/dict"
)

const themePrompt = `You are assisting with a %s cryptic crossword.
Generate up to %d JSON objects in a single JSON array describing unique theme words.
Theme: %q. Each object must contain the fields: word, clue.
The clue must be 3-5 words in %s, cryptic-friendly.
Respond ONLY with the JSON array, no commentary or markdown.`

var tierPrompt = map[dict.Difficulty]string{
	dict.Easy:   "Target audience: beginners. Use only well-known, common %s words. Clues: straightforward definitions or simple wordplay.",
	dict.Medium: "Target audience: regular solvers. Mix common and moderately challenging %s words. Clues: cryptic conventions (anagrams, double meanings, hidden words).",
	dict.Hard:   "Target audience: experts. Prefer rare, literary, or domain-specific %s words. Clues: advanced cryptic techniques.",
}

// GeminiSource asks a Gemini model for themed words and clues.
type GeminiSource struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, model string) (*GeminiSource, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiSource{client: client, model: model}, nil
}

func (s *GeminiSource) Words(ctx context.Context, topic string, limit int, tier dict.Difficulty, language string) ([]Entry, error) {
	if language == "" {
		language = "Romanian"
	}
	prompt := fmt.Sprintf(themePrompt, language, limit, topic, language) +
		"\n" + fmt.Sprintf(tierPrompt[tier], language)

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.4)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var raw []struct {
		Word string `json:"word"`
		Clue string `json:"clue"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse theme JSON: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		if item.Word == "" || item.Clue == "" {
			continue
		}
		entries = append(entries, Entry{Word: item.Word, Clue: item.Clue, Source: "gemini"})
	}
	Log.WithField("count", len(entries)).Debug("gemini theme source replied")
	return entries, nil
}
