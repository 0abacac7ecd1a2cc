package clue

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Gemini batches all slots into one JSON-mode request.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Clues(ctx context.Context, requests []Request) (map[string]string, error) {
	payload, err := json.Marshal(requests)
	if err != nil {
		return nil, err
	}
	prompt := "Genereaza indicii criptice si directe in romana pentru fiecare intrare. " +
		"Raspunde ca lista JSON de obiecte {slot_id, clue}, fara alte comentarii. " +
		"Solicitari: " + string(payload)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.6)),
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
		SlotID string `json:"slot_id"`
		Clue   string `json:"clue"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		Log.WithError(err).Warn("gemini clue payload not JSON")
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(raw))
	for _, item := range raw {
		if item.SlotID != "" && item.Clue != "" {
			out[item.SlotID] = item.Clue
		}
	}
	return out, nil
}
