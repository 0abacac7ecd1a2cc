// Package clue turns solved slots into clue texts. The core attaches
// whatever an Emitter returns without inspecting it.
package clue

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Request carries the slot metadata an emitter needs.
type Request struct {
	SlotID    string `json:"slot_id"`
	Word      string `json:"word"`
	Direction string `json:"direction"`
}

// Emitter produces clue text per slot id. Slots whose id is missing from
// the returned map keep an empty clue downstream.
type Emitter interface {
	Clues(ctx context.Context, requests []Request) (map[string]string, error)
}

// Template is the offline fallback emitter: the word plus a direction
// marker, the way Romanian grids annotate orientation.
type Template struct{}

func (Template) Clues(_ context.Context, requests []Request) (map[string]string, error) {
	out := make(map[string]string, len(requests))
	for _, req := range requests {
		base := capitalize(req.Word)
		if req.Direction == "ACROSS" {
			out[req.SlotID] = fmt.Sprintf("%s (oriz.)", base)
		} else {
			out[req.SlotID] = fmt.Sprintf("%s (vert.)", base)
		}
	}
	return out, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
