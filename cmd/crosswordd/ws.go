package main

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/PaulSz7/crossword-generator/internal/gen"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		log.Debug("\tws origin: ", r.Host)
		return true
	},
}

type wsMessage struct {
	Type   string      `json:"type"`
	Event  *gen.Event  `json:"event,omitempty"`
	Result *gen.Result `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// handleGenerateWs streams per-attempt progress events while the
// generation runs and finishes with the sealed result (or the terminal
// error).
func (app *application) handleGenerateWs(w http.ResponseWriter, r *http.Request) {
	params, err := decodeGenerateParams(r.URL.Query())
	if err != nil {
		replyWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := params.toConfig()
	if err != nil {
		replyWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer c.Close()

	events := make(chan gen.Event, 16)
	opts := append(app.themeOptions(params),
		gen.WithProgress(func(ev gen.Event) { events <- ev }),
	)
	generator, err := gen.New(cfg, app.dict, opts...)
	if err != nil {
		c.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}

	done := make(chan struct{})
	var (
		result *gen.Result
		genErr error
	)
	go func() {
		defer close(events)
		result, genErr = generator.Generate(r.Context())
	}()
	go func() {
		defer close(done)
		for ev := range events {
			if err := c.WriteJSON(wsMessage{Type: "progress", Event: &ev}); err != nil {
				log.Warn("ws write: ", err)
				return
			}
		}
	}()
	<-done

	if genErr != nil {
		c.WriteJSON(wsMessage{Type: "error", Error: genErr.Error()})
		return
	}
	c.WriteJSON(wsMessage{Type: "result", Result: result})
	c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
