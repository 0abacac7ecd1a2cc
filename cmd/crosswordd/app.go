package main

import (
	"encoding/json"
	"net/http"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/store"
)

type application struct {
	dict  *dict.Dictionary
	store *store.Store
}

func (app *application) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/status", handleStatus)
	mux.HandleFunc("POST /v1/crossword", app.handleGenerate)
	mux.HandleFunc("GET /v1/crossword/{id}", app.handleGetCrossword)
	mux.HandleFunc("GET /v1/crosswords", app.handleRecent)
	mux.HandleFunc("/v1/crossword/ws", app.handleGenerateWs)

	return useMiddleware(mux,
		corsMiddleware,
		loggingMiddleware,
	)
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func replyWithJSON(w http.ResponseWriter, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("failed to marshal json: ", err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.Write(payload)
}

func replyWithError(w http.ResponseWriter, status int, msg string) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Write(body)
}
