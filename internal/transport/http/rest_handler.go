package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

var errBadBody = errors.New("invalid request body")

// API serves the request/response surface: one call per session operation.
type API struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewAPI(service *app.QuizService, log logrus.FieldLogger) *API {
	return &API{service: service, log: log}
}

type startRequest struct {
	Category string `json:"category"`
	Seconds  int    `json:"seconds"`
}

type answerRequest struct {
	Choice string `json:"choice"`
}

type sessionResponse struct {
	ID   string      `json:"id"`
	View domain.View `json:"view"`
}

type highScoreResponse struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Recorded bool   `json:"recorded"`
}

func (a *API) categories(w http.ResponseWriter, r *http.Request) {
	names, err := a.service.Categories(r.Context())
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondJSON(w, a.log, map[string][]string{"categories": names}, http.StatusOK)
}

func (a *API) highScore(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	score, ok, err := a.service.HighScore(r.Context(), category)
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	respondJSON(w, a.log, highScoreResponse{Category: category, Score: score, Recorded: ok}, http.StatusOK)
}

func (a *API) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, a.log, map[string]string{"error": errBadBody.Error()}, http.StatusBadRequest)
		return
	}
	runner, err := a.service.Start(r.Context(), req.Category, req.Seconds)
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	respondJSON(w, a.log, sessionResponse{ID: runner.ID(), View: runner.View()}, http.StatusCreated)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	runner, ok := a.runner(w, r)
	if !ok {
		return
	}
	respondJSON(w, a.log, sessionResponse{ID: runner.ID(), View: runner.View()}, http.StatusOK)
}

func (a *API) submitAnswer(w http.ResponseWriter, r *http.Request) {
	runner, ok := a.runner(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, a.log, map[string]string{"error": errBadBody.Error()}, http.StatusBadRequest)
		return
	}
	result, err := runner.Submit(req.Choice)
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	respondJSON(w, a.log, result, http.StatusOK)
}

func (a *API) advance(w http.ResponseWriter, r *http.Request) {
	runner, ok := a.runner(w, r)
	if !ok {
		return
	}
	view, err := runner.Advance()
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	respondJSON(w, a.log, view, http.StatusOK)
}

func (a *API) finish(w http.ResponseWriter, r *http.Request) {
	result, err := a.service.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, a.log, err)
		return
	}
	respondJSON(w, a.log, result, http.StatusOK)
}

func (a *API) abandonSession(w http.ResponseWriter, r *http.Request) {
	runner, ok := a.runner(w, r)
	if !ok {
		return
	}
	a.service.Abandon(runner.ID())
	w.WriteHeader(http.StatusNoContent)
}

// streamEvents relays session events as server-sent events until the client
// goes away or the session is released.
func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	runner, ok := a.runner(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := runner.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				a.log.WithError(err).Warn("failed to encode event")
				continue
			}
			w.Write([]byte("event: " + string(ev.Type) + "\n"))
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (a *API) runner(w http.ResponseWriter, r *http.Request) (*app.Runner, bool) {
	runner, err := a.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, a.log, err)
		return nil, false
	}
	return runner, true
}
