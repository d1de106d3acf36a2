package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type eventPayload struct {
	View   domain.View          `json:"view"`
	Answer *domain.AnswerResult `json:"answer,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS upgrades the request and runs one quiz session for the lifetime of
// the connection. Closing the socket abandons an unfinished session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	seconds := 0
	if raw := r.URL.Query().Get("seconds"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "seconds must be a positive integer", http.StatusBadRequest)
			return
		}
		seconds = n
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	runner, err := h.service.Start(r.Context(), category, seconds)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		closeNormally(conn, "quiz not started")
		return
	}
	defer h.service.Abandon(runner.ID())
	log := h.log.WithField("session", runner.ID())

	updates, cancel := runner.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	results := make(chan domain.Result, 1)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	forwardDone := make(chan struct{})

	// only this goroutine writes to conn
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	push := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	// Events and the final result share one ordered path: everything queued
	// before the finished event is sent before the result.
	go func() {
		defer close(forwardDone)
		deliver := func(msg outboundMessage) bool {
			select {
			case send <- msg:
				return true
			case <-closeSignals:
				return false
			case <-writerDone:
				return false
			}
		}
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				if ev.Type != domain.EventFinished {
					msg := outboundMessage{Type: string(ev.Type), Payload: eventPayload{View: ev.View, Answer: ev.Answer}}
					if !deliver(msg) {
						return
					}
					continue
				}
				// the result message replaces the bare finished event
				select {
				case result := <-results:
					deliver(outboundMessage{Type: "result", Payload: result})
				case <-closeSignals:
				}
				return
			case <-closeSignals:
				return
			}
		}
	}()

	finished := false
	for !finished {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(errors.New("invalid answer payload")))
				continue
			}
			// the outcome reaches the client through the event stream
			if _, err := runner.Submit(payload.Choice); err != nil {
				push(errorMessage(err))
			}
		case "next":
			view, err := runner.Advance()
			if err != nil {
				push(errorMessage(err))
				continue
			}
			if view.Phase != domain.PhaseFinished {
				continue
			}
			result, err := h.service.Finish(r.Context(), runner.ID())
			if err != nil {
				push(errorMessage(err))
				continue
			}
			results <- result
			finished = true
		default:
			push(errorMessage(errors.New("unsupported message type")))
		}
	}

	if !finished {
		close(closeSignals)
	}
	<-forwardDone
	close(send)
	<-writerDone
	if finished {
		closeNormally(conn, "quiz finished")
	}
}

func closeNormally(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second),
	)
}
