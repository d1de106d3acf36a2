package http

import (
	"net/http"
	"time"

	"trivia-quiz/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the REST, SSE and WebSocket surfaces of the quiz service.
func NewRouter(service *app.QuizService, log logrus.FieldLogger) http.Handler {
	api := NewAPI(service, log)
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/categories", api.categories)
	r.Get("/highscores/{category}", api.highScore)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", api.startSession)
		r.Get("/{id}", api.getSession)
		r.Delete("/{id}", api.abandonSession)
		r.Post("/{id}/answer", api.submitAnswer)
		r.Post("/{id}/next", api.advance)
		r.Post("/{id}/result", api.finish)
		r.Get("/{id}/events", api.streamEvents)
	})

	r.Get("/ws", ws.ServeWS)
	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"request":  middleware.GetReqID(r.Context()),
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			}).Debug("http request")
		})
	}
}
