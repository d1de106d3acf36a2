package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"trivia-quiz/internal/domain"

	"github.com/sirupsen/logrus"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoCategorySelected),
		errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyCategory),
		errors.Is(err, domain.ErrInvalidQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionAlreadyStarted),
		errors.Is(err, domain.ErrAnswerAlreadyRecorded),
		errors.Is(err, domain.ErrQuestionStillPending),
		errors.Is(err, domain.ErrSessionNotFinished),
		errors.Is(err, domain.ErrResultAlreadyFinalized),
		errors.Is(err, domain.ErrTimerActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, log logrus.FieldLogger, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	respondJSON(w, log, map[string]string{"error": err.Error()}, status)
}
