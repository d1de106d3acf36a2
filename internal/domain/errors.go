package domain

import "errors"

var (
	// ErrUnknownCategory is returned when the question bank has no entry for a category.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyCategory is returned when a category resolves to zero questions.
	ErrEmptyCategory = errors.New("category has no questions")
	// ErrNoCategorySelected is returned when the caller starts a quiz without picking a subject.
	ErrNoCategorySelected = errors.New("pick a subject")
	// ErrSessionNotActive is returned when an operation needs an in-progress session.
	ErrSessionNotActive = errors.New("quiz session not active")
	// ErrSessionAlreadyStarted is returned when Begin is called twice on the same session.
	ErrSessionAlreadyStarted = errors.New("quiz session already started")
	// ErrAnswerAlreadyRecorded is returned on a second answer for the same question.
	ErrAnswerAlreadyRecorded = errors.New("answer already recorded")
	// ErrQuestionStillPending is returned when advancing past an unresolved question.
	ErrQuestionStillPending = errors.New("question still pending")
	// ErrSessionNotFinished is returned when finalizing a session that is still running.
	ErrSessionNotFinished = errors.New("quiz session not finished")
	// ErrResultAlreadyFinalized is returned when a finished session is finalized twice.
	ErrResultAlreadyFinalized = errors.New("quiz result already finalized")
	// ErrInvalidDuration is returned for a non-positive per-question time limit.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrTimerActive is returned when a countdown is started while another run is live.
	ErrTimerActive = errors.New("timer already running")
	// ErrInvalidQuestion indicates malformed question content.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrSessionNotFound is returned when no live session matches an id.
	ErrSessionNotFound = errors.New("quiz session not found")
)
