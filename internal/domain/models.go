package domain

// NoCategory is the "none selected" value offered by category pickers.
const NoCategory = "pick"

// HighScoreKeyPrefix namespaces best scores in key-value stores.
const HighScoreKeyPrefix = "quiz_high_"

// HighScoreKey returns the store key holding the best score for a category.
func HighScoreKey(category string) string {
	return HighScoreKeyPrefix + category
}

// Question models an MCQ question with exactly one correct choice.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt" validate:"required"`
	Choices       []string `json:"choices" yaml:"choices" validate:"min=2,unique,dive,required"`
	CorrectChoice string   `json:"answer" yaml:"answer" validate:"required"`
}

// Outcome is the resolution of a single question attempt.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeTimedOut  Outcome = "timed_out"
)

// Phase is the lifecycle stage of a quiz session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// QuestionState is the runtime record of one question within a session.
type QuestionState struct {
	Question Question `json:"question"`
	Selected string   `json:"selected,omitempty"`
	Outcome  Outcome  `json:"outcome"`
}

// AnswerResult is returned to the caller after a submission so the correct choice can be revealed.
type AnswerResult struct {
	Outcome       Outcome `json:"outcome"`
	Selected      string  `json:"selected"`
	CorrectChoice string  `json:"correctChoice"`
	Score         int     `json:"score"`
}

// View is everything a presentation layer needs to render the current state.
type View struct {
	Category      string   `json:"category"`
	Phase         Phase    `json:"phase"`
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Prompt        string   `json:"prompt,omitempty"`
	Choices       []string `json:"choices,omitempty"`
	Remaining     int      `json:"remaining"`
	Progress      float64  `json:"progress"`
	Score         int      `json:"score"`
	Outcome       Outcome  `json:"outcome,omitempty"`
	Selected      string   `json:"selected,omitempty"`
	CorrectChoice string   `json:"correctChoice,omitempty"` // only set once the question is resolved
}

// Result is the immutable summary of a finished session.
type Result struct {
	Category     string `json:"category"`
	Score        int    `json:"score"`
	Total        int    `json:"total"`
	Percent      int    `json:"percent"`
	PreviousBest int    `json:"previousBest"`
	IsNewBest    bool   `json:"isNewBest"`
	UpdatedBest  int    `json:"updatedBest"`
	Celebrate    bool   `json:"celebrate"`
}

// EventType names a session transition.
type EventType string

const (
	EventQuestion EventType = "question"
	EventTick     EventType = "tick"
	EventAnswered EventType = "answerResult"
	EventTimeout  EventType = "timeout"
	EventFinished EventType = "finished"
)

// Event is published to listeners on every session transition.
type Event struct {
	Type   EventType     `json:"type"`
	View   View          `json:"view"`
	Answer *AnswerResult `json:"answer,omitempty"`
}
