package domain

import "time"

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// Question is the canonical form of a multiple-choice question. Options keep
// their authoring order; CorrectOption indexes into that order.
type Question struct {
	ID            string        `json:"id"`
	Prompt        string        `json:"prompt"`
	Options       []string      `json:"options"` // exactly OptionCount entries, distinct text
	CorrectOption OriginalIndex `json:"correctOption"`
	Difficulty    int           `json:"difficulty"` // 1..5
	OrderIndex    int           `json:"orderIndex"` // position in the canonical sequence
}

// Validate checks the shape invariants quiz content must satisfy before it
// reaches the shuffler. Duplicate option text is legal here but degrades
// index recovery to an explicit ErrAmbiguousOption at remap time.
func (q Question) Validate() error {
	if q.ID == "" || len(q.Options) != OptionCount {
		return ErrInvalidQuestion
	}
	for _, opt := range q.Options {
		if opt == "" {
			return ErrInvalidQuestion
		}
	}
	if !q.CorrectOption.Valid() {
		return ErrInvalidQuestion
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return ErrInvalidQuestion
	}
	return nil
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// ShuffledQuestion is the per-participant projection of a Question. It is
// never persisted; it is recomputed identically from (question, participantId)
// whenever needed, including at answer-submission time to invert the client's
// chosen index.
type ShuffledQuestion struct {
	Question
	ShuffledOptions       []string      `json:"shuffledOptions"`
	ShuffledCorrectOption ShuffledIndex `json:"shuffledCorrectOption"`
	OriginalOrderIndex    int           `json:"originalOrderIndex"`
	// OrderIndex (embedded) is overridden to the position within this
	// participant's shuffled sequence.
}

// Lifeline identifies the help a participant spent on a question.
type Lifeline string

const (
	LifelineNone     Lifeline = "none"
	LifelineSkip     Lifeline = "skip"
	LifelineCards    Lifeline = "cards"
	LifelineAudience Lifeline = "audience"
)

// Answer is the persisted record of one submission. SelectedOption is always
// in original coordinates; shuffled coordinates must never leak into storage.
type Answer struct {
	QuizID         string
	ParticipantID  string
	QuestionID     string
	SelectedOption OriginalIndex // NoOriginal when skipped or timed out
	IsCorrect      bool
	TimeTaken      float64 // seconds
	PointsEarned   int
	NeedsReview    bool
	LifelineUsed   Lifeline
	CreatedAt      time.Time
}

// AnswerSubmission models the scoring signal from clients. OptionIndex is in
// the participant's shuffled coordinates; NoShuffled means skipped/timed out.
type AnswerSubmission struct {
	QuestionID  string
	OptionIndex ShuffledIndex
	TimeTaken   float64
	Lifeline    Lifeline
}

// AnswerResult summarizes the outcome of a submission for a single user.
type AnswerResult struct {
	QuestionID   string `json:"questionId"`
	Correct      bool   `json:"correct"`
	PointsEarned int    `json:"pointsEarned"`
	NeedsReview  bool   `json:"needsReview"`
	TotalScore   int    `json:"totalScore"`
}

// QuestionStats aggregates answer counts per original option index across all
// participants, feeding the audience lifeline.
type QuestionStats struct {
	OptionCounts [OptionCount]int
	TotalAnswers int
}

// LifelineResult carries a hint payload. Indices and percentage positions are
// in whichever coordinate system the producer documents; the transport only
// ever sees shuffled coordinates.
type LifelineResult struct {
	Type              Lifeline          `json:"type"`
	EliminatedOptions []ShuffledIndex   `json:"eliminatedOptions,omitempty"`
	Percentages       *[OptionCount]int `json:"percentages,omitempty"`
}

// Participant represents a quiz participant and their accumulated score.
type Participant struct {
	UserID      string
	DisplayName string
	Score       int
	LastUpdated time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a quiz session.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
