package memory

import (
	"context"
	"sync"

	"wisdom-quiz-service/internal/domain"
)

// AnswerStore is an in-memory implementation of app.AnswerRepository. A
// mutex-guarded map keyed by (quiz, participant, question) gives the same
// write-once guarantee the Postgres store gets from its unique constraint.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[answerKey]domain.Answer
}

type answerKey struct {
	quizID        string
	participantID string
	questionID    string
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[answerKey]domain.Answer)}
}

func (s *AnswerStore) Record(_ context.Context, answer domain.Answer) error {
	key := answerKey{answer.QuizID, answer.ParticipantID, answer.QuestionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.answers[key]; exists {
		return domain.ErrAnswerAlreadyRecorded
	}
	s.answers[key] = answer
	return nil
}

// Stats aggregates original-coordinate option counts for one question.
// Skipped answers carry no selected option and are not counted.
func (s *AnswerStore) Stats(_ context.Context, quizID, questionID string) (domain.QuestionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.QuestionStats
	for key, answer := range s.answers {
		if key.quizID != quizID || key.questionID != questionID {
			continue
		}
		if !answer.SelectedOption.Valid() {
			continue
		}
		stats.OptionCounts[answer.SelectedOption]++
		stats.TotalAnswers++
	}
	return stats, nil
}

// Get returns a recorded answer, mainly for tests and review tooling.
func (s *AnswerStore) Get(quizID, participantID, questionID string) (domain.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[answerKey{quizID, participantID, questionID}]
	return answer, ok
}
