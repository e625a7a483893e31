package app

import (
	"context"
	"fmt"
	"time"

	"wisdom-quiz-service/internal/domain"
	"wisdom-quiz-service/internal/lifeline"
	"wisdom-quiz-service/internal/scoring"
	"wisdom-quiz-service/internal/shuffle"
)

// DefaultTimePerQuestion is the per-question timer assumed when config leaves
// it unset, in seconds.
const DefaultTimePerQuestion = 30.0

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(quizID string) *Session
	Get(quizID string) (*Session, bool)
	DeleteIfEmpty(quizID string)
}

// QuestionRepository loads quiz content (from cache/backing store).
type QuestionRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AnswerRepository persists answers and serves aggregate per-question stats.
// Record must be atomic per (quiz, participant, question): a second write for
// the same key returns domain.ErrAnswerAlreadyRecorded so a racing duplicate
// submission can never double-credit.
type AnswerRepository interface {
	Record(ctx context.Context, answer domain.Answer) error
	Stats(ctx context.Context, quizID, questionID string) (domain.QuestionStats, error)
}

// QuizService contains the core quiz use cases: serving per-participant
// shuffled views, scoring submissions back in canonical coordinates, and
// generating lifeline hints.
type QuizService struct {
	sessions        SessionRepository
	questions       QuestionRepository
	answers         AnswerRepository
	shuffler        *shuffle.Shuffler
	lifelines       *lifeline.Engine
	timePerQuestion float64
	now             func() time.Time
}

func NewQuizService(
	sessions SessionRepository,
	questions QuestionRepository,
	answers AnswerRepository,
	shuffler *shuffle.Shuffler,
	lifelines *lifeline.Engine,
	timePerQuestion float64,
) *QuizService {
	if shuffler == nil {
		shuffler = shuffle.NewShuffler(nil)
	}
	if lifelines == nil {
		lifelines = lifeline.NewEngine()
	}
	if timePerQuestion <= 0 {
		timePerQuestion = DefaultTimePerQuestion
	}
	return &QuizService{
		sessions:        sessions,
		questions:       questions,
		answers:         answers,
		shuffler:        shuffler,
		lifelines:       lifelines,
		timePerQuestion: timePerQuestion,
		now:             time.Now,
	}
}

// TimePerQuestion exposes the configured question timer in seconds.
func (s *QuizService) TimePerQuestion() float64 {
	return s.timePerQuestion
}

// Join registers or refreshes a participant in a quiz session and returns the
// leaderboard plus the participant's deterministic shuffled view of the quiz.
func (s *QuizService) Join(ctx context.Context, quizID, userID, displayName string) (domain.Leaderboard, []domain.ShuffledQuestion, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, nil, err
	}

	session := s.sessions.GetOrCreate(quizID)
	lb := session.join(userID, displayName)
	return lb, s.shuffler.ForParticipant(quiz.Questions, userID), nil
}

// Questions recomputes the participant's shuffled view. It is a pure
// projection of (quiz content, participantID) and returns identical output on
// every call.
func (s *QuizService) Questions(ctx context.Context, quizID, userID string) ([]domain.ShuffledQuestion, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return s.shuffler.ForParticipant(quiz.Questions, userID), nil
}

// SubmitAnswer inverts the participant's shuffle to recover the canonical
// option index, scores the submission, runs the review heuristics, and
// persists the answer in original coordinates. A repeat submission for the
// same question returns domain.ErrAnswerAlreadyRecorded.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, userID string, sub domain.AnswerSubmission) (domain.AnswerResult, domain.Leaderboard, error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return domain.AnswerResult{}, domain.Leaderboard{}, domain.ErrSessionNotFound
	}
	if !session.hasParticipant(userID) {
		return domain.AnswerResult{}, domain.Leaderboard{}, domain.ErrParticipantNotFound
	}
	// timeTaken is client-reported; a negative value would inflate the time
	// bonus without bound.
	if sub.TimeTaken < 0 {
		return domain.AnswerResult{}, domain.Leaderboard{}, fmt.Errorf("negative timeTaken %v: %w", sub.TimeTaken, domain.ErrInvalidSubmission)
	}

	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.AnswerResult{}, domain.Leaderboard{}, err
	}
	question, err := findQuestion(quiz, sub.QuestionID)
	if err != nil {
		return domain.AnswerResult{}, domain.Leaderboard{}, err
	}

	skipped := sub.Lifeline == domain.LifelineSkip || !sub.OptionIndex.Valid()
	selected := domain.NoOriginal
	if !skipped {
		view := s.shuffler.OptionsFor(question, userID)
		selected, err = shuffle.ShuffledToOriginal(sub.OptionIndex, question.Options, view.ShuffledOptions)
		if err != nil {
			return domain.AnswerResult{}, domain.Leaderboard{}, fmt.Errorf("remap option for question %s: %w", question.ID, err)
		}
	}

	correct := selected.Valid() && selected == question.CorrectOption
	points := 0
	if correct {
		points = scoring.Points(question.Difficulty, s.timePerQuestion-sub.TimeTaken, s.timePerQuestion)
	}
	needsReview := scoring.NeedsReview(scoring.AnswerContext{
		TimeTaken:       sub.TimeTaken,
		TimePerQuestion: s.timePerQuestion,
		IsCorrect:       correct,
		IsSkipped:       skipped,
		Difficulty:      question.Difficulty,
	})

	lifelineUsed := sub.Lifeline
	if lifelineUsed == "" {
		lifelineUsed = domain.LifelineNone
	}
	answer := domain.Answer{
		QuizID:         quizID,
		ParticipantID:  userID,
		QuestionID:     question.ID,
		SelectedOption: selected,
		IsCorrect:      correct,
		TimeTaken:      sub.TimeTaken,
		PointsEarned:   points,
		NeedsReview:    needsReview,
		LifelineUsed:   lifelineUsed,
		CreatedAt:      s.now(),
	}
	if err := s.answers.Record(ctx, answer); err != nil {
		return domain.AnswerResult{}, domain.Leaderboard{}, err
	}

	lb, total, err := session.addPoints(userID, points)
	if err != nil {
		return domain.AnswerResult{}, domain.Leaderboard{}, err
	}
	return domain.AnswerResult{
		QuestionID:   question.ID,
		Correct:      correct,
		PointsEarned: points,
		NeedsReview:  needsReview,
		TotalScore:   total,
	}, lb, nil
}

// UseLifeline computes a hint in canonical coordinates and projects it into
// the participant's shuffled view before returning it, so original indices
// never reach a client holding an unsolved question. Each lifeline kind is
// single-use per participant; reuse returns domain.ErrLifelineUsed.
func (s *QuizService) UseLifeline(ctx context.Context, quizID, userID, questionID string, kind domain.Lifeline) (domain.LifelineResult, error) {
	switch kind {
	case domain.LifelineSkip, domain.LifelineCards, domain.LifelineAudience:
	default:
		return domain.LifelineResult{}, fmt.Errorf("unsupported lifeline %q", kind)
	}

	session, ok := s.sessions.Get(quizID)
	if !ok {
		return domain.LifelineResult{}, domain.ErrSessionNotFound
	}
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.LifelineResult{}, err
	}
	question, err := findQuestion(quiz, questionID)
	if err != nil {
		return domain.LifelineResult{}, err
	}
	if err := session.useLifeline(userID, kind); err != nil {
		return domain.LifelineResult{}, err
	}
	view := s.shuffler.OptionsFor(question, userID)

	switch kind {
	case domain.LifelineSkip:
		// Skips carry no payload; the answer submission records the spend.
		return domain.LifelineResult{Type: domain.LifelineSkip}, nil

	case domain.LifelineCards:
		eliminated := make([]domain.ShuffledIndex, 0, 2)
		for _, orig := range s.lifelines.Cards(question.CorrectOption) {
			idx, err := shuffle.OriginalToShuffled(orig, question.Options, view.ShuffledOptions)
			if err != nil {
				// Remap misses are filtered, not fatal; the client just
				// receives fewer eliminations.
				continue
			}
			eliminated = append(eliminated, idx)
		}
		return domain.LifelineResult{Type: domain.LifelineCards, EliminatedOptions: eliminated}, nil

	case domain.LifelineAudience:
		var statsRef *domain.QuestionStats
		if stats, err := s.answers.Stats(ctx, quizID, questionID); err == nil {
			statsRef = &stats
		}
		// Missing or empty stats are not an error: the engine simulates.
		pct := s.lifelines.Audience(statsRef, question.CorrectOption)

		var projected [domain.OptionCount]int
		for i, p := range pct {
			idx, err := shuffle.OriginalToShuffled(domain.OriginalIndex(i), question.Options, view.ShuffledOptions)
			if err != nil {
				session.releaseLifeline(userID, kind)
				return domain.LifelineResult{}, fmt.Errorf("project audience percentages for question %s: %w", question.ID, err)
			}
			projected[idx] = p
		}
		return domain.LifelineResult{Type: domain.LifelineAudience, Percentages: &projected}, nil

	default:
		return domain.LifelineResult{}, fmt.Errorf("unsupported lifeline %q", kind)
	}
}

// Subscribe returns a channel that receives leaderboard updates for a quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave removes a participant from the session and drops the session if empty.
func (s *QuizService) Leave(_ context.Context, quizID, userID string) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return
	}
	session.leave(userID)
	if session.isEmpty() {
		s.sessions.DeleteIfEmpty(quizID)
	}
}

func (s *QuizService) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.questions.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, q := range quiz.Questions {
		if err := q.Validate(); err != nil {
			return domain.Quiz{}, fmt.Errorf("question %s: %w", q.ID, err)
		}
	}
	return quiz, nil
}

func findQuestion(quiz domain.Quiz, questionID string) (domain.Question, error) {
	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
