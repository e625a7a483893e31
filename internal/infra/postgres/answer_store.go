package postgres

import (
	"context"
	"fmt"

	"wisdom-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerStore persists answers in Postgres. The unique key on
// (quiz_id, participant_id, question_id) is what sequences racing duplicate
// submissions: the second insert hits ON CONFLICT DO NOTHING, affects zero
// rows, and surfaces as domain.ErrAnswerAlreadyRecorded.
type AnswerStore struct {
	pool *pgxpool.Pool
}

func NewAnswerStore(pool *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{pool: pool}
}

func (s *AnswerStore) Record(ctx context.Context, answer domain.Answer) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO answers
			(quiz_id, participant_id, question_id, selected_option, is_correct,
			 time_taken, points_earned, needs_review, lifeline_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (quiz_id, participant_id, question_id) DO NOTHING`,
		answer.QuizID,
		answer.ParticipantID,
		answer.QuestionID,
		int(answer.SelectedOption),
		answer.IsCorrect,
		answer.TimeTaken,
		answer.PointsEarned,
		answer.NeedsReview,
		string(answer.LifelineUsed),
		answer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnswerAlreadyRecorded
	}
	return nil
}

// Stats aggregates original-coordinate option counts for one question.
// Skipped answers store the sentinel -1 and fall outside the range filter.
func (s *AnswerStore) Stats(ctx context.Context, quizID, questionID string) (domain.QuestionStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT selected_option, COUNT(*)
		FROM answers
		WHERE quiz_id=$1 AND question_id=$2 AND selected_option BETWEEN 0 AND 3
		GROUP BY selected_option`,
		quizID, questionID,
	)
	if err != nil {
		return domain.QuestionStats{}, fmt.Errorf("load answer stats: %w", err)
	}
	defer rows.Close()

	var stats domain.QuestionStats
	for rows.Next() {
		var option, count int
		if err := rows.Scan(&option, &count); err != nil {
			return domain.QuestionStats{}, fmt.Errorf("scan answer stats: %w", err)
		}
		stats.OptionCounts[option] = count
		stats.TotalAnswers += count
	}
	if err := rows.Err(); err != nil {
		return domain.QuestionStats{}, fmt.Errorf("iterate answer stats: %w", err)
	}
	return stats, nil
}
