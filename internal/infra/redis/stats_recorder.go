package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wisdom-quiz-service/internal/app"
	"wisdom-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// StatsRecorder decorates an AnswerRepository with Redis-held per-question
// answer counters so the audience lifeline can read aggregates without
// hitting the backing store:
//
//	HINCRBY quiz:{quizID}:stats:{questionID} option_{n} 1
//	HINCRBY quiz:{quizID}:stats:{questionID} total 1
//
// Writes go to the inner repository first; counters are incremented only
// after the inner store accepted the answer, so a rejected duplicate never
// inflates the vote.
type StatsRecorder struct {
	client *redis.Client
	inner  app.AnswerRepository
	ttl    time.Duration
}

func NewStatsRecorder(client *redis.Client, inner app.AnswerRepository, ttl time.Duration) *StatsRecorder {
	return &StatsRecorder{client: client, inner: inner, ttl: ttl}
}

func (s *StatsRecorder) Record(ctx context.Context, answer domain.Answer) error {
	if err := s.inner.Record(ctx, answer); err != nil {
		return err
	}
	if !answer.SelectedOption.Valid() {
		// skipped answers do not vote
		return nil
	}

	key := s.statsKey(answer.QuizID, answer.QuestionID)
	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, optionField(int(answer.SelectedOption)), 1)
	pipe.HIncrBy(ctx, key, "total", 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	// best-effort: Stats falls back to the inner store when counters are cold
	_, _ = pipe.Exec(ctx)
	return nil
}

func (s *StatsRecorder) Stats(ctx context.Context, quizID, questionID string) (domain.QuestionStats, error) {
	fields, err := s.client.HGetAll(ctx, s.statsKey(quizID, questionID)).Result()
	if err == nil && len(fields) > 0 {
		return statsFromFields(fields), nil
	}
	return s.inner.Stats(ctx, quizID, questionID)
}

func (s *StatsRecorder) statsKey(quizID, questionID string) string {
	return "quiz:" + quizID + ":stats:" + questionID
}

func optionField(idx int) string {
	return fmt.Sprintf("option_%d", idx)
}

func statsFromFields(fields map[string]string) domain.QuestionStats {
	var stats domain.QuestionStats
	for i := 0; i < domain.OptionCount; i++ {
		if raw, ok := fields[optionField(i)]; ok {
			if n, err := strconv.Atoi(raw); err == nil {
				stats.OptionCounts[i] = n
			}
		}
	}
	if raw, ok := fields["total"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			stats.TotalAnswers = n
		}
	}
	return stats
}
