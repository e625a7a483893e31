package lifeline

import (
	"math"
	"math/rand"
	"time"

	"wisdom-quiz-service/internal/domain"
)

// Engine generates hint payloads in original coordinates. The caller projects
// results into the participant's shuffled view before anything reaches a
// client. Hints are single-use and never re-derived, so the randomness is
// unseeded, unlike the question shuffler.
type Engine struct {
	rnd *rand.Rand
}

func NewEngine() *Engine {
	return NewEngineWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand allows deterministic hints in tests.
func NewEngineWithRand(rnd *rand.Rand) *Engine {
	return &Engine{rnd: rnd}
}

// Cards picks two of the three wrong options to eliminate, uniformly at
// random. The correct option is never eliminated.
func (e *Engine) Cards(correct domain.OriginalIndex) []domain.OriginalIndex {
	wrong := make([]domain.OriginalIndex, 0, domain.OptionCount-1)
	for i := 0; i < domain.OptionCount; i++ {
		if idx := domain.OriginalIndex(i); idx != correct {
			wrong = append(wrong, idx)
		}
	}
	e.rnd.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	return wrong[:2]
}

// Audience produces per-option percentages in original coordinates. With real
// aggregate stats it reports rounded shares of actual answers (the sum may
// drift a point off 100 through rounding). Without stats it simulates a
// team vote biased toward the truth: the correct option always holds the
// strict maximum.
func (e *Engine) Audience(stats *domain.QuestionStats, correct domain.OriginalIndex) [domain.OptionCount]int {
	if stats != nil && stats.TotalAnswers > 0 {
		var pct [domain.OptionCount]int
		for i, count := range stats.OptionCounts {
			pct[i] = int(math.Round(float64(count) / float64(stats.TotalAnswers) * 100))
		}
		return pct
	}
	return e.simulated(correct)
}

// simulated draws the correct option's share from [45,65], gives each wrong
// option a jittered slice of the remainder (at least 5%), and forces the
// residual onto the correct option so the total is exactly 100.
func (e *Engine) simulated(correct domain.OriginalIndex) [domain.OptionCount]int {
	var pct [domain.OptionCount]int
	correctPct := 45 + e.rnd.Intn(21)
	remaining := 100 - correctPct
	base := remaining / 3

	sumWrong := 0
	for i := 0; i < domain.OptionCount; i++ {
		if domain.OriginalIndex(i) == correct {
			continue
		}
		p := base + e.rnd.Intn(7) - 3
		if p < 5 {
			p = 5
		}
		pct[i] = p
		sumWrong += p
	}
	pct[correct] = 100 - sumWrong
	return pct
}
