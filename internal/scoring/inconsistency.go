package scoring

// AnswerContext carries the signals the review heuristics evaluate. Times are
// in seconds, measured by the presentation layer.
type AnswerContext struct {
	TimeTaken       float64
	TimePerQuestion float64
	IsCorrect       bool
	IsSkipped       bool
	Difficulty      int
}

// NeedsReview flags a submission as suspicious based on timing and
// correctness. Skipped answers are never flagged. The rules are deliberately
// heuristic: the flag feeds a human review queue, not an automatic penalty,
// and false positives are expected.
func NeedsReview(c AnswerContext) bool {
	if c.IsSkipped {
		return false
	}
	// likely accidental tap or blind guess
	if c.TimeTaken < 2 {
		return true
	}
	// too fast for a hard question
	if c.Difficulty >= 4 && c.TimeTaken < 5 {
		return true
	}
	// suspiciously fast correct answer
	if c.IsCorrect && c.TimeTaken < 3 {
		return true
	}
	// accidental tap on a wrong option
	if !c.IsCorrect && c.TimeTaken < 1 {
		return true
	}
	// correct at the very last moment on a hard question
	if c.IsCorrect && c.Difficulty >= 4 && c.TimeTaken >= c.TimePerQuestion-2 {
		return true
	}
	return false
}
