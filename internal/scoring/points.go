package scoring

import "math"

// Points converts difficulty and remaining time into a score for a correct
// answer: difficulty*100 base plus up to 50 bonus points proportional to the
// time left. The caller awards 0 for wrong or skipped answers and guarantees
// 0 <= timeRemaining <= totalTime; no clamping happens here, so out-of-range
// input yields a bonus outside [0,50].
func Points(difficulty int, timeRemaining, totalTime float64) int {
	basePoints := difficulty * 100
	timeBonus := int(math.Floor(timeRemaining / totalTime * 50))
	return basePoints + timeBonus
}
