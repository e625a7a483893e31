package shuffle

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// NewRNG returns a deterministic generator of floats in [0,1). The sequence
// is a pure function of the seed and the call count; the same generator is
// used both when building a participant's shuffle and when inverting it at
// submission time, so the two always agree.
func NewRNG(seed int64) func() float64 {
	state := seed % lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	return func() float64 {
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		return float64(state) / lcgModulus
	}
}
