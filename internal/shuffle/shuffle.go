package shuffle

// Shuffle returns a seeded Fisher-Yates permutation of items. The input slice
// is never mutated; the same (items, seed) pair always yields the same order.
func Shuffle[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	copy(out, items)
	next := NewRNG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
