package shuffle

import "wisdom-quiz-service/internal/domain"

// The remappers convert option indices between the client-facing shuffled
// order and the canonical order by matching option text. They never panic:
// out-of-range input or a failed lookup yields the sentinel index and a
// sentinel error, and callers filter invalid results before use. Duplicate
// option text is reported as domain.ErrAmbiguousOption instead of silently
// resolving to the first match.

// ShuffledToOriginal resolves the canonical index of the option shown at idx
// in the shuffled order.
func ShuffledToOriginal(idx domain.ShuffledIndex, original, shuffled []string) (domain.OriginalIndex, error) {
	if int(idx) < 0 || int(idx) >= len(shuffled) {
		return domain.NoOriginal, domain.ErrOptionNotFound
	}
	pos, err := uniqueIndex(shuffled[idx], original)
	if err != nil {
		return domain.NoOriginal, err
	}
	return domain.OriginalIndex(pos), nil
}

// OriginalToShuffled resolves where the option at canonical index idx appears
// in the shuffled order. Used to project lifeline results, computed in
// original coordinates, into the view a client actually sees.
func OriginalToShuffled(idx domain.OriginalIndex, original, shuffled []string) (domain.ShuffledIndex, error) {
	if int(idx) < 0 || int(idx) >= len(original) {
		return domain.NoShuffled, domain.ErrOptionNotFound
	}
	pos, err := uniqueIndex(original[idx], shuffled)
	if err != nil {
		return domain.NoShuffled, err
	}
	return domain.ShuffledIndex(pos), nil
}

func uniqueIndex(text string, options []string) (int, error) {
	found := -1
	for i, opt := range options {
		if opt != text {
			continue
		}
		if found >= 0 {
			return -1, domain.ErrAmbiguousOption
		}
		found = i
	}
	if found < 0 {
		return -1, domain.ErrOptionNotFound
	}
	return found, nil
}
