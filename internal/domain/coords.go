package domain

// OriginalIndex is an index into a question's canonical option order. This is
// the only coordinate system that may be persisted or compared against
// CorrectOption.
type OriginalIndex int

// ShuffledIndex is an index into a participant's shuffled option order. This
// is the only coordinate system clients ever see. Keeping the two as distinct
// types stops a shuffled index from being scored or stored by accident.
type ShuffledIndex int

const (
	// NoOriginal is the sentinel for a failed or absent original-index lookup.
	NoOriginal OriginalIndex = -1
	// NoShuffled is the sentinel for a failed or absent shuffled-index lookup.
	NoShuffled ShuffledIndex = -1
)

// Valid reports whether the index refers to one of the four options.
func (i OriginalIndex) Valid() bool { return i >= 0 && i < OptionCount }

// Valid reports whether the index refers to one of the four options.
func (i ShuffledIndex) Valid() bool { return i >= 0 && i < OptionCount }
