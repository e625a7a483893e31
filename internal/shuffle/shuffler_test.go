package shuffle

import (
	"fmt"
	"reflect"
	"testing"

	"wisdom-quiz-service/internal/domain"
)

func sampleQuestions() []domain.Question {
	questions := make([]domain.Question, 0, 5)
	for i := 0; i < 5; i++ {
		questions = append(questions, domain.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("Question %d", i+1),
			Options: []string{
				fmt.Sprintf("q%d opt a", i+1),
				fmt.Sprintf("q%d opt b", i+1),
				fmt.Sprintf("q%d opt c", i+1),
				fmt.Sprintf("q%d opt d", i+1),
			},
			CorrectOption: domain.OriginalIndex(i % 4),
			Difficulty:    i%5 + 1,
			OrderIndex:    i,
		})
	}
	return questions
}

func TestForParticipantIsDeterministic(t *testing.T) {
	s := NewShuffler(nil)
	questions := sampleQuestions()

	first := s.ForParticipant(questions, "participant-1")
	second := s.ForParticipant(questions, "participant-1")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same participant got different shuffles:\n%+v\n%+v", first, second)
	}
}

func TestForParticipantPermutationIntegrity(t *testing.T) {
	s := NewShuffler(nil)
	questions := sampleQuestions()

	shuffled := s.ForParticipant(questions, "participant-2")
	if len(shuffled) != len(questions) {
		t.Fatalf("expected %d questions, got %d", len(questions), len(shuffled))
	}

	for _, sq := range shuffled {
		seen := map[string]int{}
		for _, opt := range sq.ShuffledOptions {
			seen[opt]++
		}
		for _, opt := range sq.Options {
			if seen[opt] != 1 {
				t.Fatalf("question %s: option %q appears %d times in shuffled view", sq.ID, opt, seen[opt])
			}
		}
		if !sq.ShuffledCorrectOption.Valid() {
			t.Fatalf("question %s: invalid shuffled correct index %d", sq.ID, sq.ShuffledCorrectOption)
		}
		if sq.ShuffledOptions[sq.ShuffledCorrectOption] != sq.Options[sq.CorrectOption] {
			t.Fatalf("question %s: shuffled correct option %q does not match canonical %q",
				sq.ID, sq.ShuffledOptions[sq.ShuffledCorrectOption], sq.Options[sq.CorrectOption])
		}
	}
}

func TestForParticipantRewritesOrderIndexes(t *testing.T) {
	s := NewShuffler(nil)
	questions := sampleQuestions()

	shuffled := s.ForParticipant(questions, "participant-3")
	originals := map[int]bool{}
	for pos, sq := range shuffled {
		if sq.OrderIndex != pos {
			t.Fatalf("expected order index %d, got %d", pos, sq.OrderIndex)
		}
		originals[sq.OriginalOrderIndex] = true
	}
	for i := range questions {
		if !originals[i] {
			t.Fatalf("original order index %d missing from shuffled view", i)
		}
	}
}

func TestForParticipantEmptyInput(t *testing.T) {
	s := NewShuffler(nil)
	if got := s.ForParticipant(nil, "participant-1"); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}

func TestOptionsForMatchesFullShuffle(t *testing.T) {
	s := NewShuffler(nil)
	questions := sampleQuestions()

	full := s.ForParticipant(questions, "participant-4")
	for _, sq := range full {
		single := s.OptionsFor(sq.Question, "participant-4")
		if !reflect.DeepEqual(single.ShuffledOptions, sq.ShuffledOptions) {
			t.Fatalf("question %s: single-question shuffle %v != full shuffle %v",
				sq.ID, single.ShuffledOptions, sq.ShuffledOptions)
		}
		if single.ShuffledCorrectOption != sq.ShuffledCorrectOption {
			t.Fatalf("question %s: correct index mismatch %d != %d",
				sq.ID, single.ShuffledCorrectOption, sq.ShuffledCorrectOption)
		}
	}
}

func TestDifferentParticipantsUsuallyDiffer(t *testing.T) {
	s := NewShuffler(nil)
	questions := sampleQuestions()

	a := s.ForParticipant(questions, "alice-participant")
	b := s.ForParticipant(questions, "a-very-different-id")
	if reflect.DeepEqual(a, b) {
		t.Fatalf("expected distinct participants to get distinct shuffles")
	}
}

func TestCustomHashIsUsed(t *testing.T) {
	calls := 0
	s := NewShuffler(func(id string) int64 {
		calls++
		return int64(len(id))
	})
	_ = s.ForParticipant(sampleQuestions(), "participant-5")
	if calls == 0 {
		t.Fatalf("expected injected hash to be called")
	}
}

func TestCharCodeSum(t *testing.T) {
	if got := CharCodeSum("ab"); got != 195 {
		t.Fatalf("expected 195, got %d", got)
	}
	if got := CharCodeSum(""); got != 0 {
		t.Fatalf("expected 0 for empty string, got %d", got)
	}
}
