package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option index or text could not be resolved.
	ErrOptionNotFound = errors.New("option not found")
	// ErrAmbiguousOption indicates duplicate option text made index recovery ambiguous.
	ErrAmbiguousOption = errors.New("ambiguous option text")
	// ErrAnswerAlreadyRecorded indicates a second submission for the same question.
	ErrAnswerAlreadyRecorded = errors.New("answer already recorded")
	// ErrInvalidQuestion indicates quiz content violates the 4-option shape.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidSubmission indicates a submission failed validation, e.g. a
	// negative client-reported time.
	ErrInvalidSubmission = errors.New("invalid answer submission")
	// ErrLifelineUsed indicates the participant already spent this lifeline.
	ErrLifelineUsed = errors.New("lifeline already used")
)
