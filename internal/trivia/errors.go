package trivia

import "github.com/mroshb/trivia_bot/pkg/errors"

var (
	// ErrMalformedQuestion aborts the round built from a bad question.
	ErrMalformedQuestion   = errors.New(errors.ErrCodeMalformedQuestion, "malformed question")
	// ErrSourceUnavailable aborts the whole session.
	ErrSourceUnavailable   = errors.New(errors.ErrCodeSourceUnavailable, "question source unavailable")
	// ErrPresentationFailure aborts the whole session.
	ErrPresentationFailure = errors.New(errors.ErrCodePresentationFailure, "presentation failed")
	// ErrRoundClosed rejects a submission that missed its window.
	ErrRoundClosed         = errors.New(errors.ErrCodeRoundClosed, "round is closed")
	// ErrScoringFailure abandons the round whose awards could not be written.
	ErrScoringFailure      = errors.New(errors.ErrCodeScoringFailure, "scoring failed")
	ErrInvalidTransition   = errors.New(errors.ErrCodeInvalidTransition, "invalid round state transition")
	ErrSessionActive       = errors.New(errors.ErrCodeSessionActive, "a game is already running in this chat")
)

func malformed(msg string) error {
	return errors.New(errors.ErrCodeMalformedQuestion, msg)
}
