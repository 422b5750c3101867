package services

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
)

// QuestionService serves questions from a primary source and falls back to
// a secondary one when the primary is unavailable.
type QuestionService struct {
	primary  trivia.QuestionSource
	fallback trivia.QuestionSource
}

// NewQuestionService builds the service. fallback may be nil.
func NewQuestionService(primary, fallback trivia.QuestionSource) *QuestionService {
	return &QuestionService{
		primary:  primary,
		fallback: fallback,
	}
}

func (s *QuestionService) FetchQuestions(ctx context.Context, count int, category string) ([]trivia.Question, error) {
	questions, err := s.primary.FetchQuestions(ctx, count, category)
	if err == nil && len(questions) > 0 {
		return questions, nil
	}
	if s.fallback == nil || ctx.Err() != nil {
		return questions, err
	}

	logger.Warn("Primary question source failed, using fallback", "error", err, "category", category)

	// Category ids are specific to each source.
	questions, fbErr := s.fallback.FetchQuestions(ctx, count, "")
	if fbErr != nil {
		if err == nil {
			err = fbErr
		}
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "all question sources failed")
	}
	return questions, nil
}
