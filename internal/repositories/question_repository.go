package repositories

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/models"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"gorm.io/gorm"
)

// QuestionRepository serves questions from the local bank.
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// FetchQuestions picks count random questions, optionally from one category.
// Rows whose options can't be decoded are passed on with no distractors so
// the round engine skips them as malformed.
func (r *QuestionRepository) FetchQuestions(ctx context.Context, count int, category string) ([]trivia.Question, error) {
	var rows []models.Question
	query := r.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	result := query.Order("RANDOM()").Limit(count).Find(&rows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeSourceUnavailable, "failed to get questions")
	}

	questions := make([]trivia.Question, 0, len(rows))
	for i := range rows {
		distractors, err := rows[i].Distractors()
		if err != nil {
			logger.Warn("Invalid stored question", "id", rows[i].ID, "error", err)
		}
		questions = append(questions, trivia.Question{
			Category:    rows[i].Category,
			Difficulty:  trivia.Difficulty(rows[i].Difficulty),
			Prompt:      rows[i].QuestionText,
			Correct:     rows[i].CorrectAnswer,
			Distractors: distractors,
		})
	}

	return questions, nil
}

// Categories lists the distinct categories of the local bank.
func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	result := r.db.WithContext(ctx).Model(&models.Question{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get categories")
	}

	return categories, nil
}

// CreateQuestions bulk inserts imported questions.
func (r *QuestionRepository) CreateQuestions(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create questions")
	}
	return nil
}

// Count returns the size of the local bank.
func (r *QuestionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count questions")
	}
	return count, nil
}
