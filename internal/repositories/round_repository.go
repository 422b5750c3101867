package repositories

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/models"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/errors"
	"gorm.io/gorm"
)

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// RecordRound stores the outcome of a closed round.
func (r *RoundRepository) RecordRound(ctx context.Context, chatID int64, outcome trivia.RoundOutcome) error {
	record := NewRoundRecord(chatID, outcome)
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to record round")
	}
	return nil
}

// NewRoundRecord flattens an outcome into its history row.
func NewRoundRecord(chatID int64, outcome trivia.RoundOutcome) *models.RoundRecord {
	return &models.RoundRecord{
		RoundID:       outcome.RoundID,
		ChatID:        chatID,
		Number:        outcome.Number,
		Category:      outcome.Question.Category,
		Difficulty:    string(outcome.Question.Difficulty),
		QuestionText:  outcome.Question.Prompt,
		CorrectLabel:  string(outcome.CorrectLabel),
		CorrectAnswer: outcome.CorrectText,
		Submissions:   len(outcome.Submissions),
		Winners:       len(outcome.Awards),
		Points:        outcome.ScoreAwarded,
	}
}

// GetChatHistory returns the latest rounds played in a chat.
func (r *RoundRepository) GetChatHistory(ctx context.Context, chatID int64, limit int) ([]models.RoundRecord, error) {
	var records []models.RoundRecord
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).
		Order("closed_at DESC").
		Limit(limit).
		Find(&records)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get round history")
	}

	return records, nil
}
