package repositories

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/models"
	"github.com/mroshb/trivia_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Award adds points to a player's score, creating the player on first award.
// The stored total never drops below zero.
func (r *ScoreRepository) Award(ctx context.Context, telegramID int64, displayName string, points int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var player models.Player
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("telegram_id = ?", telegramID).
			First(&player).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			player = models.Player{TelegramID: telegramID, Username: displayName}
			if err := tx.Create(&player).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create player")
			}
		case err != nil:
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to get player")
		}

		change := NewScoreChange(player, displayName, points)
		if err := tx.Model(&player).Updates(change.Updates).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update score")
		}

		transaction := &change.Transaction
		if err := tx.Create(transaction).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create score transaction")
		}

		return nil
	})
}

// ScoreChange is what one award does to a stored player.
type ScoreChange struct {
	Score       int64
	Updates     map[string]interface{}
	Transaction models.ScoreTransaction
}

// NewScoreChange applies points to player. The new total is clamped at zero
// and the transaction amount is the change actually applied.
func NewScoreChange(player models.Player, displayName string, points int) ScoreChange {
	newScore := player.Score + int64(points)
	if newScore < 0 {
		newScore = 0
	}

	updates := map[string]interface{}{"score": newScore}
	if points > 0 {
		updates["correct"] = player.Correct + 1
	}
	if displayName != "" && displayName != player.Username {
		updates["username"] = displayName
	}

	return ScoreChange{
		Score:   newScore,
		Updates: updates,
		Transaction: models.ScoreTransaction{
			PlayerID: player.ID,
			Amount:   newScore - player.Score,
			Reason:   reasonFor(points),
		},
	}
}

func reasonFor(points int) string {
	if points > 0 {
		return models.ScoreReasonCorrectAnswer
	}
	return models.ScoreReasonAdjustment
}

// GetScore returns a player's cumulative score, zero for unknown players.
func (r *ScoreRepository) GetScore(ctx context.Context, telegramID int64) (int64, error) {
	var player models.Player
	result := r.db.WithContext(ctx).Select("score").Where("telegram_id = ?", telegramID).First(&player)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get score")
	}

	return player.Score, nil
}
