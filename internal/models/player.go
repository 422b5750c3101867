package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Player is a chat participant's cumulative trivia score.
type Player struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
	Username   string    `gorm:"type:varchar(255);not null"`
	Score      int64     `gorm:"default:0;not null"`
	Correct    int       `gorm:"default:0;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Player) TableName() string {
	return "players"
}

// BeforeSave validates identity and keeps the score from going negative.
func (p *Player) BeforeSave(tx *gorm.DB) error {
	if p.TelegramID == 0 {
		return fmt.Errorf("telegram id is required")
	}
	if p.Username == "" {
		return fmt.Errorf("username is required")
	}
	if p.Score < 0 {
		p.Score = 0
	}
	return nil
}

type ScoreTransaction struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  uint      `gorm:"not null;index"`
	Player    Player    `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	Amount    int64     `gorm:"not null"`
	Reason    string    `gorm:"type:varchar(50);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// Score transaction reasons
const (
	ScoreReasonCorrectAnswer = "correct_answer"
	ScoreReasonAdjustment    = "admin_adjustment"
)

func (ScoreTransaction) TableName() string {
	return "score_transactions"
}
