package models

import "time"

// RoundRecord is the history entry of one closed trivia round.
type RoundRecord struct {
	ID            uint      `gorm:"primaryKey"`
	RoundID       string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	ChatID        int64     `gorm:"not null;index"`
	Number        int       `gorm:"not null"`
	Category      string    `gorm:"type:varchar(100)"`
	Difficulty    string    `gorm:"type:varchar(20)"`
	QuestionText  string    `gorm:"type:text"`
	CorrectLabel  string    `gorm:"type:varchar(1)"`
	CorrectAnswer string    `gorm:"type:text"`
	Submissions   int       `gorm:"default:0"`
	Winners       int       `gorm:"default:0"`
	Points        int       `gorm:"default:0"`
	ClosedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (RoundRecord) TableName() string {
	return "round_records"
}
