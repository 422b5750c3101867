package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question is an entry of the local question bank.
type Question struct {
	ID            uint      `gorm:"primaryKey"`
	QuestionText  string    `gorm:"type:text;not null"`
	Category      string    `gorm:"type:varchar(100);index"`
	Difficulty    string    `gorm:"type:varchar(20);index"`
	CorrectAnswer string    `gorm:"type:text;not null"`
	Options       string    `gorm:"type:jsonb"` // JSON array, includes the correct answer
	Source        string    `gorm:"type:varchar(50);default:'import'"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// Difficulty constants
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

func (Question) TableName() string {
	return "questions"
}

// Distractors returns the options other than the correct answer.
func (q *Question) Distractors() ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return nil, fmt.Errorf("question %d: invalid options: %w", q.ID, err)
	}

	distractors := make([]string, 0, len(options))
	skipped := false
	for _, opt := range options {
		if !skipped && opt == q.CorrectAnswer {
			skipped = true
			continue
		}
		distractors = append(distractors, opt)
	}
	if !skipped {
		return nil, fmt.Errorf("question %d: options do not contain the correct answer", q.ID)
	}
	return distractors, nil
}
