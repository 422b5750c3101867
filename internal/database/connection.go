package database

import (
	"fmt"
	"time"

	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/internal/models"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Score awards are short row-locked transactions, one per winner.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected", "host", cfg.DBHost, "name", cfg.DBName)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Player{},
		&models.ScoreTransaction{},
		&models.Question{},
		&models.RoundRecord{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedQuestions fills an empty local bank with a starter set.
func SeedQuestions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Question{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	logger.Info("Seeding starter questions...")
	questions := []models.Question{
		{
			QuestionText:  "What is the capital of France?",
			Category:      "Geography",
			Difficulty:    models.DifficultyEasy,
			CorrectAnswer: "Paris",
			Options:       `["Paris", "London", "Berlin", "Rome"]`,
			Source:        "seed",
		},
		{
			QuestionText:  "Which planet is known as the Red Planet?",
			Category:      "Science: Nature",
			Difficulty:    models.DifficultyEasy,
			CorrectAnswer: "Mars",
			Options:       `["Earth", "Mars", "Jupiter", "Venus"]`,
			Source:        "seed",
		},
		{
			QuestionText:  "What is the largest ocean on Earth?",
			Category:      "Geography",
			Difficulty:    models.DifficultyEasy,
			CorrectAnswer: "Pacific Ocean",
			Options:       `["Atlantic Ocean", "Indian Ocean", "Pacific Ocean", "Arctic Ocean"]`,
			Source:        "seed",
		},
		{
			QuestionText:  "Who is credited with inventing the telephone?",
			Category:      "History",
			Difficulty:    models.DifficultyMedium,
			CorrectAnswer: "Alexander Graham Bell",
			Options:       `["Thomas Edison", "Alexander Graham Bell", "Nikola Tesla", "Isaac Newton"]`,
			Source:        "seed",
		},
		{
			QuestionText:  "In the anime \"Fullmetal Alchemist\", what is Alphonse Elric's body made of?",
			Category:      "Entertainment: Japanese Anime & Manga",
			Difficulty:    models.DifficultyMedium,
			CorrectAnswer: "A suit of armor",
			Options:       `["A suit of armor", "A wooden puppet", "A stone golem", "A homunculus"]`,
			Source:        "seed",
		},
		{
			QuestionText:  "Which element has the chemical symbol W?",
			Category:      "Science & Nature",
			Difficulty:    models.DifficultyHard,
			CorrectAnswer: "Tungsten",
			Options:       `["Tungsten", "Wolfram oxide", "Vanadium", "Tin"]`,
			Source:        "seed",
		},
	}

	return db.Create(&questions).Error
}
