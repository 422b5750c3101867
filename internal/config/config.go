package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Question sources
const (
	SourceOpenTDB = "opentdb"
	SourceLocal   = "local"
)

// Config is loaded from an optional config file and the environment.
// Every key can be overridden by its upper-case environment variable.
type Config struct {
	// Telegram
	BotToken    string `mapstructure:"bot_token"`
	WorkerCount int    `mapstructure:"worker_count"`

	// Database
	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`

	// Redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Application
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// Rate Limiting
	RateLimitPerUser int `mapstructure:"rate_limit_per_user"`

	// Trivia
	TriviaAPIURL        string `mapstructure:"trivia_api_url"`
	QuestionSource      string `mapstructure:"question_source"`
	QuestionsPerGame    int    `mapstructure:"questions_per_game"`
	AnswerWindowSeconds int    `mapstructure:"answer_window_seconds"`
	RoundDelaySeconds   int    `mapstructure:"round_delay_seconds"`
	DefaultCategory     string `mapstructure:"default_category"`
	LiveCount           bool   `mapstructure:"live_count"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("worker_count", 50)

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "triviabot")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "triviabot_db")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("rate_limit_per_user", 20)

	v.SetDefault("trivia_api_url", "https://opentdb.com")
	v.SetDefault("question_source", SourceOpenTDB)
	v.SetDefault("questions_per_game", 2)
	v.SetDefault("answer_window_seconds", 10)
	v.SetDefault("round_delay_seconds", 15)
	v.SetDefault("default_category", "31")
	v.SetDefault("live_count", false)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.QuestionSource = strings.ToLower(strings.TrimSpace(cfg.QuestionSource))

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.QuestionSource != SourceOpenTDB && c.QuestionSource != SourceLocal {
		return fmt.Errorf("QUESTION_SOURCE must be %q or %q, got %q", SourceOpenTDB, SourceLocal, c.QuestionSource)
	}
	if c.QuestionsPerGame < 1 || c.QuestionsPerGame > 50 {
		return fmt.Errorf("QUESTIONS_PER_GAME must be between 1 and 50")
	}
	if c.AnswerWindowSeconds < 1 {
		return fmt.Errorf("ANSWER_WINDOW_SECONDS must be positive")
	}
	if c.RoundDelaySeconds < 0 {
		return fmt.Errorf("ROUND_DELAY_SECONDS must not be negative")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.RedisPassword == "" {
		return fmt.Errorf("REDIS_PASSWORD must be set in production")
	}
	if c.QuestionSource == SourceOpenTDB && !strings.HasPrefix(c.TriviaAPIURL, "https://") {
		return fmt.Errorf("TRIVIA_API_URL must use https in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) AnswerWindow() time.Duration {
	return time.Duration(c.AnswerWindowSeconds) * time.Second
}

func (c *Config) RoundDelay() time.Duration {
	return time.Duration(c.RoundDelaySeconds) * time.Second
}
