package handlers

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/internal/middleware"
	"github.com/mroshb/trivia_bot/internal/services"
	"github.com/mroshb/trivia_bot/internal/trivia"
)

// Bot interface to avoid circular dependency
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	AnswerCallbackQuery(queryID string, text string, showAlert bool)
}

// GameRunner starts, stops and feeds trivia sessions.
type GameRunner interface {
	Start(ctx context.Context, chatID int64, count int, category string) error
	Submit(chatID int64, messageID int, p trivia.Participant, label trivia.Label) (trivia.Receipt, error)
	Stop(chatID int64) bool
}

type ScoreReader interface {
	GetScore(ctx context.Context, telegramID int64) (int64, error)
}

type CategoryFinder interface {
	List(ctx context.Context) ([]services.Category, error)
	Find(ctx context.Context, query string) (services.Category, bool, error)
}

type HandlerManager struct {
	Config      *config.Config
	Games       GameRunner
	Scores      ScoreReader
	Categories  CategoryFinder
	RateLimiter *middleware.RateLimiter

	// DefaultCategory is used by /play without an argument.
	DefaultCategory string
}

func NewHandlerManager(
	cfg *config.Config,
	games GameRunner,
	scores ScoreReader,
	categories CategoryFinder,
	rateLimiter *middleware.RateLimiter,
) *HandlerManager {
	h := &HandlerManager{
		Config:      cfg,
		Games:       games,
		Scores:      scores,
		Categories:  categories,
		RateLimiter: rateLimiter,
	}
	if cfg.QuestionSource == config.SourceOpenTDB {
		h.DefaultCategory = cfg.DefaultCategory
	}
	return h
}
