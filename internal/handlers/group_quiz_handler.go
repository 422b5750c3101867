package handlers

import (
	"context"
	"fmt"

	"github.com/mroshb/trivia_bot/internal/trivia"
	apperrors "github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
)

// StartQuizGame starts a game in chatID. categoryArg is a category id or
// name; empty means the default category.
func (h *HandlerManager) StartQuizGame(ctx context.Context, chatID int64, p trivia.Participant, categoryArg string, bot BotInterface) {
	category := h.DefaultCategory
	if categoryArg != "" {
		found, ok, err := h.Categories.Find(ctx, categoryArg)
		if err != nil {
			logger.Error("Failed to resolve category", "chat_id", chatID, "query", categoryArg, "error", err)
			bot.SendMessage(chatID, MsgCategoriesFailed, nil)
			return
		}
		if !ok {
			bot.SendMessage(chatID, MsgUnknownCategory, nil)
			return
		}
		category = found.ID
	}

	err := h.Games.Start(ctx, chatID, h.Config.QuestionsPerGame, category)
	switch {
	case err == nil:
		logger.Info("Game requested", "chat_id", chatID, "user_id", p.ID, "category", category)
	case apperrors.Is(err, trivia.ErrSessionActive):
		bot.SendMessage(chatID, MsgSessionActive, nil)
	default:
		logger.Error("Failed to start game", "chat_id", chatID, "error", err)
		bot.SendMessage(chatID, MsgSomethingWrong, nil)
	}
}

// StopQuizGame ends the game in chatID once its current round closes.
func (h *HandlerManager) StopQuizGame(chatID int64, p trivia.Participant, bot BotInterface) {
	if !h.Games.Stop(chatID) {
		bot.SendMessage(chatID, MsgNoSession, nil)
		return
	}
	logger.Info("Game stop requested", "chat_id", chatID, "user_id", p.ID)
	bot.SendMessage(chatID, MsgStopping, nil)
}

// HandleQuizGameAnswer records an answer button press on the question
// message messageID.
func (h *HandlerManager) HandleQuizGameAnswer(queryID string, chatID int64, messageID int, p trivia.Participant, rawLabel string, bot BotInterface) {
	if h.RateLimiter != nil && !h.RateLimiter.CheckUserLimit(p.ID) {
		bot.AnswerCallbackQuery(queryID, MsgTooFast, false)
		return
	}

	label, ok := trivia.ParseLabel(rawLabel)
	if !ok {
		bot.AnswerCallbackQuery(queryID, MsgRoundClosed, false)
		return
	}

	receipt, err := h.Games.Submit(chatID, messageID, p, label)
	switch {
	case err == nil:
		bot.AnswerCallbackQuery(queryID, fmt.Sprintf(MsgYouChose, receipt.Label), false)
	case apperrors.Is(err, trivia.ErrRoundClosed):
		bot.AnswerCallbackQuery(queryID, MsgRoundClosed, false)
	default:
		logger.Error("Failed to record answer", "chat_id", chatID, "user_id", p.ID, "error", err)
		bot.AnswerCallbackQuery(queryID, MsgSomethingWrong, false)
	}
}
