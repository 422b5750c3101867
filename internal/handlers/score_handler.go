package handlers

import (
	"context"

	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/logger"
)

func (h *HandlerManager) ShowScore(ctx context.Context, chatID int64, p trivia.Participant, bot BotInterface) {
	score, err := h.Scores.GetScore(ctx, p.ID)
	if err != nil {
		logger.Error("Failed to get score", "user_id", p.ID, "error", err)
		bot.SendMessage(chatID, MsgScoreFailed, nil)
		return
	}
	bot.SendMessage(chatID, FormatScore(p.DisplayName, score), nil)
}

func (h *HandlerManager) ShowCategories(ctx context.Context, chatID int64, bot BotInterface) {
	categories, err := h.Categories.List(ctx)
	if err != nil {
		logger.Error("Failed to list categories", "chat_id", chatID, "error", err)
		bot.SendMessage(chatID, MsgCategoriesFailed, nil)
		return
	}
	if len(categories) == 0 {
		bot.SendMessage(chatID, MsgCategoriesFailed, nil)
		return
	}
	bot.SendMessage(chatID, FormatCategories(categories), CategoryKeyboard(categories))
}
