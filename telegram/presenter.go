package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/trivia_bot/internal/handlers"
	"github.com/mroshb/trivia_bot/internal/trivia"
)

// Sender is the part of the Bot API the presenter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Presenter draws the rounds of one chat. Calls are not retried; the round
// engine decides what a failure means.
type Presenter struct {
	api    Sender
	chatID int64
}

func NewPresenter(api Sender, chatID int64) *Presenter {
	return &Presenter{api: api, chatID: chatID}
}

func (p *Presenter) Publish(ctx context.Context, view trivia.QuestionView) (trivia.MessageHandle, error) {
	if err := ctx.Err(); err != nil {
		return trivia.MessageHandle{}, err
	}

	msg := tgbotapi.NewMessage(p.chatID, handlers.FormatQuestion(view))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = handlers.AnswerKeyboard(view.Answers)

	sent, err := p.api.Send(msg)
	if err != nil {
		return trivia.MessageHandle{}, err
	}
	return trivia.MessageHandle{ChatID: p.chatID, MessageID: sent.MessageID}, nil
}

func (p *Presenter) Edit(ctx context.Context, handle trivia.MessageHandle, view trivia.QuestionView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keyboard := handlers.AnswerKeyboard(view.Answers)
	if view.Closed {
		keyboard = handlers.ClosedAnswerKeyboard(view.Answers)
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(handle.ChatID, handle.MessageID, handlers.FormatQuestion(view), keyboard)
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := p.api.Send(edit); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

func (p *Presenter) SendFollowup(ctx context.Context, f trivia.Followup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(p.chatID, handlers.FormatFollowup(f))
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := p.api.Send(msg)
	return err
}

// isNotModified matches Telegram's rejection of an edit that changes nothing.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
