package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/trivia_bot/internal/services"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/utils"
)

// Callback data
const (
	CallbackAnswerPrefix   = "ans_"
	CallbackCategoryPrefix = "cat_"
	CallbackNoop           = "noop"
)

const maxButtonText = 40

// maxCallbackData is Telegram's limit on callback data, in bytes.
const maxCallbackData = 64

func answerButtonText(opt trivia.AnswerOption) string {
	return utils.Truncate(fmt.Sprintf("%s: %s", opt.Label, opt.Text), maxButtonText)
}

// AnswerKeyboard lays the four answers out in two rows.
func AnswerKeyboard(answers trivia.AnswerSet) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, opt := range answers.Options {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			answerButtonText(opt),
			CallbackAnswerPrefix+string(opt.Label),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons[0], buttons[1]),
		tgbotapi.NewInlineKeyboardRow(buttons[2], buttons[3]),
	)
}

// ClosedAnswerKeyboard is the keyboard of a closed round: buttons do nothing
// and the correct one is marked.
func ClosedAnswerKeyboard(answers trivia.AnswerSet) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, opt := range answers.Options {
		text := answerButtonText(opt)
		if opt.Label == answers.CorrectLabel {
			text = "✅ " + text
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(text, CallbackNoop))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons[0], buttons[1]),
		tgbotapi.NewInlineKeyboardRow(buttons[2], buttons[3]),
	)
}

// CategoryKeyboard offers one button per category, two per row.
// Categories whose id doesn't fit in callback data are left out.
func CategoryKeyboard(categories []services.Category) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var currentRow []tgbotapi.InlineKeyboardButton

	for _, c := range categories {
		data := CallbackCategoryPrefix + c.ID
		if len(data) > maxCallbackData {
			continue
		}
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(utils.Truncate(c.Name, maxButtonText), data))
		if len(currentRow) == 2 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(currentRow...))
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(currentRow...))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
