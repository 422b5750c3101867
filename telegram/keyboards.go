package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard buttons
const (
	BtnPlay       = "🎮 Play"
	BtnScore      = "🏆 My score"
	BtnCategories = "📚 Categories"
	BtnHelp       = "❓ Help"
)

// buttonCommands maps reply keyboard buttons to the command they stand for.
var buttonCommands = map[string]string{
	BtnPlay:       "play",
	BtnScore:      "score",
	BtnCategories: "categories",
	BtnHelp:       "help",
}

// MainMenuKeyboard creates the main menu keyboard shown in private chats
func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnPlay),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnScore),
			tgbotapi.NewKeyboardButton(BtnCategories),
			tgbotapi.NewKeyboardButton(BtnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
